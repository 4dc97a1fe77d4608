package exam

import "testing"

func qs(codes ...string) []Question {
	out := make([]Question, len(codes))
	for i, c := range codes {
		out[i] = Question{ID: string(rune('a' + i)), SectionCode: c}
	}
	return out
}

func TestResolveProgress(t *testing.T) {
	list := qs("ORD", "ORD", "ORD", "LAS", "LAS")
	cases := []struct {
		index         int
		section       string
		global, inSec Position
	}{
		{0, "ORD", Position{1, 5}, Position{1, 3}},
		{2, "ORD", Position{3, 5}, Position{3, 3}},
		{3, "LAS", Position{4, 5}, Position{1, 2}},
		{4, "LAS", Position{5, 5}, Position{2, 2}},
	}
	for _, tc := range cases {
		p := ResolveProgress(list, tc.index)
		if p.SectionCode != tc.section || p.Global != tc.global || p.Section != tc.inSec {
			t.Errorf("index %d: got %+v", tc.index, p)
		}
	}
}

func TestResolveProgressNonContiguous(t *testing.T) {
	list := qs("A", "B", "A", "B", "A")
	p := ResolveProgress(list, 4)
	if p.Section != (Position{Current: 3, Total: 3}) {
		t.Fatalf("got %+v, want 3 of 3", p.Section)
	}
	p = ResolveProgress(list, 3)
	if p.Section != (Position{Current: 2, Total: 2}) {
		t.Fatalf("got %+v, want 2 of 2", p.Section)
	}
}

func TestResolveProgressOutOfRange(t *testing.T) {
	if p := ResolveProgress(nil, 0); p != (Progress{}) {
		t.Fatalf("empty list: %+v", p)
	}
	if p := ResolveProgress(qs("A"), 3); p != (Progress{}) {
		t.Fatalf("out of range: %+v", p)
	}
}
