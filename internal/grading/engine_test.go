package grading

import (
	"errors"
	"testing"
)

func TestExact(t *testing.T) {
	q := Q{ID: "q1", Options: []string{"A", "B", "C"}, AnswerKey: "B"}
	g := Exact{}

	res, err := g.Grade(q, "B")
	if err != nil || !res.Correct {
		t.Fatalf("B: %+v %v", res, err)
	}
	res, err = g.Grade(q, "A")
	if err != nil || res.Correct {
		t.Fatalf("A: %+v %v", res, err)
	}
	// exact equality, no case folding
	if _, err := g.Grade(q, "b"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("b: err = %v, want ErrUnknownOption", err)
	}
}

func TestExactWithoutOptions(t *testing.T) {
	res, err := Exact{}.Grade(Q{ID: "q", AnswerKey: "42"}, "42")
	if err != nil || !res.Correct {
		t.Fatalf("%+v %v", res, err)
	}
}
