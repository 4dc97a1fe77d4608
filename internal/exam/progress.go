package exam

// Position is "current of total", 1-based.
type Position struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type Progress struct {
	SectionCode string   `json:"section"`
	Global      Position `json:"global"`
	Section     Position `json:"in_section"`
}

// ResolveProgress locates index both in the whole list and inside its
// section. The in-section position is the number of questions with the same
// code at or before index, not index - firstMatch + 1. The two agree for a
// contiguous section; for a section split into several runs the count stays
// within the section total while the offset from the first match would not.
func ResolveProgress(questions []Question, index int) Progress {
	if index < 0 || index >= len(questions) {
		return Progress{}
	}
	code := questions[index].SectionCode
	current, total := 0, 0
	for i := range questions {
		if questions[i].SectionCode != code {
			continue
		}
		total++
		if i <= index {
			current++
		}
	}
	return Progress{
		SectionCode: code,
		Global:      Position{Current: index + 1, Total: len(questions)},
		Section:     Position{Current: current, Total: total},
	}
}
