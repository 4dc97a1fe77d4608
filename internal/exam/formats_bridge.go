package exam

import "github.com/mind-engage/mocktest/internal/formats"

// --- bridge to formats.QuestionLike ---

func (q Question) GetID() string            { return q.ID }
func (q Question) GetSectionCode() string   { return q.SectionCode }
func (q Question) GetOptions() []string     { return q.Options }
func (q Question) GetCorrectAnswer() string { return q.CorrectAnswer }

// QuestionsLike converts a question list for format validation.
func QuestionsLike(qs []Question) []formats.QuestionLike {
	out := make([]formats.QuestionLike, len(qs))
	for i := range qs {
		out[i] = qs[i]
	}
	return out
}
