package exam

import (
	"context"
	"time"
)

// QuestionView is a question as shown to the learner, without its key.
type QuestionView struct {
	ID             string     `json:"id"`
	SectionCode    string     `json:"section"`
	Text           string     `json:"text"`
	Options        []string   `json:"options"`
	Difficulty     Difficulty `json:"difficulty"`
	ReadingPassage string     `json:"reading_passage,omitempty"`
}

// View is the read-only snapshot handed to the presentation layer.
type View struct {
	AttemptID            string           `json:"attempt_id"`
	Status               Status           `json:"status"`
	Config               AssessmentConfig `json:"config"`
	CurrentQuestionIndex int              `json:"current_question_index"`
	TimeRemainingSeconds int              `json:"time_remaining_seconds"`
	BudgetSeconds        int              `json:"budget_seconds"`
	IsPaused             bool             `json:"is_paused"`
	StartedAt            time.Time        `json:"started_at"`
	Answered             int              `json:"answered"`
	Progress             Progress         `json:"progress"`
	Section              SectionMeta      `json:"section"`
	Question             *QuestionView    `json:"question,omitempty"`
	// Replay is the recorded answer of the current question, if any.
	Replay *Feedback `json:"replay,omitempty"`
}

// Step is the outcome of Next: either the new view, or the result when
// advancing past the last question finalized the attempt.
type Step struct {
	View   *View          `json:"view,omitempty"`
	Result *AttemptResult `json:"result,omitempty"`
}

func (s *Session) View() View {
	status := s.store.Status()
	return s.viewOf(s.store.Snapshot(), status)
}

func (s *Session) viewOf(st SessionState, status Status) View {
	v := View{
		AttemptID:            st.AttemptID,
		Status:               status,
		Config:               st.Config,
		CurrentQuestionIndex: st.CurrentQuestionIndex,
		TimeRemainingSeconds: st.TimeRemainingSeconds,
		BudgetSeconds:        st.BudgetSeconds,
		IsPaused:             st.IsPaused,
		StartedAt:            st.StartedAt,
		Answered:             len(st.Answers),
		Progress:             ResolveProgress(st.Questions, st.CurrentQuestionIndex),
	}
	if st.CurrentQuestionIndex >= len(st.Questions) {
		return v
	}
	q := st.Questions[st.CurrentQuestionIndex]
	v.Question = &QuestionView{
		ID:             q.ID,
		SectionCode:    q.SectionCode,
		Text:           q.Text,
		Options:        q.Options,
		Difficulty:     q.Difficulty,
		ReadingPassage: q.ReadingPassage,
	}
	v.Section = SectionMeta{Code: q.SectionCode, DisplayName: q.SectionCode}
	if s.deps.Sections != nil {
		if meta, ok := s.deps.Sections.LookupSection(q.SectionCode); ok {
			v.Section = meta
		}
	}
	if rec, ok := st.Answers[q.ID]; ok {
		fb := feedbackFor(q, rec)
		v.Replay = &fb
	}
	return v
}

// Next moves to the following question. At the last question it finalizes
// the attempt instead.
func (s *Session) Next(ctx context.Context) (Step, error) {
	atEnd := false
	var snap SessionState
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		if st.CurrentQuestionIndex >= len(st.Questions)-1 {
			atEnd = true
			return st, nil
		}
		st.CurrentQuestionIndex++
		st.QuestionAnchor = st.TimeRemainingSeconds
		snap = st.clone()
		return st, nil
	})
	if err != nil {
		return Step{}, err
	}
	if atEnd {
		res, err := s.complete(ctx, ReasonManualFinishAtEnd)
		if res.AttemptID == "" {
			return Step{}, err
		}
		return Step{Result: &res}, err
	}
	v := s.viewOf(snap, StatusActive)
	return Step{View: &v}, nil
}

// Previous moves back one question and replays its recorded answer, if
// any. At the first question it changes nothing.
func (s *Session) Previous() (View, error) {
	if s.deps.LockBack {
		return View{}, invalidOp("previous", "backward navigation is locked")
	}
	var snap SessionState
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		if st.CurrentQuestionIndex > 0 {
			st.CurrentQuestionIndex--
			st.QuestionAnchor = st.TimeRemainingSeconds
		}
		snap = st.clone()
		return st, nil
	})
	if err != nil {
		return View{}, err
	}
	return s.viewOf(snap, StatusActive), nil
}

// Finish finalizes the attempt from any position.
func (s *Session) Finish(ctx context.Context) (AttemptResult, error) {
	return s.complete(ctx, ReasonManualFinish)
}
