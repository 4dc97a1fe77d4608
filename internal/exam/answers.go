package exam

import (
	"strconv"

	"github.com/mind-engage/mocktest/internal/grading"
	"github.com/mind-engage/mocktest/internal/metrics"
)

// SubmitAnswer records option as the answer to questionID, replacing any
// earlier answer to it. The current position does not move.
func (s *Session) SubmitAnswer(questionID, option string, elapsedSeconds int) (Feedback, error) {
	var fb Feedback
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		if elapsedSeconds < 0 {
			return st, invalidOp("submit answer", "elapsed seconds must not be negative, got %d", elapsedSeconds)
		}
		idx := st.questionIndex(questionID)
		if idx < 0 {
			return st, invalidOp("submit answer", "question %q is not part of attempt %s", questionID, st.AttemptID)
		}
		var err error
		fb, err = s.record(&st, idx, option, elapsedSeconds)
		return st, err
	})
	if err != nil {
		return Feedback{}, err
	}
	s.answered(fb)
	return fb, nil
}

// SubmitCurrent answers the displayed question. Elapsed time is the
// countdown consumed since the question was shown, so paused time is not
// counted.
func (s *Session) SubmitCurrent(option string) (Feedback, error) {
	var fb Feedback
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		elapsed := st.QuestionAnchor - st.TimeRemainingSeconds
		if elapsed < 0 {
			elapsed = 0
		}
		var err error
		fb, err = s.record(&st, st.CurrentQuestionIndex, option, elapsed)
		return st, err
	})
	if err != nil {
		return Feedback{}, err
	}
	s.answered(fb)
	return fb, nil
}

func (s *Session) record(st *SessionState, idx int, option string, elapsed int) (Feedback, error) {
	q := st.Questions[idx]
	res, err := s.deps.Grader.Grade(grading.Q{ID: q.ID, Options: q.Options, AnswerKey: q.CorrectAnswer}, option)
	if err != nil {
		return Feedback{}, &InvalidOperationError{Op: "submit answer", Err: err}
	}
	rec := AnswerRecord{
		QuestionID:     q.ID,
		ChosenOption:   option,
		IsCorrect:      res.Correct,
		ElapsedSeconds: elapsed,
	}
	st.Answers[q.ID] = rec
	return feedbackFor(q, rec), nil
}

func (s *Session) answered(fb Feedback) {
	metrics.AnswersSubmitted.WithLabelValues(strconv.FormatBool(fb.IsCorrect)).Inc()
	s.log.Debug("answer recorded", "question_id", fb.QuestionID, "correct", fb.IsCorrect)
}
