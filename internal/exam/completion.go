package exam

import (
	"context"
	"math"
	"time"

	"github.com/mind-engage/mocktest/internal/formats"
	"github.com/mind-engage/mocktest/internal/metrics"
)

// complete runs the completion pipeline once. The first caller moves the
// session from active to completing and computes the result; concurrent
// and later callers wait for it and receive the same result with no error.
// ctx only bounds the wait: once state is discarded the result must be
// stored, so evaluation and persistence run on a context detached from the
// caller and bounded by PersistTimeout.
func (s *Session) complete(ctx context.Context, reason Reason) (AttemptResult, error) {
	if _, ok := s.store.transition(StatusActive, StatusCompleting); !ok {
		if s.store.Status() == StatusAbandoned {
			return AttemptResult{}, &InvalidOperationError{Op: string(reason), Err: ErrSessionEnded}
		}
		select {
		case <-s.done:
			return s.result, nil
		case <-ctx.Done():
			return AttemptResult{}, ctx.Err()
		}
	}

	s.timer.Stop()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.PersistTimeout)
	defer cancel()

	st := s.store.Snapshot()
	res := Summarize(st, s.deps.Scoring, reason, s.deps.Clock.Now())
	res.NewMilestones = s.milestones(pctx, res)

	var err error
	if perr := s.deps.Results.Persist(pctx, res); perr != nil {
		err = &StorageError{AttemptID: res.AttemptID, Err: perr}
		metrics.PersistFailures.Inc()
		s.log.Error("result not persisted", "err", perr)
	}

	s.result = res
	s.store.discard(StatusCompleted)
	close(s.done)

	metrics.AttemptsEnded.WithLabelValues(string(reason)).Inc()
	metrics.ScaledScores.Observe(res.ScaledScore)
	s.log.Info("attempt completed", "reason", reason, "correct", res.CorrectAnswers, "total", res.TotalQuestions,
		"scaled", res.ScaledScore, "milestones", len(res.NewMilestones))
	s.ended()
	return res, err
}

// Summarize computes the result of a final state. A state without
// questions scores 0.
func Summarize(st SessionState, scoring ScoringPolicy, reason Reason, now time.Time) AttemptResult {
	total := len(st.Questions)
	correct := 0
	breakdown := formats.Breakdown{}
	for _, q := range st.Questions {
		sec := breakdown[q.SectionCode]
		sec.Total++
		if rec, ok := st.Answers[q.ID]; ok && rec.IsCorrect {
			sec.Correct++
			correct++
		}
		breakdown[q.SectionCode] = sec
	}
	for code, sec := range breakdown {
		sec.Percent = percent(sec.Correct, sec.Total)
		breakdown[code] = sec
	}
	pct := percent(correct, total)
	if scoring == nil {
		scoring = formats.Scorer{}
	}
	return AttemptResult{
		AttemptID:        st.AttemptID,
		LearnerID:        st.LearnerID,
		Mode:             st.Config.Mode,
		SectionCode:      st.Config.SectionCode,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		ScorePercentage:  pct,
		ScaledScore:      scoring.Normalize(pct, breakdown),
		TimeSpentMinutes: int(math.Round(float64(st.BudgetSeconds-st.TimeRemainingSeconds) / 60)),
		NewMilestones:    []MilestoneID{},
		Sections:         breakdown,
		Reason:           reason,
		CompletedAt:      now,
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

// milestones asks the evaluator which milestones this attempt unlocked.
// Any failure, including an unreadable history, leaves the result without
// milestones: an empty history would award earned milestones again.
func (s *Session) milestones(ctx context.Context, res AttemptResult) []MilestoneID {
	if s.deps.Achievements == nil {
		return []MilestoneID{}
	}
	var history []AttemptResult
	var earned []MilestoneID
	if res.LearnerID != "" {
		var err error
		if s.deps.History != nil {
			if history, err = s.deps.History.History(ctx, res.LearnerID, s.deps.HistoryLimit); err != nil {
				s.log.Warn("history unavailable, no milestones awarded", "err", err)
				return []MilestoneID{}
			}
		}
		if s.deps.Earned != nil {
			if earned, err = s.deps.Earned.EarnedMilestones(ctx, res.LearnerID); err != nil {
				s.log.Warn("earned milestones unavailable, no milestones awarded", "err", err)
				return []MilestoneID{}
			}
		}
	}
	got, err := s.deps.Achievements.Evaluate(ctx, Evaluation{
		AttemptID:       res.AttemptID,
		LearnerID:       res.LearnerID,
		Mode:            res.Mode,
		ScorePercentage: res.ScorePercentage,
		ScaledScore:     res.ScaledScore,
		Sections:        res.Sections,
		History:         history,
		Earned:          earned,
	})
	if err != nil {
		s.log.Warn("achievement evaluation failed", "err", err)
		return []MilestoneID{}
	}
	if got == nil {
		return []MilestoneID{}
	}
	return got
}

// Quit abandons the attempt: no result is computed or stored. Quitting an
// abandoned attempt is a no-op; quitting a completed one is rejected.
func (s *Session) Quit(ctx context.Context) error {
	if _, ok := s.store.transition(StatusActive, StatusAbandoned); !ok {
		if st := s.store.Status(); st != StatusAbandoned {
			return invalidOp("quit", "attempt %s is %s: %w", s.id, st, ErrSessionEnded)
		}
		return nil
	}
	s.timer.Stop()
	last := s.store.discard(StatusAbandoned)
	close(s.done)

	metrics.AttemptsEnded.WithLabelValues("abandoned").Inc()
	s.log.Info("attempt abandoned", "answered", len(last.Answers), "remaining_sec", last.TimeRemainingSeconds)
	if s.deps.Notifier != nil {
		err := s.deps.Notifier.AttemptAbandoned(ctx, AbandonedAttempt{
			AttemptID:        last.AttemptID,
			LearnerID:        last.LearnerID,
			Config:           last.Config,
			Answered:         len(last.Answers),
			TimeRemainingSec: last.TimeRemainingSeconds,
		})
		if err != nil {
			s.log.Warn("abandon notification failed", "err", err)
		}
	}
	s.ended()
	return nil
}

func (s *Session) ended() {
	if s.onEnd != nil {
		s.onEnd(s)
	}
}
