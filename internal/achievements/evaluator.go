// Package achievements decides which milestones an attempt unlocks.
package achievements

import (
	"context"

	"github.com/mind-engage/mocktest/internal/exam"
)

const (
	FirstAttempt  exam.MilestoneID = "first_attempt"
	FirstFullTest exam.MilestoneID = "first_full_test"
	Score10       exam.MilestoneID = "score_1_0"
	Score15       exam.MilestoneID = "score_1_5"
	PerfectScore  exam.MilestoneID = "perfect_score"
	Streak3       exam.MilestoneID = "streak_3"
	SectionMaster exam.MilestoneID = "section_master"
	Improved      exam.MilestoneID = "improved"
)

// StreakPercent is the score every attempt in a streak must reach.
const StreakPercent = 50.0

// Rule reports whether an evaluation earns a milestone.
type Rule struct {
	ID    exam.MilestoneID
	Match func(ev exam.Evaluation) bool
}

// Evaluator applies rules in order and returns milestones the learner
// has not earned before. Earned milestones come from ev.Earned and from the
// attempts in ev.History.
type Evaluator struct {
	Rules []Rule
}

func New() *Evaluator { return &Evaluator{Rules: DefaultRules()} }

func DefaultRules() []Rule {
	return []Rule{
		{FirstAttempt, func(ev exam.Evaluation) bool { return true }},
		{FirstFullTest, func(ev exam.Evaluation) bool { return ev.Mode == exam.ModeFull }},
		{Score10, func(ev exam.Evaluation) bool { return ev.Mode == exam.ModeFull && ev.ScaledScore >= 1.0 }},
		{Score15, func(ev exam.Evaluation) bool { return ev.Mode == exam.ModeFull && ev.ScaledScore >= 1.5 }},
		{PerfectScore, func(ev exam.Evaluation) bool { return ev.ScorePercentage >= 100 }},
		{Streak3, streak},
		{SectionMaster, func(ev exam.Evaluation) bool {
			for _, s := range ev.Sections {
				if s.Total > 0 && s.Correct == s.Total {
					return true
				}
			}
			return false
		}},
		{Improved, improved},
	}
}

func (e *Evaluator) Evaluate(_ context.Context, ev exam.Evaluation) ([]exam.MilestoneID, error) {
	earned := map[exam.MilestoneID]bool{}
	for _, m := range ev.Earned {
		earned[m] = true
	}
	for _, h := range ev.History {
		for _, m := range h.NewMilestones {
			earned[m] = true
		}
	}
	out := []exam.MilestoneID{}
	for _, r := range e.Rules {
		if earned[r.ID] || !r.Match(ev) {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}

// streak: this attempt and the two before it all reached StreakPercent.
func streak(ev exam.Evaluation) bool {
	if ev.ScorePercentage < StreakPercent || len(ev.History) < 2 {
		return false
	}
	for _, h := range ev.History[:2] {
		if h.ScorePercentage < StreakPercent {
			return false
		}
	}
	return true
}

// improved compares against the latest earlier attempt in the same mode.
func improved(ev exam.Evaluation) bool {
	for _, h := range ev.History {
		if h.Mode != ev.Mode {
			continue
		}
		if ev.Mode == exam.ModeFull {
			return ev.ScaledScore > h.ScaledScore
		}
		return ev.ScorePercentage > h.ScorePercentage
	}
	return false
}
