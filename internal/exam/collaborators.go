package exam

import (
	"context"

	"github.com/mind-engage/mocktest/internal/formats"
)

// QuestionBank supplies the ordered questions for a configuration. Unknown
// sections are reported as *ConfigurationError.
type QuestionBank interface {
	LoadQuestions(ctx context.Context, cfg AssessmentConfig) ([]Question, error)
}

type SectionSource interface {
	LookupSection(code string) (SectionMeta, bool)
}

// ScoringPolicy maps a raw percentage to the assessment's published scale.
// Must be pure, deterministic and non-decreasing in pct.
type ScoringPolicy interface {
	Normalize(pct float64, breakdown formats.Breakdown) float64
}

// ScoringFunc adapts a function to ScoringPolicy.
type ScoringFunc func(pct float64, breakdown formats.Breakdown) float64

func (f ScoringFunc) Normalize(pct float64, breakdown formats.Breakdown) float64 {
	return f(pct, breakdown)
}

// Evaluation is the input of an achievement check.
type Evaluation struct {
	AttemptID       string
	LearnerID       string
	Mode            Mode
	ScorePercentage float64
	ScaledScore     float64
	Sections        formats.Breakdown
	History         []AttemptResult // earlier attempts, newest first
	Earned          []MilestoneID   // every milestone earned before, regardless of History's window
}

type AchievementEvaluator interface {
	Evaluate(ctx context.Context, ev Evaluation) ([]MilestoneID, error)
}

type HistorySource interface {
	History(ctx context.Context, learnerID string, limit int) ([]AttemptResult, error)
}

// MilestoneSource lists every milestone a learner has earned, however old
// the attempt that earned it.
type MilestoneSource interface {
	EarnedMilestones(ctx context.Context, learnerID string) ([]MilestoneID, error)
}

type ResultsStore interface {
	Persist(ctx context.Context, res AttemptResult) error
}

// AbandonedAttempt describes an attempt that ended through quit.
type AbandonedAttempt struct {
	AttemptID        string
	LearnerID        string
	Config           AssessmentConfig
	Answered         int
	TimeRemainingSec int
}

// Notifier receives terminal outcomes that produce no result.
type Notifier interface {
	AttemptAbandoned(ctx context.Context, a AbandonedAttempt) error
}

// Budgets resolves the fixed time budget of a configuration.
// formats.Policy satisfies it.
type Budgets interface {
	FullTimeLimit() int
	SectionTimeLimit(code string) (int, bool)
}

type policySections struct{ pol formats.Policy }

// PolicySections serves section metadata from a policy.
func PolicySections(pol formats.Policy) SectionSource { return policySections{pol: pol} }

func (p policySections) LookupSection(code string) (SectionMeta, bool) {
	s, ok := p.pol.Section(code)
	if !ok {
		return SectionMeta{}, false
	}
	name := s.Title
	if name == "" {
		name = s.ID
	}
	return SectionMeta{Code: s.ID, DisplayName: name, ColorScheme: s.Color}, true
}
