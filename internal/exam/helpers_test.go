package exam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mind-engage/mocktest/internal/clock"
	"github.com/mind-engage/mocktest/internal/formats"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeBank struct {
	sections map[string][]Question
	order    []string
	err      error
}

func (b *fakeBank) LoadQuestions(_ context.Context, cfg AssessmentConfig) ([]Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	if cfg.Mode == ModeSection {
		qs, ok := b.sections[cfg.SectionCode]
		if !ok {
			return nil, &ConfigurationError{Config: cfg, Err: errors.New("unknown section")}
		}
		return qs, nil
	}
	var out []Question
	for _, code := range b.order {
		out = append(out, b.sections[code]...)
	}
	return out, nil
}

// bankOf builds a bank with n questions per section; the correct answer of
// every question is "A".
func bankOf(n int, codes ...string) *fakeBank {
	b := &fakeBank{sections: map[string][]Question{}, order: codes}
	for _, code := range codes {
		for i := 1; i <= n; i++ {
			b.sections[code] = append(b.sections[code], Question{
				ID:            fmt.Sprintf("%s-%d", code, i),
				SectionCode:   code,
				Text:          fmt.Sprintf("%s question %d", code, i),
				Options:       []string{"A", "B", "C", "D"},
				CorrectAnswer: "A",
				Explanation:   "A is right",
				Difficulty:    DifficultyMedium,
			})
		}
	}
	return b
}

type fakeResults struct {
	mu         sync.Mutex
	saved      []AttemptResult
	failErr    error
	historyErr error
	// honorCtx makes Persist fail on a done context, like a real driver.
	honorCtx bool
}

func (r *fakeResults) Persist(ctx context.Context, res AttemptResult) error {
	if r.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, res)
	return r.failErr
}

func (r *fakeResults) EarnedMilestones(_ context.Context, learnerID string) ([]MilestoneID, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []MilestoneID
	for _, res := range r.saved {
		if res.LearnerID == learnerID {
			out = append(out, res.NewMilestones...)
		}
	}
	return out, nil
}

func (r *fakeResults) History(_ context.Context, learnerID string, _ int) ([]AttemptResult, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AttemptResult
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].LearnerID == learnerID {
			out = append(out, r.saved[i])
		}
	}
	return out, nil
}

func (r *fakeResults) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

type fakeEvaluator struct {
	mu    sync.Mutex
	calls []Evaluation
	out   []MilestoneID
	err   error
}

func (e *fakeEvaluator) Evaluate(_ context.Context, ev Evaluation) ([]MilestoneID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, ev)
	return e.out, e.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	abandoned []AbandonedAttempt
}

func (n *fakeNotifier) AttemptAbandoned(_ context.Context, a AbandonedAttempt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.abandoned = append(n.abandoned, a)
	return nil
}

// budgets is a fixed-budget Budgets for tests.
type budgets struct {
	full    int
	section map[string]int
}

func (b budgets) FullTimeLimit() int { return b.full }

func (b budgets) SectionTimeLimit(code string) (int, bool) {
	v, ok := b.section[code]
	return v, ok
}

type harness struct {
	clock    *clock.Fake
	bank     *fakeBank
	results  *fakeResults
	eval     *fakeEvaluator
	notifier *fakeNotifier
	deps     Deps
}

func newHarness(t *testing.T, bank *fakeBank, budget int) *harness {
	t.Helper()
	h := &harness{
		clock:    clock.NewFake(t0),
		bank:     bank,
		results:  &fakeResults{},
		eval:     &fakeEvaluator{},
		notifier: &fakeNotifier{},
	}
	sec := map[string]int{}
	for code := range bank.sections {
		sec[code] = budget
	}
	h.deps = Deps{
		Bank:         bank,
		Budgets:      budgets{full: budget, section: sec},
		Results:      h.results,
		History:      h.results,
		Earned:       h.results,
		Achievements: h.eval,
		Notifier:     h.notifier,
		Sections: PolicySections(formats.Policy{Sections: []formats.Section{
			{ID: "VERB", Title: "Verbal", Color: "blue", TimeLimitSec: budget},
		}}),
		Scoring: ScoringFunc(func(pct float64, _ formats.Breakdown) float64 { return pct / 50 }),
		Clock:   h.clock,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

func (h *harness) start(t *testing.T, cfg AssessmentConfig) *Session {
	t.Helper()
	s, err := Start(context.Background(), h.deps, "learner-1", cfg)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

var fullTest = AssessmentConfig{Mode: ModeFull}
