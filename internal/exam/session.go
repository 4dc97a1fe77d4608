package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mocktest/internal/clock"
	"github.com/mind-engage/mocktest/internal/formats"
	"github.com/mind-engage/mocktest/internal/grading"
	"github.com/mind-engage/mocktest/internal/metrics"
)

var (
	errUnknownSection = errors.New("unknown section")
	errNoQuestions    = errors.New("question bank returned no questions")
)

// Deps are the collaborators of a session. Bank, Budgets and Results are
// required; everything else has a default or is optional.
type Deps struct {
	Bank         QuestionBank
	Budgets      Budgets
	Results      ResultsStore
	Sections     SectionSource
	Scoring      ScoringPolicy        // default: percentage passthrough
	Achievements AchievementEvaluator // optional
	History      HistorySource        // optional
	Earned       MilestoneSource      // optional; every milestone a learner holds
	Notifier     Notifier             // optional
	Grader       grading.Grader       // default: grading.Exact
	Clock        clock.Clock          // default: clock.Real
	Logger       *slog.Logger
	NewID        func() string // default: uuid

	HistoryLimit   int           // default 50
	PersistTimeout time.Duration // bounds evaluation and persistence on completion; default 10s
	LockBack       bool          // reject Previous
}

func (d Deps) withDefaults() Deps {
	if d.Scoring == nil {
		d.Scoring = formats.Scorer{}
	}
	if d.Grader == nil {
		d.Grader = grading.Exact{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 50
	}
	if d.PersistTimeout <= 0 {
		d.PersistTimeout = 10 * time.Second
	}
	return d
}

// Session is one attempt: its state store, its countdown and the
// completion guard.
type Session struct {
	id    string
	deps  Deps
	log   *slog.Logger
	store *StateStore
	timer *Timer

	ctlMu sync.Mutex // serializes pause/resume against the timer

	done   chan struct{}
	result AttemptResult // set before done is closed

	onEnd func(*Session)
}

// Start resolves cfg to a question set and starts the countdown. Any
// failure is a *ConfigurationError and leaves nothing running.
func Start(ctx context.Context, deps Deps, learnerID string, cfg AssessmentConfig) (*Session, error) {
	s, err := prepare(ctx, deps, learnerID, cfg)
	if err != nil {
		return nil, err
	}
	s.begin()
	return s, nil
}

// prepare builds a session without starting its countdown.
func prepare(ctx context.Context, deps Deps, learnerID string, cfg AssessmentConfig) (*Session, error) {
	deps = deps.withDefaults()
	if deps.Bank == nil || deps.Budgets == nil || deps.Results == nil {
		return nil, errors.New("exam: bank, budgets and results store are required")
	}
	budget, err := resolveBudget(deps.Budgets, cfg)
	if err != nil {
		return nil, err
	}
	qs, err := deps.Bank.LoadQuestions(ctx, cfg)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &ConfigurationError{Config: cfg, Err: err}
	}
	if len(qs) == 0 {
		return nil, &ConfigurationError{Config: cfg, Err: errNoQuestions}
	}

	s := &Session{
		id:   deps.NewID(),
		deps: deps,
		done: make(chan struct{}),
	}
	s.store = newStateStore(SessionState{
		AttemptID:            s.id,
		LearnerID:            learnerID,
		Config:               cfg,
		Questions:            qs,
		Answers:              map[string]AnswerRecord{},
		CurrentQuestionIndex: 0,
		TimeRemainingSeconds: budget,
		BudgetSeconds:        budget,
		StartedAt:            deps.Clock.Now(),
		QuestionAnchor:       budget,
	})
	s.log = deps.Logger.With("attempt_id", s.ID())
	s.timer = NewTimer(deps.Clock, s.tick)
	return s, nil
}

func (s *Session) begin() {
	s.timer.Resume()
	st := s.store.Snapshot()
	metrics.AttemptsStarted.WithLabelValues(string(st.Config.Mode)).Inc()
	s.log.Info("attempt started", "learner_id", st.LearnerID, "mode", st.Config.Mode, "section", st.Config.SectionCode,
		"questions", len(st.Questions), "budget_sec", st.BudgetSeconds)
}

func resolveBudget(b Budgets, cfg AssessmentConfig) (int, error) {
	var budget int
	switch cfg.Mode {
	case ModeFull:
		budget = b.FullTimeLimit()
	case ModeSection:
		if cfg.SectionCode == "" {
			return 0, &ConfigurationError{Config: cfg, Err: errors.New("section code is required")}
		}
		v, ok := b.SectionTimeLimit(cfg.SectionCode)
		if !ok {
			return 0, &ConfigurationError{Config: cfg, Err: fmt.Errorf("%w %q", errUnknownSection, cfg.SectionCode)}
		}
		budget = v
	default:
		return 0, &ConfigurationError{Config: cfg, Err: fmt.Errorf("unknown mode %q", cfg.Mode)}
	}
	if budget <= 0 {
		return 0, &ConfigurationError{Config: cfg, Err: errors.New("time budget must be positive")}
	}
	return budget, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() Status { return s.store.Status() }

// Snapshot is a read-only copy of the current state.
func (s *Session) Snapshot() SessionState { return s.store.Snapshot() }

// Done is closed once the attempt reached a terminal outcome.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the attempt result once the session completed.
func (s *Session) Result() (AttemptResult, bool) {
	select {
	case <-s.done:
		if s.Status() == StatusCompleted {
			return s.result, true
		}
	default:
	}
	return AttemptResult{}, false
}

// tick is the timer callback.
func (s *Session) tick() {
	expired := false
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		if st.IsPaused {
			return st, nil
		}
		if st.TimeRemainingSeconds > 0 {
			st.TimeRemainingSeconds--
		}
		expired = st.TimeRemainingSeconds == 0
		return st, nil
	})
	if err != nil || !expired {
		return
	}
	s.timer.Stop()
	if _, err := s.complete(context.Background(), ReasonTimeExpired); err != nil {
		s.log.Warn("time expiry completion", "err", err)
	}
}

// Pause freezes the countdown. It is idempotent.
func (s *Session) Pause() error { return s.setPaused(true) }

// Resume restarts the countdown from the frozen value.
func (s *Session) Resume() error { return s.setPaused(false) }

// TogglePause flips the pause flag and reports the new value.
func (s *Session) TogglePause() (bool, error) {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	paused := false
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		st.IsPaused = !st.IsPaused
		paused = st.IsPaused
		return st, nil
	})
	if err != nil {
		return false, err
	}
	s.applyPauseLocked(paused)
	return paused, nil
}

func (s *Session) setPaused(paused bool) error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	err := s.store.Update(func(st SessionState) (SessionState, error) {
		st.IsPaused = paused
		return st, nil
	})
	if err != nil {
		return err
	}
	s.applyPauseLocked(paused)
	return nil
}

func (s *Session) applyPauseLocked(paused bool) {
	if paused {
		s.timer.Pause()
		s.log.Debug("attempt paused")
		return
	}
	s.timer.Resume()
	s.log.Debug("attempt resumed")
}
