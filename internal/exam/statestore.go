package exam

import (
	"fmt"
	"sync"
)

// StateStore owns the SessionState of one attempt. Every mutation goes
// through Update, which applies a function to the latest state.
type StateStore struct {
	mu     sync.Mutex
	state  SessionState
	status Status
}

func newStateStore(st SessionState) *StateStore {
	if st.Answers == nil {
		st.Answers = map[string]AnswerRecord{}
	}
	return &StateStore{state: st, status: StatusActive}
}

// Snapshot returns a copy of the current state with its own answers map.
func (s *StateStore) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *StateStore) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Update installs fn(latest). fn receives a private copy; if it returns an
// error, or the result breaks an invariant, nothing changes. Updates are
// rejected once the session left the active status.
func (s *StateStore) Update(fn func(SessionState) (SessionState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return &InvalidOperationError{Op: "update", Err: ErrSessionEnded}
	}
	next, err := fn(s.state.clone())
	if err != nil {
		return err
	}
	if err := checkInvariants(s.state, next); err != nil {
		return &InvalidOperationError{Op: "update", Err: err}
	}
	s.state = next
	return nil
}

// transition moves from one status to another; it reports false when the
// store is not in the expected status.
func (s *StateStore) transition(from, to Status) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != from {
		return s.status, false
	}
	s.status = to
	return to, true
}

// discard drops the question and answer data of a terminated attempt and
// returns the final state.
func (s *StateStore) discard(final Status) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.state.clone()
	s.status = final
	s.state.Questions = nil
	s.state.Answers = map[string]AnswerRecord{}
	return last
}

func checkInvariants(prev, next SessionState) error {
	if next.AttemptID != prev.AttemptID {
		return fmt.Errorf("attempt id is immutable")
	}
	if n := len(next.Questions); n > 0 && (next.CurrentQuestionIndex < 0 || next.CurrentQuestionIndex >= n) {
		return fmt.Errorf("question index %d out of range [0,%d)", next.CurrentQuestionIndex, n)
	}
	if next.TimeRemainingSeconds < 0 || next.TimeRemainingSeconds > next.BudgetSeconds {
		return fmt.Errorf("time remaining %d outside [0,%d]", next.TimeRemainingSeconds, next.BudgetSeconds)
	}
	if next.TimeRemainingSeconds > prev.TimeRemainingSeconds {
		return fmt.Errorf("time remaining cannot increase")
	}
	if prev.IsPaused && next.IsPaused && next.TimeRemainingSeconds != prev.TimeRemainingSeconds {
		return fmt.Errorf("time is frozen while paused")
	}
	return nil
}
