package exam

import (
	"context"
	"sync"

	"github.com/mind-engage/mocktest/internal/metrics"
)

// Manager is the registry of live sessions. Sessions leave it as soon as
// they reach a terminal outcome.
type Manager struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps.withDefaults(), sessions: map[string]*Session{}}
}

// Start begins a new attempt for learnerID.
func (m *Manager) Start(ctx context.Context, learnerID string, cfg AssessmentConfig) (*Session, error) {
	s, err := prepare(ctx, m.deps, learnerID, cfg)
	if err != nil {
		return nil, err
	}
	s.onEnd = m.remove
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()
	s.begin()
	return s, nil
}

// Get returns the live session with the given attempt id.
func (m *Manager) Get(attemptID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[attemptID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.ID()]; ok && cur == s {
		delete(m.sessions, s.ID())
		metrics.ActiveSessions.Dec()
	}
}

// Shutdown abandons every live session.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.RUnlock()
	for _, s := range live {
		_ = s.Quit(ctx)
	}
}
