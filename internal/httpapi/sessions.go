package httpapi

import (
	"sync"

	"github.com/mousdieng/buy01/internal/checkout"
)

// SessionManager holds one checkout orchestrator per authenticated user.
// A session is created lazily on checkout entry and dropped on exit, which
// keeps the "exactly one session at a time" rule per user.
type SessionManager struct {
	factory func(userID string) *checkout.Orchestrator

	mu       sync.Mutex
	sessions map[string]*checkout.Orchestrator
}

func NewSessionManager(factory func(userID string) *checkout.Orchestrator) *SessionManager {
	return &SessionManager{
		factory:  factory,
		sessions: make(map[string]*checkout.Orchestrator),
	}
}

// Get returns the user's orchestrator, creating it on first use.
func (m *SessionManager) Get(userID string) *checkout.Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orch, ok := m.sessions[userID]; ok {
		return orch
	}
	orch := m.factory(userID)
	m.sessions[userID] = orch
	return orch
}

// Drop resets and discards the user's session. Outstanding async work will
// find the generation bumped and discard its result.
func (m *SessionManager) Drop(userID string) {
	m.mu.Lock()
	orch, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		orch.Reset()
	}
}
