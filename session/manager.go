package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/interviewd/errors"
	"github.com/skillsenselab/interviewd/llm"
	"github.com/skillsenselab/interviewd/logger"
	"github.com/skillsenselab/interviewd/transcription"
)

// Manager creates and looks up interview sessions by ID. Each session gets
// its own orchestrator; there is no cross-session coordination.
type Manager struct {
	completions llm.Provider
	transcriber transcription.Provider
	log         *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Orchestrator
}

// NewManager creates a session manager backed by the given providers.
func NewManager(completions llm.Provider, transcriber transcription.Provider, log *logger.Logger) *Manager {
	return &Manager{
		completions: completions,
		transcriber: transcriber,
		log:         log,
		sessions:    make(map[string]*Orchestrator),
	}
}

// Create builds a new session, starts it, and returns its orchestrator.
func (m *Manager) Create(cfg Config) (*Orchestrator, error) {
	id := uuid.NewString()
	o, err := NewOrchestrator(id, cfg, m.completions, m.transcriber, m.log)
	if err != nil {
		return nil, errors.InvalidInput("config", err.Error())
	}
	if err := o.Start(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = o
	m.mu.Unlock()

	return o, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.sessions[id]
	if !ok {
		return nil, errors.SessionNotFound(id)
	}
	return o, nil
}

// Remove deletes a session from the registry and aborts it, so a pending
// deadline cannot trigger an evaluation for a session nobody can read.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	o, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		o.Abort()
	}
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ID returns the session identifier.
func (o *Orchestrator) ID() string { return o.id }
