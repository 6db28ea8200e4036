package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	fetcher  Fetcher
	log      *slog.Logger
}

// NewManager creates an empty Manager using fetcher for every session.
func NewManager(fetcher Fetcher, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		fetcher:  fetcher,
		log:      log,
	}
}

// Create registers a new session for a DAG version and returns it. The
// caller decides when to Refresh it.
func (m *Manager) Create(version string) *Session {
	s := New(uuid.NewString(), version, m.fetcher, m.log)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.log.Info("session created", "session", s.ID, "version", version)
	return s
}

// Get returns the session with the given ID, or nil if absent.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete drops a session. No error if the ID is unknown.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
