package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/TJOffringa/Klikschaak/internal/model"
)

// Manager owns the registry of live sessions, grounded on the teacher's
// GameManager. Its lock guards only the registry map — it is released
// before any Session method is called, so Manager and Session locks never
// nest (spec's concurrency model).
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create mints a new session with a fresh uuid and registers it, using
// DefaultConfig.
func (m *Manager) Create(whiteID, blackID string) *Session {
	return m.CreateWithConfig(whiteID, blackID, DefaultConfig())
}

// CreateWithConfig is Create with an explicit Config.
func (m *Manager) CreateWithConfig(whiteID, blackID string, cfg Config) *Session {
	id := uuid.New().String()
	s := NewWithConfig(id, whiteID, blackID, cfg)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s
}

// Get returns the session for id, or ErrGameNotStarted if none exists.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, model.NewError(model.ErrGameNotStarted, nil)
	}
	return s, nil
}

// Remove discards a session, e.g. once it has ended and been archived
// elsewhere.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// List returns the ids of every live session.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}
