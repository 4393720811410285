package session

import (
	"sync"

	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/metrics"
	"github.com/prismdocs/atlas/pkg/pubsub"
	"github.com/prismdocs/atlas/pkg/viewport"
)

// Manager owns the live sessions served by one process. All sessions
// share the backend client, event bus, and metrics registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	backend Backend
	bus     *pubsub.Bus
	bounds  viewport.BoundsFunc
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewManager builds an empty manager
func NewManager(backend Backend, bus *pubsub.Bus, bounds viewport.BoundsFunc, logger logging.Logger, reg *metrics.Registry) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	if bus == nil {
		bus = pubsub.NewBus()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		backend:  backend,
		bus:      bus,
		bounds:   bounds,
		logger:   logger,
		metrics:  reg,
	}
}

// Bus exposes the shared event bus for SSE subscribers
func (m *Manager) Bus() *pubsub.Bus {
	return m.bus
}

// Open returns the session with the given id, creating it on first
// use. An empty id always creates a fresh session.
func (m *Manager) Open(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	}
	s := New(Config{
		ID:      id,
		Backend: m.backend,
		Bus:     m.bus,
		Bounds:  m.bounds,
		Logger:  m.logger,
		Metrics: m.metrics,
	})
	m.sessions[s.ID()] = s
	m.logger.Info("session opened", logging.SessionID(s.ID()))
	return s
}

// Get looks up a live session without creating one
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears down one session
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.logger.Info("session closed", logging.SessionID(id))
	}
	return ok
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session and the shared bus
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.bus.Shutdown()
}
