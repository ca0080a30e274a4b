package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// MemoryStore is an in-memory Store. It backs tests and local development;
// production uses the Redis store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	maxLog   int
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore capping conversion logs at maxLog
// entries.
func NewMemoryStore(maxLog int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		maxLog:   maxLog,
		now:      time.Now,
	}
}

// Get returns the session for the given id, creating it if absent.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok && sessionID != "" {
		return cloneSession(s), nil
	}

	s := reviveSession(sessionID, m.now())
	m.sessions[s.SessionID] = s
	return cloneSession(s), nil
}

// Touch updates the session's last-activity time.
func (m *MemoryStore) Touch(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	s.LastActivityTime = m.now()
	return nil
}

// SetAttribution caches the session's attribution (last-touch wins).
func (m *MemoryStore) SetAttribution(_ context.Context, sessionID string, attr domain.Attribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	s.Attribution = &attr
	s.LastActivityTime = m.now()
	return nil
}

// SetLeadScore caches the most recent lead score.
func (m *MemoryStore) SetLeadScore(_ context.Context, sessionID string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	s.LeadScore = &score
	s.LastActivityTime = m.now()
	return nil
}

// SetAssignment records the variant assigned for an experiment.
func (m *MemoryStore) SetAssignment(_ context.Context, sessionID, experimentID, variantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s.ExperimentAssignments == nil {
		s.ExperimentAssignments = make(map[string]string)
	}
	s.ExperimentAssignments[experimentID] = variantID
	s.LastActivityTime = m.now()
	return nil
}

// AppendConversion appends an event to the session's conversion log.
func (m *MemoryStore) AppendConversion(_ context.Context, sessionID string, ev domain.ConversionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	s.ConversionLog = capLog(append(s.ConversionLog, ev), m.maxLog)
	s.LastActivityTime = m.now()
	return nil
}

// load returns the stored session for id, creating one if needed. Callers
// must hold the write lock.
func (m *MemoryStore) load(sessionID string) *domain.Session {
	if s, ok := m.sessions[sessionID]; ok && sessionID != "" {
		return s
	}
	s := reviveSession(sessionID, m.now())
	m.sessions[s.SessionID] = s
	return s
}

// cloneSession copies a session so callers cannot mutate store state.
func cloneSession(s *domain.Session) *domain.Session {
	out := *s
	if s.ExperimentAssignments != nil {
		out.ExperimentAssignments = make(map[string]string, len(s.ExperimentAssignments))
		for k, v := range s.ExperimentAssignments {
			out.ExperimentAssignments[k] = v
		}
	}
	if s.ConversionLog != nil {
		out.ConversionLog = append([]domain.ConversionEvent(nil), s.ConversionLog...)
	}
	return &out
}
