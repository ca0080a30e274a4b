package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session holds the per-visitor state for the lifetime of a visit: the
// opaque session id, cached attribution, experiment assignments, and the
// append-only conversion log. Sessions are never explicitly destroyed; they
// expire by session store TTL.
type Session struct {
	SessionID        string    `json:"session_id"`
	StartTime        time.Time `json:"start_time"`
	LastActivityTime time.Time `json:"last_activity_time"`

	// Attribution is the cached marketing attribution for this session.
	// Policy: last-touch wins. A later navigation that carries campaign
	// parameters replaces the cached value.
	Attribution *Attribution `json:"attribution,omitempty"`

	// ExperimentAssignments maps experiment id to the assigned variant id.
	ExperimentAssignments map[string]string `json:"experiment_assignments,omitempty"`

	// ConversionLog is the ordered, append-only record of tracked events,
	// capped by the session store at a configured maximum.
	ConversionLog []ConversionEvent `json:"conversion_log,omitempty"`

	// LeadScore is the most recent lead score computed for this visitor,
	// kept for conversion event enrichment.
	LeadScore *int `json:"lead_score,omitempty"`
}

// NewSession creates a session with a freshly generated id.
func NewSession(now time.Time) *Session {
	return &Session{
		SessionID:             uuid.NewString(),
		StartTime:             now,
		LastActivityTime:      now,
		ExperimentAssignments: make(map[string]string),
	}
}

// AssignmentFor returns the cached variant id for an experiment, if any.
func (s *Session) AssignmentFor(experimentID string) (string, bool) {
	v, ok := s.ExperimentAssignments[experimentID]
	return v, ok
}
