// Package session provides the per-visitor session store.
//
// A session is read and written as a whole value (last-write-wins), which
// keeps two tabs racing on the same visitor from producing a partially
// written record. Attribution follows a last-touch policy: a later
// navigation carrying campaign parameters replaces the cached attribution.
// This is a deliberate policy choice, not a technical constraint.
package session

import (
	"context"
	"time"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// Store is the session state abstraction shared by attribution, experiment
// assignment, and conversion tracking. Implementations create a session on
// first access: Get with an empty id generates a fresh session id, and Get
// with an unknown id revives a session under that id so deterministic
// variant bucketing stays stable across store eviction.
type Store interface {
	// Get returns the session for the given id, creating it if absent.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Touch updates the session's last-activity time.
	Touch(ctx context.Context, sessionID string) error

	// SetAttribution caches the session's attribution (last-touch wins).
	SetAttribution(ctx context.Context, sessionID string, attr domain.Attribution) error

	// SetLeadScore caches the most recent lead score for event enrichment.
	SetLeadScore(ctx context.Context, sessionID string, score int) error

	// SetAssignment records the variant assigned for an experiment.
	SetAssignment(ctx context.Context, sessionID, experimentID, variantID string) error

	// AppendConversion appends an event to the session's conversion log,
	// dropping the oldest entries beyond the configured cap.
	AppendConversion(ctx context.Context, sessionID string, ev domain.ConversionEvent) error
}

// reviveSession builds a session for an id that has no stored record.
func reviveSession(sessionID string, now time.Time) *domain.Session {
	if sessionID == "" {
		return domain.NewSession(now)
	}
	s := domain.NewSession(now)
	s.SessionID = sessionID
	return s
}

// capLog trims the front of the conversion log so it holds at most maxLog
// entries. A non-positive cap disables trimming.
func capLog(log []domain.ConversionEvent, maxLog int) []domain.ConversionEvent {
	if maxLog <= 0 || len(log) <= maxLog {
		return log
	}
	return log[len(log)-maxLog:]
}
