package domain

import "time"

// ConversionEvent is a single tracked conversion, enriched with the
// session's attribution, experiment assignments, and lead score before
// dispatch. Immutable once created; the timestamp is stamped at dispatch,
// never supplied by the caller.
type ConversionEvent struct {
	EventID       string            `json:"event_id"`
	EventName     string            `json:"event_name"`
	EventCategory string            `json:"event_category,omitempty"`
	EventLabel    string            `json:"event_label,omitempty"`
	Value         float64           `json:"value,omitempty"`
	CustomParams  map[string]string `json:"custom_parameters,omitempty"`

	SessionID   string            `json:"session_id"`
	Attribution *Attribution      `json:"attribution,omitempty"`
	Assignments map[string]string `json:"experiment_assignments,omitempty"`
	LeadScore   *int              `json:"lead_score,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}
