// Package tracker validates, enriches, and dispatches conversion events.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/metrics"
	"github.com/jonesrussell/cro-engine/internal/session"
	"github.com/jonesrussell/cro-engine/internal/sink"
	"github.com/jonesrussell/cro-engine/internal/storage"
)

// EventInput carries the caller-supplied fields of a conversion event. The
// timestamp and enrichment fields are stamped by the tracker, never by the
// caller.
type EventInput struct {
	EventName     string            `json:"event_name"`
	EventCategory string            `json:"event_category,omitempty"`
	EventLabel    string            `json:"event_label,omitempty"`
	Value         float64           `json:"value,omitempty"`
	CustomParams  map[string]string `json:"custom_parameters,omitempty"`
}

// Tracker records conversion events. Tracking is fire-and-forget: the
// session log is written first and is authoritative, then every sink is
// attempted independently. A sink failure is logged and counted, never
// retried, and never surfaced to the caller.
type Tracker struct {
	sessions session.Store
	sinks    []sink.Sink
	archive  *storage.Buffer
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	wg       sync.WaitGroup
}

// New creates a Tracker. The archive buffer may be nil when no durable
// archive is configured.
func New(
	sessions session.Store,
	sinks []sink.Sink,
	archive *storage.Buffer,
	log logger.Logger,
	m *metrics.Metrics,
) *Tracker {
	return &Tracker{
		sessions: sessions,
		sinks:    sinks,
		archive:  archive,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Track validates and dispatches one conversion event. Invalid events are
// dropped with a warning; nothing here ever propagates an error to the
// calling flow.
func (t *Tracker) Track(ctx context.Context, sessionID string, in EventInput) {
	if in.EventName == "" {
		t.log.Warn("Dropping conversion event with empty name",
			logger.String("session_id", sessionID),
		)
		t.metrics.EventsDropped.Inc()
		return
	}

	ev := domain.ConversionEvent{
		EventID:       uuid.NewString(),
		EventName:     in.EventName,
		EventCategory: in.EventCategory,
		EventLabel:    in.EventLabel,
		Value:         in.Value,
		CustomParams:  in.CustomParams,
		SessionID:     sessionID,
		Timestamp:     t.now(),
	}

	t.enrich(ctx, &ev)

	// The local log is written before any dispatch attempt so it stays
	// authoritative even when every sink is unreachable.
	if err := t.sessions.AppendConversion(ctx, ev.SessionID, ev); err != nil {
		t.log.Warn("Failed to append event to session log",
			logger.String("event_name", ev.EventName),
			logger.Error(err),
		)
	}

	t.metrics.EventsTracked.Inc()
	t.dispatch(ev)
}

// enrich attaches the session's attribution, assignments, and lead score.
// A session store failure degrades to an unenriched event.
func (t *Tracker) enrich(ctx context.Context, ev *domain.ConversionEvent) {
	sess, err := t.sessions.Get(ctx, ev.SessionID)
	if err != nil {
		t.log.Warn("Session lookup failed, dispatching unenriched event",
			logger.String("event_name", ev.EventName),
			logger.Error(err),
		)
		return
	}

	ev.SessionID = sess.SessionID
	ev.Attribution = sess.Attribution
	ev.LeadScore = sess.LeadScore
	if len(sess.ExperimentAssignments) > 0 {
		ev.Assignments = sess.ExperimentAssignments
	}
}

// dispatch forwards the event to the archive buffer and to every sink,
// each in its own goroutine so one slow or failing sink cannot hold up
// another or the caller.
func (t *Tracker) dispatch(ev domain.ConversionEvent) {
	if t.archive != nil && !t.archive.Send(ev) {
		t.log.Warn("Archive buffer full, dropping event copy",
			logger.String("event_id", ev.EventID),
		)
	}

	for _, s := range t.sinks {
		t.wg.Add(1)
		go t.deliver(s, ev)
	}
}

// deliver runs one sink delivery, swallowing panics and errors.
func (t *Tracker) deliver(s sink.Sink, ev domain.ConversionEvent) {
	defer t.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			t.metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			t.log.Error("Sink panicked",
				logger.String("sink", s.Name()),
				logger.Any("panic", r),
			)
		}
	}()

	// Deliveries are detached from the request context: the caller's flow
	// never waits on sink completion. Sink-level timeouts are the sink's
	// responsibility.
	if err := s.Deliver(context.Background(), ev); err != nil {
		t.metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
		t.log.Warn("Sink delivery failed",
			logger.String("sink", s.Name()),
			logger.String("event_id", ev.EventID),
			logger.Error(err),
		)
		return
	}
	t.metrics.SinkDeliveries.WithLabelValues(s.Name()).Inc()
}

// Wait blocks until all in-flight sink deliveries finish. Called on
// shutdown.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
