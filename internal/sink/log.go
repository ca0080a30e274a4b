package sink

import (
	"context"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
)

// LogSink writes each conversion event to the structured log. Useful in
// development and as a local audit trail alongside remote sinks.
type LogSink struct {
	name string
	log  logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(name string, log logger.Logger) *LogSink {
	return &LogSink{name: name, log: log}
}

// Name identifies the sink.
func (s *LogSink) Name() string {
	return s.name
}

// Deliver logs the event. It never fails.
func (s *LogSink) Deliver(_ context.Context, ev domain.ConversionEvent) error {
	s.log.Info("Conversion event",
		logger.String("sink", s.name),
		logger.String("event_id", ev.EventID),
		logger.String("event_name", ev.EventName),
		logger.String("session_id", ev.SessionID),
		logger.Float64("value", ev.Value),
	)
	return nil
}
