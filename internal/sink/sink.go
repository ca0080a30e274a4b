// Package sink defines the outbound analytics sink abstraction and its
// built-in implementations. Sinks are opaque receivers: the tracker makes
// no assumption about a sink's own delivery guarantees, and delivery is
// best-effort, at-most-once, with no retry queue.
package sink

import (
	"context"
	"fmt"

	"github.com/jonesrussell/cro-engine/internal/config"
	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
)

// Sink receives enriched conversion events.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Deliver sends one event. Errors are logged by the tracker, never
	// surfaced to callers.
	Deliver(ctx context.Context, ev domain.ConversionEvent) error
}

// FromConfig builds the configured sinks. Zero sinks is valid.
func FromConfig(cfgs []config.SinkConfig, log logger.Logger) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfgs))
	for i := range cfgs {
		cfg := cfgs[i]
		switch cfg.Type {
		case "http":
			sinks = append(sinks, NewHTTPSink(cfg.Name, cfg.URL, cfg.Timeout))
		case "log":
			sinks = append(sinks, NewLogSink(cfg.Name, log))
		default:
			// Config validation rejects unknown types before this point.
			return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
		}
	}
	return sinks, nil
}
