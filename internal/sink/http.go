package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// HTTPSink posts each conversion event as a JSON document to a fixed
// endpoint. The per-sink timeout is the sink's own responsibility; the
// tracker never waits on it.
type HTTPSink struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPSink creates an HTTPSink with the given delivery timeout.
func NewHTTPSink(name, url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the sink.
func (s *HTTPSink) Name() string {
	return s.name
}

// Deliver posts the event and treats any non-2xx response as a failure.
func (s *HTTPSink) Deliver(ctx context.Context, ev domain.ConversionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.EventID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sink %s returned status %d", s.name, resp.StatusCode)
	}
	return nil
}
