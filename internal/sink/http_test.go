package sink_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/cro-engine/internal/config"
	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/sink"
)

func TestHTTPSinkDeliver(t *testing.T) {
	var received domain.ConversionEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := sink.NewHTTPSink("crm", srv.URL, 2*time.Second)
	ev := domain.ConversionEvent{EventID: "ev-1", EventName: "purchase", SessionID: "v1"}

	require.NoError(t, s.Deliver(context.Background(), ev))
	assert.Equal(t, "ev-1", received.EventID)
	assert.Equal(t, "purchase", received.EventName)
}

func TestHTTPSinkDeliverNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := sink.NewHTTPSink("crm", srv.URL, 2*time.Second)

	err := s.Deliver(context.Background(), domain.ConversionEvent{EventID: "ev-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPSinkDeliverUnreachable(t *testing.T) {
	s := sink.NewHTTPSink("crm", "http://127.0.0.1:1", 200*time.Millisecond)

	err := s.Deliver(context.Background(), domain.ConversionEvent{EventID: "ev-1"})
	assert.Error(t, err)
}

func TestLogSinkNeverFails(t *testing.T) {
	s := sink.NewLogSink("debug", logger.NewNop())
	assert.NoError(t, s.Deliver(context.Background(), domain.ConversionEvent{EventName: "page_view"}))
}

func TestFromConfig(t *testing.T) {
	sinks, err := sink.FromConfig([]config.SinkConfig{
		{Name: "crm", Type: "http", URL: "https://crm.example.com/hooks", Timeout: time.Second},
		{Name: "debug", Type: "log"},
	}, logger.NewNop())
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.Equal(t, "crm", sinks[0].Name())
	assert.Equal(t, "debug", sinks[1].Name())

	_, err = sink.FromConfig([]config.SinkConfig{{Name: "bad", Type: "kafka"}}, logger.NewNop())
	assert.Error(t, err)
}
