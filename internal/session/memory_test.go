package session_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/session"
)

func TestMemoryStore_GetCreatesOnEmptyID(t *testing.T) {
	store := session.NewMemoryStore(50)

	s, err := store.Get(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotEmpty(t, s.SessionID, "a fresh session must receive a generated id")
	assert.False(t, s.StartTime.IsZero())

	again, err := store.Get(context.Background(), s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, again.SessionID)
	assert.Equal(t, s.StartTime, again.StartTime)
}

func TestMemoryStore_GetRevivesUnderGivenID(t *testing.T) {
	store := session.NewMemoryStore(50)

	s, err := store.Get(context.Background(), "visitor-123")
	require.NoError(t, err)
	assert.Equal(t, "visitor-123", s.SessionID,
		"an unknown id must come back as that id, not a fresh one")
}

func TestMemoryStore_AttributionLastTouchWins(t *testing.T) {
	store := session.NewMemoryStore(50)
	ctx := context.Background()

	s, err := store.Get(ctx, "")
	require.NoError(t, err)

	google := "google"
	first := domain.Attribution{Source: &google, Referrer: "https://google.com"}
	require.NoError(t, store.SetAttribution(ctx, s.SessionID, first))

	newsletter := "newsletter"
	second := domain.Attribution{Source: &newsletter}
	require.NoError(t, store.SetAttribution(ctx, s.SessionID, second))

	got, err := store.Get(ctx, s.SessionID)
	require.NoError(t, err)
	require.NotNil(t, got.Attribution)
	require.NotNil(t, got.Attribution.Source)
	assert.Equal(t, "newsletter", *got.Attribution.Source)
	assert.Empty(t, got.Attribution.Referrer, "the later touch replaces the whole attribution")
}

func TestMemoryStore_SetAssignment(t *testing.T) {
	store := session.NewMemoryStore(50)
	ctx := context.Background()

	require.NoError(t, store.SetAssignment(ctx, "v1", "hero-headline", "variant-b"))
	require.NoError(t, store.SetAssignment(ctx, "v1", "pricing-cta", "control"))

	s, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "variant-b", s.ExperimentAssignments["hero-headline"])
	assert.Equal(t, "control", s.ExperimentAssignments["pricing-cta"])
}

func TestMemoryStore_SetLeadScore(t *testing.T) {
	store := session.NewMemoryStore(50)
	ctx := context.Background()

	require.NoError(t, store.SetLeadScore(ctx, "v1", 65))

	s, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, s.LeadScore)
	assert.Equal(t, 65, *s.LeadScore)
}

func TestMemoryStore_ConversionLogCapDropsOldest(t *testing.T) {
	const maxLog = 5
	store := session.NewMemoryStore(maxLog)
	ctx := context.Background()

	for i := 0; i < maxLog+3; i++ {
		ev := domain.ConversionEvent{EventName: fmt.Sprintf("event-%d", i)}
		require.NoError(t, store.AppendConversion(ctx, "v1", ev))
	}

	s, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, s.ConversionLog, maxLog)
	assert.Equal(t, "event-3", s.ConversionLog[0].EventName, "oldest entries are dropped first")
	assert.Equal(t, "event-7", s.ConversionLog[maxLog-1].EventName)
}

func TestMemoryStore_GetReturnsClone(t *testing.T) {
	store := session.NewMemoryStore(50)
	ctx := context.Background()

	require.NoError(t, store.SetAssignment(ctx, "v1", "exp", "a"))

	s, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	s.ExperimentAssignments["exp"] = "tampered"
	s.ConversionLog = append(s.ConversionLog, domain.ConversionEvent{EventName: "tampered"})

	fresh, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "a", fresh.ExperimentAssignments["exp"])
	assert.Empty(t, fresh.ConversionLog)
}
