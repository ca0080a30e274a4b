package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/tracker"
)

// trackRequest is an explicit conversion event from the marketing sites.
type trackRequest struct {
	SessionID     string            `json:"session_id"`
	EventName     string            `json:"event_name"`
	EventCategory string            `json:"event_category"`
	EventLabel    string            `json:"event_label"`
	Value         float64           `json:"value"`
	CustomParams  map[string]string `json:"custom_parameters"`
}

// TrackHandler accepts conversion events.
type TrackHandler struct {
	tracker *tracker.Tracker
	logger  logger.Logger
}

// NewTrackHandler creates a TrackHandler.
func NewTrackHandler(t *tracker.Tracker, log logger.Logger) *TrackHandler {
	return &TrackHandler{tracker: t, logger: log}
}

// HandleTrack forwards the event to the tracker and always answers 202.
// Invalid events (an empty name, say) are dropped server-side with a
// warning; the calling UI flow must never see tracking break.
func (h *TrackHandler) HandleTrack(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	if c.GetBool("is_bot") {
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
		return
	}

	h.tracker.Track(c.Request.Context(), req.SessionID, tracker.EventInput{
		EventName:     req.EventName,
		EventCategory: req.EventCategory,
		EventLabel:    req.EventLabel,
		Value:         req.Value,
		CustomParams:  req.CustomParams,
	})

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
