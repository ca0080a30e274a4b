package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cro-engine/internal/attribution"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/session"
	"github.com/jonesrussell/cro-engine/internal/tracker"
)

// pageviewRequest is the navigation payload sent by the marketing sites on
// every page entry.
type pageviewRequest struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url" binding:"required"`
	Referrer  string `json:"referrer"`
}

// PageviewHandler records page navigations: it derives attribution from the
// landing URL, caches it on the session (last-touch wins), and tracks a
// page_view event.
type PageviewHandler struct {
	sessions session.Store
	tracker  *tracker.Tracker
	logger   logger.Logger
}

// NewPageviewHandler creates a PageviewHandler.
func NewPageviewHandler(sessions session.Store, t *tracker.Tracker, log logger.Logger) *PageviewHandler {
	return &PageviewHandler{sessions: sessions, tracker: t, logger: log}
}

// HandlePageview processes a navigation event and returns the session id
// the client should carry forward.
func (h *PageviewHandler) HandlePageview(c *gin.Context) {
	var req pageviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pageview payload"})
		return
	}

	// Bots get an answer but never mutate session state or emit events.
	if c.GetBool("is_bot") {
		c.JSON(http.StatusOK, gin.H{"session_id": req.SessionID})
		return
	}

	ctx := c.Request.Context()

	sess, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		h.logger.Error("Session lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	attr := attribution.Extract(req.URL, req.Referrer)
	if attr.IsZero() {
		if err := h.sessions.Touch(ctx, sess.SessionID); err != nil {
			h.logger.Warn("Failed to touch session", logger.Error(err))
		}
	} else {
		// Last-touch: fresh campaign parameters replace the cached value.
		if err := h.sessions.SetAttribution(ctx, sess.SessionID, attr); err != nil {
			h.logger.Warn("Failed to cache attribution", logger.Error(err))
		}
	}

	h.tracker.Track(ctx, sess.SessionID, tracker.EventInput{
		EventName:     "page_view",
		EventCategory: "navigation",
		EventLabel:    req.URL,
	})

	c.JSON(http.StatusOK, gin.H{"session_id": sess.SessionID})
}
