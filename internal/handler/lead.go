package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/scoring"
	"github.com/jonesrussell/cro-engine/internal/session"
	"github.com/jonesrussell/cro-engine/internal/tracker"
)

// leadRequest is a form submission from the marketing sites.
type leadRequest struct {
	SessionID   string   `json:"session_id"`
	Email       string   `json:"email" binding:"required"`
	CompanyName string   `json:"company_name"`
	Phone       string   `json:"phone"`
	CompanySize string   `json:"company_size"`
	Urgency     string   `json:"urgency"`
	Industry    string   `json:"industry"`
	Challenges  []string `json:"challenges"`
}

// LeadHandler scores submitted leads and records the lead_submitted
// conversion.
type LeadHandler struct {
	sessions session.Store
	tracker  *tracker.Tracker
	logger   logger.Logger
}

// NewLeadHandler creates a LeadHandler.
func NewLeadHandler(sessions session.Store, t *tracker.Tracker, log logger.Logger) *LeadHandler {
	return &LeadHandler{sessions: sessions, tracker: t, logger: log}
}

// HandleLead scores the lead and returns the score. Scoring never fails: a
// malformed email simply contributes zero to its bucket.
func (h *LeadHandler) HandleLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	score := scoring.Score(domain.LeadScoreInputs{
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		CompanySize: domain.CompanySize(req.CompanySize),
		Urgency:     domain.Urgency(req.Urgency),
		Industry:    domain.Industry(req.Industry),
		Challenges:  req.Challenges,
	})

	if c.GetBool("is_bot") {
		c.JSON(http.StatusOK, gin.H{"session_id": req.SessionID, "score": score})
		return
	}

	ctx := c.Request.Context()

	sess, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		h.logger.Error("Session lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	if err := h.sessions.SetLeadScore(ctx, sess.SessionID, score); err != nil {
		h.logger.Warn("Failed to cache lead score", logger.Error(err))
	}

	h.tracker.Track(ctx, sess.SessionID, tracker.EventInput{
		EventName:     "lead_submitted",
		EventCategory: "lead",
		Value:         float64(score),
	})

	c.JSON(http.StatusOK, gin.H{"session_id": sess.SessionID, "score": score})
}
