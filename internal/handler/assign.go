package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cro-engine/internal/experiment"
	"github.com/jonesrussell/cro-engine/internal/logger"
	"github.com/jonesrussell/cro-engine/internal/metrics"
	"github.com/jonesrussell/cro-engine/internal/session"
)

// assignRequest asks for the visitor's variant of one experiment.
type assignRequest struct {
	SessionID    string            `json:"session_id" binding:"required"`
	ExperimentID string            `json:"experiment_id" binding:"required"`
	URL          string            `json:"url"`
	Location     string            `json:"location"`
	Custom       map[string]string `json:"custom"`
}

// assignResponse carries the assignment. Variant is null when the visitor
// is not eligible.
type assignResponse struct {
	ExperimentID string  `json:"experiment_id"`
	Variant      *string `json:"variant"`
}

// AssignHandler resolves experiment variant assignments.
type AssignHandler struct {
	registry *experiment.Registry
	assigner *experiment.Assigner
	sessions session.Store
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewAssignHandler creates an AssignHandler.
func NewAssignHandler(
	registry *experiment.Registry,
	assigner *experiment.Assigner,
	sessions session.Store,
	m *metrics.Metrics,
	log logger.Logger,
) *AssignHandler {
	return &AssignHandler{
		registry: registry,
		assigner: assigner,
		sessions: sessions,
		metrics:  m,
		logger:   log,
	}
}

// HandleAssign returns the visitor's variant for a configured experiment,
// or null when targeting rules reject the visitor or the experiment is not
// running. The degraded path is always "no experiment assigned", never an
// error that could break the calling page.
func (h *AssignHandler) HandleAssign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and experiment_id are required"})
		return
	}

	exp, ok := h.registry.Get(req.ExperimentID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown experiment"})
		return
	}

	resp := assignResponse{ExperimentID: exp.ID}

	// Bots never receive assignments.
	if c.GetBool("is_bot") {
		c.JSON(http.StatusOK, resp)
		return
	}

	ctx := c.Request.Context()

	rctx := experiment.RuleContext{
		URL:       req.URL,
		Device:    experiment.DeviceFor(c.Request.UserAgent()),
		Location:  req.Location,
		UserAgent: c.Request.UserAgent(),
		Custom:    req.Custom,
	}
	hadAssignment := false
	if sess, err := h.sessions.Get(ctx, req.SessionID); err == nil {
		if sess.Attribution != nil {
			rctx.Attribution = *sess.Attribution
		}
		_, hadAssignment = sess.AssignmentFor(exp.ID)
	}

	if variant, assigned := h.assigner.Assign(ctx, req.SessionID, exp, rctx); assigned {
		resp.Variant = &variant
		if !hadAssignment {
			h.metrics.Assignments.WithLabelValues(exp.ID, variant).Inc()
		}
	}

	c.JSON(http.StatusOK, resp)
}
