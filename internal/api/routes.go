package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cro-engine/internal/config"
	"github.com/jonesrussell/cro-engine/internal/handler"
	"github.com/jonesrussell/cro-engine/internal/middleware"
)

// Handlers collects the route handlers the server mounts.
type Handlers struct {
	Health   *handler.HealthHandler
	Pageview *handler.PageviewHandler
	Lead     *handler.LeadHandler
	Assign   *handler.AssignHandler
	Track    *handler.TrackHandler
	Metrics  http.Handler
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, h Handlers, cfg *config.Config, done <-chan struct{}) {
	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(h.Metrics))

	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	api := router.Group("/api/v1")
	api.Use(middleware.BotFilter())
	api.Use(middleware.RateLimiter(cfg.RateLimit.MaxRequestsPerMinute, rateLimitWindow, done))

	api.POST("/pageview", h.Pageview.HandlePageview)
	api.POST("/leads", h.Lead.HandleLead)
	api.POST("/assign", h.Assign.HandleAssign)
	api.POST("/track", h.Track.HandleTrack)
}
