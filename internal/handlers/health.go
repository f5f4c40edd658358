package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// WelcomeMessage is the body of GET /
const WelcomeMessage = "Welcome to the Social Media API. It is live and running."

const healthTimeout = 3 * time.Second

// HealthChecker probes the database
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Root answers the bare liveness probe
// GET /
func (h *Handlers) Root(c *gin.Context) {
	util.RespondMessage(c, http.StatusOK, WelcomeMessage)
}

// Health reports database reachability and gateway counters
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": h.now(),
		"service":   "social-media-backend",
		"database":  "ok",
	}
	status := http.StatusOK

	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unavailable"
			body["error"] = err.Error()
		}
	}

	if h.gateway != nil {
		body["websocket"] = h.gateway.Hub().GetStats()
		body["online"] = h.gateway.Presence().Count()
	}
	c.JSON(status, body)
}
