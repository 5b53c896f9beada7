package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	started time.Time
	ready   func() error
	store   string
}

// NewHealthHandler creates a health handler. ready is called on every
// readiness probe; nil means always ready (memory store).
func NewHealthHandler(store string, ready func() error) *HealthHandler {
	return &HealthHandler{
		started: time.Now().UTC(),
		ready:   ready,
		store:   store,
	}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the backing store is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Info reports build and runtime details.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store":          h.store,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
