package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is anything readiness depends on: the match store, the session backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Pingers checks each dependency in order and reports the first failure.
type Pingers []Pinger

func (ps Pingers) Ping(ctx context.Context) error {
	for _, p := range ps {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	deps Pinger
}

func NewHealthHandler(deps Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness responds OK while the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness verifies the match store and the session backend.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.deps.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
