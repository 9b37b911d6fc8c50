package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/support-copilot/ticket-api/internal/persistence"
)

// ModelHealth reports whether the classification model is ready to serve.
type ModelHealth interface {
	ModelReady() bool
}

// HealthHandler reports service status and dependency connectivity.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	model       ModelHealth
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, model ModelHealth) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		model:       model,
	}
}

// Root GET / returns the service banner.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   h.serviceName,
		"version":   h.version,
		"status":    "online",
		"health":    "/health",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Check GET /health verifies storage connectivity and model readiness.
// Redis is reported but optional; it never degrades the status on its own.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	services := fiber.Map{}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		services["postgres"] = "error: " + err.Error()
		healthy = false
	} else {
		services["postgres"] = "connected"
	}

	if h.model.ModelReady() {
		services["llm_model"] = "healthy"
	} else {
		services["llm_model"] = "error: api key not configured"
		healthy = false
	}

	if err := h.redis.Ping(ctx); err != nil {
		services["cache"] = "disabled"
	} else {
		services["cache"] = "connected"
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"version":   h.version,
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	})
}
