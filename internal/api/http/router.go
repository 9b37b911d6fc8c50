package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/support-copilot/ticket-api/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Check)

	tickets := app.Group("/api/tickets")
	tickets.Post("/process", cfg.Tickets.Process)
	// stats registered before the :id wildcard on purpose
	tickets.Get("/stats/overview", cfg.Tickets.Stats)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Delete("/:id", cfg.Tickets.Delete)
}
