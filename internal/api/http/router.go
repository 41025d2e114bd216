package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/evently/internal/api/http/handlers"
	"github.com/spec-kit/evently/internal/auth"
	"github.com/spec-kit/evently/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Reservations   *handlers.ReservationsHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics is served on MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authenticated := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireAdmin()
	participantOnly := auth.RequireParticipant()

	events := app.Group("/events")
	events.Get("/", cfg.Events.ListPublished)
	events.Get("/all", authenticated, adminOnly, cfg.Events.ListAll)
	events.Post("/", authenticated, adminOnly, cfg.Events.Create)
	events.Get("/:id", cfg.Events.GetPublished)
	events.Put("/:id", authenticated, adminOnly, cfg.Events.Update)
	events.Patch("/:id/status", authenticated, adminOnly, cfg.Events.UpdateStatus)

	reservations := app.Group("/reservations", authenticated)
	reservations.Post("/", participantOnly, cfg.Reservations.Create)
	reservations.Get("/all", adminOnly, cfg.Reservations.ListAll)
	reservations.Get("/me", participantOnly, cfg.Reservations.ListMine)
	reservations.Get("/:id", adminOnly, cfg.Reservations.Get)
	reservations.Get("/:id/history", adminOnly, cfg.Reservations.History)
	reservations.Patch("/:id/status", adminOnly, cfg.Reservations.UpdateStatus)
	reservations.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleParticipant), cfg.Reservations.Cancel)

	app.Get("/tickets/:reservationId/download", authenticated, participantOnly, cfg.Tickets.Download)
}
