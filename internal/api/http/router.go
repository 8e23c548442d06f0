package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	SupportTickets *handlers.SupportTicketsHandler
	Comments       *handlers.CommentsHandler
	AuditLogs      *handlers.AuditLogsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleEmployee), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", auth.RequireRole(domain.RoleEmployee), cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	tickets.Post("/:id/comments", auth.RequireRole(domain.RoleITSupport), cfg.Comments.AddComment)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Get("/:id/audit-logs", auth.RequireRole(domain.RoleITSupport), cfg.AuditLogs.ListForTicket)

	support := protected.Group("/support", auth.RequireRole(domain.RoleITSupport))
	support.Get("/tickets", cfg.SupportTickets.ListAllTickets)
	support.Get("/tickets/search", cfg.SupportTickets.SearchTickets)
	support.Put("/tickets/:id/status", cfg.SupportTickets.UpdateTicketStatus)

	protected.Get("/audit-logs", auth.RequireRole(domain.RoleITSupport), cfg.AuditLogs.ListAll)
}
