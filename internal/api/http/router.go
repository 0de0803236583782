package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Notifications  *handlers.NotificationsHandler
	Dashboard      *handlers.DashboardHandler
	AIChat         *handlers.AIChatHandler
	AdminUsers     *handlers.AdminUsersHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	protected.Get("/dashboard", cfg.Dashboard.Dashboard)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	protected.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)

	// Staff-facing alias over the same scoped listing.
	protected.Get("/requests", auth.RequireRole(domain.RoleAdmin, domain.RoleStaff), cfg.Tickets.ListTickets)

	protected.Get("/categories", cfg.Tickets.ListCategories)

	protected.Post("/comments", cfg.Comments.CreateComment)
	protected.Patch("/comments/:id", cfg.Comments.UpdateComment)
	protected.Delete("/comments/:id", cfg.Comments.DeleteComment)

	protected.Get("/notifications", cfg.Notifications.ListNotifications)
	protected.Get("/notifications/unread", cfg.Notifications.Unread)
	protected.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
	protected.Delete("/notifications/:id", cfg.Notifications.DeleteNotification)

	protected.Post("/ai/chat", cfg.AIChat.Chat)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Post("/users", cfg.AdminUsers.CreateUser)
	admin.Get("/users/:id", cfg.AdminUsers.GetUser)
	admin.Patch("/users/:id", cfg.AdminUsers.UpdateUser)
	admin.Delete("/users/:id", cfg.AdminUsers.DeleteUser)

	admin.Get("/categories", cfg.Categories.ListCategories)
	admin.Post("/categories", cfg.Categories.CreateCategory)
	admin.Patch("/categories/:id", cfg.Categories.UpdateCategory)
	admin.Delete("/categories/:id", cfg.Categories.DeleteCategory)
}
