package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DashboardHandler serves the role-conditioned dashboard view.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Dashboard GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	dashboard, err := h.service.ForUser(c.Context(), actor)
	if err != nil {
		return err
	}
	recent := make([]dto.TicketSummary, 0, len(dashboard.RecentTickets))
	for i := range dashboard.RecentTickets {
		recent = append(recent, ticketSummary(&dashboard.RecentTickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Stats:          dashboard.Stats,
		RecentTickets:  recent,
		CategoryCounts: dashboard.CategoryCounts,
	}})
}
