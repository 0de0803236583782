package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const dashboardRecentLimit = 10

// DashboardService produces role-conditioned aggregate views.
type DashboardService struct {
	tickets repository.TicketRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{tickets: tickets}
}

// Dashboard bundles counts and recent tickets for one role's view.
type Dashboard struct {
	Stats          map[string]int64
	RecentTickets  []domain.Ticket
	CategoryCounts map[string]int64
}

// ForUser computes the dashboard for the acting user. Admins see global
// statistics, staff see their assigned slice, users their own tickets.
func (s *DashboardService) ForUser(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	switch {
	case actor.IsAdmin():
		return s.adminDashboard(ctx)
	case actor.IsStaff():
		return s.staffDashboard(ctx, actor.ID)
	default:
		return s.userDashboard(ctx, actor.ID)
	}
}

func (s *DashboardService) adminDashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.countSet(ctx, map[string]repository.TicketFilter{
		"total_tickets":       {},
		"open_tickets":        withStatus(domain.TicketStatusOpen),
		"in_progress_tickets": withStatus(domain.TicketStatusInProgress),
		"closed_tickets":      withStatus(domain.TicketStatusClosed),
		"high_priority_tickets": {
			Priority:  priorityPtr(domain.TicketPriorityHigh),
			NotStatus: statusPtr(domain.TicketStatusClosed),
		},
	})
	if err != nil {
		return nil, err
	}

	recent, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{Limit: dashboardRecentLimit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	categories, err := s.tickets.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Dashboard{Stats: stats, RecentTickets: recent, CategoryCounts: categories}, nil
}

func (s *DashboardService) staffDashboard(ctx context.Context, staffID string) (*Dashboard, error) {
	stats, err := s.countSet(ctx, map[string]repository.TicketFilter{
		"my_assigned_tickets":     {AssigneeID: &staffID},
		"my_open_tickets":         {AssigneeID: &staffID, Status: statusPtr(domain.TicketStatusOpen)},
		"my_in_progress_tickets":  {AssigneeID: &staffID, Status: statusPtr(domain.TicketStatusInProgress)},
		"my_closed_tickets":       {AssigneeID: &staffID, Status: statusPtr(domain.TicketStatusClosed)},
		"high_priority_tickets": {
			AssigneeID: &staffID,
			Priority:   priorityPtr(domain.TicketPriorityHigh),
			NotStatus:  statusPtr(domain.TicketStatusClosed),
		},
	})
	if err != nil {
		return nil, err
	}
	recent, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssigneeID: &staffID, Limit: dashboardRecentLimit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Dashboard{Stats: stats, RecentTickets: recent}, nil
}

func (s *DashboardService) userDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	stats, err := s.countSet(ctx, map[string]repository.TicketFilter{
		"my_total_tickets":       {RequesterID: &userID},
		"my_open_tickets":        {RequesterID: &userID, Status: statusPtr(domain.TicketStatusOpen)},
		"my_in_progress_tickets": {RequesterID: &userID, Status: statusPtr(domain.TicketStatusInProgress)},
		"my_closed_tickets":      {RequesterID: &userID, Status: statusPtr(domain.TicketStatusClosed)},
	})
	if err != nil {
		return nil, err
	}
	recent, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{RequesterID: &userID, Limit: dashboardRecentLimit})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Dashboard{Stats: stats, RecentTickets: recent}, nil
}

func (s *DashboardService) countSet(ctx context.Context, filters map[string]repository.TicketFilter) (map[string]int64, error) {
	stats := make(map[string]int64, len(filters))
	for name, filter := range filters {
		count, err := s.tickets.CountWithFilter(ctx, filter)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		stats[name] = count
	}
	return stats, nil
}

func withStatus(status domain.TicketStatus) repository.TicketFilter {
	return repository.TicketFilter{Status: &status}
}

func statusPtr(status domain.TicketStatus) *domain.TicketStatus {
	return &status
}

func priorityPtr(priority domain.TicketPriority) *domain.TicketPriority {
	return &priority
}
