package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func seedDashboardTickets(t *testing.T, repo *fakeTicketRepo) (staffID, userID string) {
	t.Helper()
	ctx := context.Background()
	staffID = "staff-1"
	userID = "user-1"

	add := func(requester string, assignee *string, status domain.TicketStatus, priority domain.TicketPriority) {
		require.NoError(t, repo.Create(ctx, &domain.Ticket{
			RequesterID: requester,
			AssigneeID:  assignee,
			CategoryID:  "cat-1",
			Title:       "seed",
			Description: "seed",
			Status:      status,
			Priority:    priority,
		}))
	}

	add(userID, nil, domain.TicketStatusOpen, domain.TicketPriorityHigh)
	add(userID, &staffID, domain.TicketStatusInProgress, domain.TicketPriorityHigh)
	add(userID, &staffID, domain.TicketStatusClosed, domain.TicketPriorityLow)
	add("user-2", nil, domain.TicketStatusOpen, domain.TicketPriorityMedium)
	return staffID, userID
}

func TestAdminDashboard(t *testing.T) {
	repo := newFakeTicketRepo()
	seedDashboardTickets(t, repo)
	svc := NewDashboardService(repo)

	dashboard, err := svc.ForUser(context.Background(), &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, int64(4), dashboard.Stats["total_tickets"])
	assert.Equal(t, int64(2), dashboard.Stats["open_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["in_progress_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["closed_tickets"])
	// High priority excludes closed tickets.
	assert.Equal(t, int64(2), dashboard.Stats["high_priority_tickets"])

	assert.Len(t, dashboard.RecentTickets, 4)
	assert.Equal(t, int64(4), dashboard.CategoryCounts["cat-1"])
}

func TestStaffDashboardScopedToAssignments(t *testing.T) {
	repo := newFakeTicketRepo()
	staffID, _ := seedDashboardTickets(t, repo)
	svc := NewDashboardService(repo)

	dashboard, err := svc.ForUser(context.Background(), &domain.User{ID: staffID, Role: domain.RoleStaff})
	require.NoError(t, err)

	assert.Equal(t, int64(2), dashboard.Stats["my_assigned_tickets"])
	assert.Equal(t, int64(0), dashboard.Stats["my_open_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["my_in_progress_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["my_closed_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["high_priority_tickets"])

	assert.Len(t, dashboard.RecentTickets, 2)
	assert.Nil(t, dashboard.CategoryCounts)
}

func TestUserDashboardScopedToOwnTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	_, userID := seedDashboardTickets(t, repo)
	svc := NewDashboardService(repo)

	dashboard, err := svc.ForUser(context.Background(), &domain.User{ID: userID, Role: domain.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, int64(3), dashboard.Stats["my_total_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["my_open_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["my_in_progress_tickets"])
	assert.Equal(t, int64(1), dashboard.Stats["my_closed_tickets"])

	assert.Len(t, dashboard.RecentTickets, 3)
}
