package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	users      *fakeUserRepo
	categories *fakeCategoryRepo
	comments   *fakeCommentRepo
	dispatcher *recordingDispatcher

	admin     *domain.User
	staff     *domain.User
	requester *domain.User
	category  *domain.Category
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	fx := &ticketFixture{
		tickets:    newFakeTicketRepo(),
		users:      newFakeUserRepo(),
		categories: newFakeCategoryRepo(),
		comments:   newFakeCommentRepo(),
		dispatcher: &recordingDispatcher{},
	}
	fx.service = NewTicketService(TicketDependencies{
		TicketRepo:   fx.tickets,
		CommentRepo:  fx.comments,
		CategoryRepo: fx.categories,
		UserRepo:     fx.users,
		Dispatcher:   fx.dispatcher,
	})

	ctx := context.Background()
	fx.admin = &domain.User{Name: "Ada Admin", Email: "ada@example.com", Role: domain.RoleAdmin}
	fx.staff = &domain.User{Name: "Sam Staff", Email: "sam@example.com", Role: domain.RoleStaff}
	fx.requester = &domain.User{Name: "Uma User", Email: "uma@example.com", Role: domain.RoleUser}
	require.NoError(t, fx.users.Create(ctx, fx.admin))
	require.NoError(t, fx.users.Create(ctx, fx.staff))
	require.NoError(t, fx.users.Create(ctx, fx.requester))

	fx.category = &domain.Category{Name: "Hardware"}
	require.NoError(t, fx.categories.Create(ctx, fx.category))
	return fx
}

func (fx *ticketFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := fx.service.CreateTicket(context.Background(), fx.requester, TicketCreateInput{
		CategoryID:  fx.category.ID,
		Title:       "Laptop will not boot",
		Description: "Black screen since this morning",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketDefaultsAndNotifiesAdmins(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.createTicket(t)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, fx.requester.ID, ticket.RequesterID)
	assert.Nil(t, ticket.AssigneeID)

	published := fx.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTicketCreated, published[0].Type)
	assert.Equal(t, []string{fx.admin.ID}, published[0].RecipientIDs)
	assert.Equal(t, fx.requester.ID, published[0].Actor.ID)
}

func TestCreateTicketValidation(t *testing.T) {
	fx := newTicketFixture(t)

	_, err := fx.service.CreateTicket(context.Background(), fx.requester, TicketCreateInput{})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 422, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "description")
	assert.Contains(t, domainErr.Details, "category_id")

	_, err = fx.service.CreateTicket(context.Background(), fx.requester, TicketCreateInput{
		CategoryID:  "missing",
		Title:       "x",
		Description: "y",
		Priority:    domain.TicketPriorityLow,
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details, "category_id")
}

func TestListTicketsScoping(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	mine := fx.createTicket(t)
	other := &domain.Ticket{
		RequesterID: fx.admin.ID,
		CategoryID:  fx.category.ID,
		Title:       "Printer jam",
		Description: "Floor 3",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
	}
	require.NoError(t, fx.tickets.Create(ctx, other))
	assigned := &domain.Ticket{
		RequesterID: fx.admin.ID,
		AssigneeID:  &fx.staff.ID,
		CategoryID:  fx.category.ID,
		Title:       "VPN down",
		Description: "Remote team blocked",
		Status:      domain.TicketStatusInProgress,
		Priority:    domain.TicketPriorityHigh,
	}
	require.NoError(t, fx.tickets.Create(ctx, assigned))

	adminPage, err := fx.service.ListTickets(ctx, fx.admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), adminPage.Total)

	staffPage, err := fx.service.ListTickets(ctx, fx.staff, TicketListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), staffPage.Total)
	assert.Equal(t, assigned.ID, staffPage.Tickets[0].ID)

	userPage, err := fx.service.ListTickets(ctx, fx.requester, TicketListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), userPage.Total)
	assert.Equal(t, mine.ID, userPage.Tickets[0].ID)
}

func TestGetTicketVisibility(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	got, _, err := fx.service.GetTicket(ctx, fx.requester, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, _, err = fx.service.GetTicket(ctx, fx.staff, ticket.ID)
	assert.True(t, apperrors.IsForbidden(err))

	_, _, err = fx.service.GetTicket(ctx, fx.requester, "missing")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestStatusChangeNotifiesRequesterOnlyWhenChanged(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	inProgress := domain.TicketStatusInProgress
	_, err := fx.service.UpdateTicket(ctx, fx.staff, ticket.ID, TicketUpdateInput{Status: &inProgress})
	require.NoError(t, err)

	published := fx.dispatcher.published()
	require.Len(t, published, 2) // ticket_created + status change
	assert.Equal(t, events.EventTicketStatusChanged, published[1].Type)
	assert.Equal(t, []string{fx.requester.ID}, published[1].RecipientIDs)

	// Same status again: no new event.
	_, err = fx.service.UpdateTicket(ctx, fx.staff, ticket.ID, TicketUpdateInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.published(), 2)
}

func TestAssignmentNotifiesNewAssignee(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	updated, err := fx.service.UpdateTicket(ctx, fx.admin, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.staff.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, fx.staff.ID, *updated.AssigneeID)

	published := fx.dispatcher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTicketAssigned, published[1].Type)
	assert.Equal(t, []string{fx.staff.ID}, published[1].RecipientIDs)

	// Re-assigning to the same person is a no-op for notifications.
	_, err = fx.service.UpdateTicket(ctx, fx.admin, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.staff.ID,
	})
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.published(), 2)

	// Unassigning never notifies.
	_, err = fx.service.UpdateTicket(ctx, fx.admin, ticket.ID, TicketUpdateInput{SetAssignee: true})
	require.NoError(t, err)
	assert.Len(t, fx.dispatcher.published(), 2)
}

func TestAssigneeMustBeStaffOrAdmin(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.createTicket(t)

	_, err := fx.service.UpdateTicket(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.requester.ID,
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 422, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "assignee_id")
}

func TestUserCannotTouchStatusOrAssignee(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	closed := domain.TicketStatusClosed
	_, err := fx.service.UpdateTicket(ctx, fx.requester, ticket.ID, TicketUpdateInput{Status: &closed})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = fx.service.UpdateTicket(ctx, fx.requester, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.staff.ID,
	})
	assert.True(t, apperrors.IsForbidden(err))

	// The ticket stays untouched after refused updates.
	stored, err := fx.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.AssigneeID)
}

func TestContentEditsFreezeOnceAssigned(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	newTitle := "Laptop will not boot at all"
	updated, err := fx.service.UpdateTicket(ctx, fx.requester, ticket.ID, TicketUpdateInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)

	_, err = fx.service.UpdateTicket(ctx, fx.admin, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.staff.ID,
	})
	require.NoError(t, err)

	another := "Changed again"
	_, err = fx.service.UpdateTicket(ctx, fx.requester, ticket.ID, TicketUpdateInput{Title: &another})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestStaffPickupVersusReassign(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	ticket := fx.createTicket(t)

	// Staff may pick up an unassigned ticket.
	_, err := fx.service.UpdateTicket(ctx, fx.staff, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.staff.ID,
	})
	require.NoError(t, err)

	// But not move it once someone holds it.
	_, err = fx.service.UpdateTicket(ctx, fx.staff, ticket.ID, TicketUpdateInput{
		SetAssignee: true,
		AssigneeID:  &fx.admin.ID,
	})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestDeleteTicket(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	ticket := fx.createTicket(t)
	assert.True(t, apperrors.IsForbidden(fx.service.DeleteTicket(ctx, fx.staff, ticket.ID)))
	require.NoError(t, fx.service.DeleteTicket(ctx, fx.requester, ticket.ID))

	ticket = fx.createTicket(t)
	require.NoError(t, fx.service.DeleteTicket(ctx, fx.admin, ticket.ID))
}
