package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const maxTitleLength = 255

// TicketService coordinates the ticket lifecycle: creation, listing,
// policy-gated updates and the notification fan-out they trigger.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// TicketCreateInput describes ticket creation payload. The requester is
// always the acting user, never client input.
type TicketCreateInput struct {
	CategoryID  string
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries a partial update. Nil fields are untouched.
// AssigneeID is only applied when SetAssignee is true, so an explicit
// unassign (nil value) is distinguishable from "not provided".
type TicketUpdateInput struct {
	CategoryID  *string
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	SetAssignee bool
	AssigneeID  *string
}

// TicketListFilter describes listing filters; all are AND-composed.
type TicketListFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	CategoryID *string
	Search     *string
	Page       int
	PageSize   int
}

// TicketPage bundles a listing result with its total for pagination.
type TicketPage struct {
	Tickets []domain.Ticket
	Total   int64
	Page    int
	PerPage int
}

// CreateTicket creates a ticket for the acting user and notifies admins.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if input.CategoryID == "" {
		details["category_id"] = "required"
	}
	if title == "" {
		details["title"] = "required"
	} else if len(title) > maxTitleLength {
		details["title"] = "must be at most 255 characters"
	}
	if description == "" {
		details["description"] = "required"
	}
	if !input.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket payload", details)
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid ticket payload", map[string]any{"category_id": "unknown category"})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		RequesterID: actor.ID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.notifyAdminsCreated(ctx, actor, ticket)
	return ticket, nil
}

// ListTickets returns a page of tickets visible to the actor.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) (*TicketPage, error) {
	repoFilter := repository.TicketFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		CategoryID: filter.CategoryID,
		SearchTerm: filter.Search,
	}
	applyScope(&repoFilter, policy.ScopeFor(actor))

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PageSize
	if perPage <= 0 {
		perPage = 15
	}
	repoFilter.Limit = perPage
	repoFilter.Offset = (page - 1) * perPage

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketPage{Tickets: tickets, Total: total, Page: page, PerPage: perPage}, nil
}

// GetTicket fetches a single ticket with its comment thread, enforcing
// the view policy. A ticket the actor may not see yields forbidden, not
// not-found.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !policy.CanView(actor, ticket) {
		return nil, nil, apperrors.NewForbidden("unauthorized access to this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// UpdateTicket applies a partial update. Content fields (title,
// description, category, priority) are requester-exclusive and frozen
// once the ticket is picked up; status and assignee belong to staff and
// admins. Notifications fire after the row update and never roll it back.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	wantsContent := input.Title != nil || input.Description != nil || input.CategoryID != nil || input.Priority != nil
	wantsStatus := input.Status != nil
	wantsAssignee := input.SetAssignee

	if wantsContent && !policy.CanEditContent(actor, ticket) {
		return nil, apperrors.NewForbidden("content fields can only be edited by the requester while the ticket is open and unassigned")
	}
	if wantsStatus && !policy.CanChangeStatus(actor) {
		return nil, apperrors.NewForbidden("only staff or admins may change ticket status")
	}
	if wantsAssignee && !policy.CanAssign(actor, ticket) {
		return nil, apperrors.NewForbidden("reassignment requires admin rights")
	}

	if err := s.validateUpdate(ctx, input); err != nil {
		return nil, err
	}

	var newAssignee *domain.User
	if wantsAssignee && input.AssigneeID != nil {
		newAssignee, err = s.users.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("invalid ticket payload", map[string]any{"assignee_id": "unknown user"})
			}
			return nil, apperrors.MapError(err)
		}
		if !policy.CanBeAssignee(newAssignee) {
			return nil, apperrors.NewValidationError("invalid ticket payload", map[string]any{"assignee_id": "assignee must be staff or admin"})
		}
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssigneeID

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil {
		ticket.CategoryID = *input.CategoryID
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if wantsStatus {
		ticket.Status = *input.Status
	}
	if wantsAssignee {
		ticket.AssigneeID = input.AssigneeID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if wantsStatus && oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type:         events.EventTicketStatusChanged,
			TicketID:     ticket.ID,
			TicketTitle:  ticket.Title,
			TicketStatus: ticket.Status,
			Actor:        events.Actor{ID: actor.ID, Name: actor.Name},
			RecipientIDs: []string{ticket.RequesterID},
		})
	}
	if wantsAssignee && ticket.AssigneeID != nil && !sameAssignee(oldAssignee, ticket.AssigneeID) {
		s.publish(ctx, events.Event{
			Type:         events.EventTicketAssigned,
			TicketID:     ticket.ID,
			TicketTitle:  ticket.Title,
			TicketStatus: ticket.Status,
			Actor:        events.Actor{ID: actor.ID, Name: actor.Name},
			RecipientIDs: []string{*ticket.AssigneeID},
		})
	}

	// Re-read for up-to-date joined names after assignment changes.
	updated, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return ticket, nil
	}
	return updated, nil
}

// DeleteTicket removes a ticket; admins and the requester only.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if !policy.CanDelete(actor, ticket) {
		return apperrors.NewForbidden("unauthorized to delete this ticket")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListCategories exposes categories for ticket forms.
func (s *TicketService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

func (s *TicketService) validateUpdate(ctx context.Context, input TicketUpdateInput) error {
	details := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			details["title"] = "must not be empty"
		} else if len(title) > maxTitleLength {
			details["title"] = "must be at most 255 characters"
		}
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		details["description"] = "must not be empty"
	}
	if input.Priority != nil && !input.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high"
	}
	if input.Status != nil && !input.Status.Valid() {
		details["status"] = "must be one of open, in_progress, closed"
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				details["category_id"] = "unknown category"
			} else {
				return apperrors.MapError(err)
			}
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket payload", details)
	}
	return nil
}

func (s *TicketService) notifyAdminsCreated(ctx context.Context, actor *domain.User, ticket *domain.Ticket) {
	admins, err := s.users.ListByRoles(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Warn("listing admins for ticket_created failed", zap.Error(err))
		return
	}
	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}
	if len(recipients) == 0 {
		return
	}
	s.publish(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID,
		TicketTitle:  ticket.Title,
		TicketStatus: ticket.Status,
		Actor:        events.Actor{ID: actor.ID, Name: actor.Name},
		RecipientIDs: recipients,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func applyScope(filter *repository.TicketFilter, scope policy.ListScope) {
	if scope.All {
		return
	}
	if scope.AssigneeID != "" {
		userID := scope.AssigneeID
		filter.ScopeUserID = &userID
		return
	}
	requesterID := scope.RequesterID
	filter.RequesterID = &requesterID
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
