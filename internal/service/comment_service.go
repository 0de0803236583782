package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CommentService manages the append-mostly comment thread on tickets.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AddComment appends a comment and notifies the requester, the assignee
// and every distinct prior commenter, always excluding the author.
func (s *CommentService) AddComment(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if ticketID == "" || body == "" {
		return nil, apperrors.NewValidationError("ticket_id and body are required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("unauthorized to comment on this ticket")
	}

	// Recipient set is computed before the insert so the new comment
	// never counts its own author as a prior commenter.
	recipients, err := s.recipientsFor(ctx, actor, ticket)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Body:       body,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(recipients) > 0 && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventTicketCommentAdded,
			TicketID:     ticket.ID,
			TicketTitle:  ticket.Title,
			TicketStatus: ticket.Status,
			Actor:        events.Actor{ID: actor.ID, Name: actor.Name},
			RecipientIDs: recipients,
			Timestamp:    time.Now(),
		})
	}
	return comment, nil
}

// UpdateComment edits a comment body; author only.
func (s *CommentService) UpdateComment(ctx context.Context, actor *domain.User, commentID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanEditComment(actor, comment) {
		return nil, apperrors.NewForbidden("unauthorized to update this comment")
	}
	comment.Body = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// DeleteComment removes a comment; the author or an admin.
func (s *CommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return apperrors.MapError(err)
	}
	if !policy.CanDeleteComment(actor, comment) {
		return apperrors.NewForbidden("unauthorized to delete this comment")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CommentService) recipientsFor(ctx context.Context, actor *domain.User, ticket *domain.Ticket) ([]string, error) {
	seen := map[string]struct{}{actor.ID: {}}
	var recipients []string
	add := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	add(ticket.RequesterID)
	if ticket.AssigneeID != nil {
		add(*ticket.AssigneeID)
	}

	commenters, err := s.comments.DistinctCommenterIDs(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, id := range commenters {
		add(id)
	}
	return recipients, nil
}
