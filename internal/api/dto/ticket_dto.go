package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CategoryID  string                `json:"category_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload; nil fields are untouched. assignee_id may
// be present-and-null to unassign, which is why it is decoded separately.
type UpdateTicketRequest struct {
	CategoryID  *string                `json:"category_id"`
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	AssigneeID  *string                `json:"assignee_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	RequesterID   string                `json:"requester_id"`
	RequesterName string                `json:"requester_name,omitempty"`
	AssigneeID    *string               `json:"assignee_id"`
	AssigneeName  *string               `json:"assignee_name,omitempty"`
	CategoryID    string                `json:"category_id"`
	CategoryName  string                `json:"category_name,omitempty"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// TicketListResponse is a paginated listing.
type TicketListResponse struct {
	Tickets []TicketSummary `json:"tickets"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}
