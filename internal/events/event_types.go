package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers. They map 1:1 onto
// notification types in the subscriber.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// Actor identifies who caused the event.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is a ticket mutation fanned out to a recipient set. The ticket
// fields are snapshotted at publish time so subscribers never re-read
// the row.
type Event struct {
	ID           string              `json:"id"`
	Type         EventType           `json:"type"`
	TicketID     string              `json:"ticket_id"`
	TicketTitle  string              `json:"ticket_title"`
	TicketStatus domain.TicketStatus `json:"ticket_status"`
	Actor        Actor               `json:"actor"`
	RecipientIDs []string            `json:"recipient_ids"`
	// Message overrides the per-type default template when non-empty.
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
