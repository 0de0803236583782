package domain

import "time"

// NotificationType enumerates inbox event kinds.
type NotificationType string

const (
	NotificationTicketCreated       NotificationType = "ticket_created"
	NotificationTicketAssigned      NotificationType = "ticket_assigned"
	NotificationTicketStatusChanged NotificationType = "ticket_status_changed"
	NotificationTicketCommentAdded  NotificationType = "ticket_comment_added"
	NotificationTicketUpdated       NotificationType = "ticket_updated"
)

// NotificationData is the typed payload persisted with each inbox row.
type NotificationData struct {
	Type         NotificationType `json:"type"`
	TicketID     string           `json:"ticket_id"`
	TicketTitle  string           `json:"ticket_title"`
	TicketStatus TicketStatus     `json:"ticket_status"`
	ActorName    *string          `json:"actor_name,omitempty"`
	Message      string           `json:"message"`
	URL          string           `json:"url"`
}

// Notification is one durable inbox record addressed to a single user.
// ReadAt is nil while unread. Duplicate deliveries are allowed; the
// dispatcher makes no idempotency guarantee.
type Notification struct {
	ID        string
	UserID    string
	Data      NotificationData
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Unread reports whether the notification has not been read yet.
func (n *Notification) Unread() bool {
	return n != nil && n.ReadAt == nil
}
