package domain

import "time"

// Comment is a threaded message on a ticket, ordered by creation time.
// Edits are restricted to the author, deletion to the author or an admin.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorName string
	AuthorRole Role
}
