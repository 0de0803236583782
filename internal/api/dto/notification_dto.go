package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationResponse is the external inbox record shape.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Data      domain.NotificationData `json:"data"`
	ReadAt    *time.Time              `json:"read_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// UnreadResponse is the poll endpoint payload.
type UnreadResponse struct {
	UnreadCount int64                  `json:"unread_count"`
	Recent      []NotificationResponse `json:"recent"`
}
