package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationService subscribes to ticket events and materializes one
// durable inbox record per (event, recipient). It also serves the inbox
// read/mutate operations polled by clients.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	cache         *redis.Client
	logger        *zap.Logger
	cfg           config.NotifyConfig
}

// NewNotificationService creates the service. cache may be nil; unread
// counts then always come from the database.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, cache *redis.Client, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		cache:         cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to all ticket event types.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	data := domain.NotificationData{
		Type:         domain.NotificationType(event.Type),
		TicketID:     event.TicketID,
		TicketTitle:  event.TicketTitle,
		TicketStatus: event.TicketStatus,
		Message:      event.Message,
		URL:          "/tickets/" + event.TicketID,
	}
	if event.Actor.Name != "" {
		name := event.Actor.Name
		data.ActorName = &name
	}
	if data.Message == "" {
		data.Message = defaultMessage(data.Type, event.TicketID, event.TicketStatus)
	}

	for _, recipientID := range event.RecipientIDs {
		if recipientID == "" {
			continue
		}
		record := &domain.Notification{
			ID:     uuid.NewString(),
			UserID: recipientID,
			Data:   data,
		}
		if err := n.notifications.Create(ctx, record); err != nil {
			// A recipient that no longer exists is skipped, not fatal.
			n.logger.Warn("notification delivery skipped",
				zap.String("recipient_id", recipientID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
			continue
		}
		n.invalidateUnreadCount(ctx, recipientID)
	}
	return nil
}

func defaultMessage(kind domain.NotificationType, ticketID string, status domain.TicketStatus) string {
	switch kind {
	case domain.NotificationTicketCreated:
		return fmt.Sprintf("New ticket #%s has been created", ticketID)
	case domain.NotificationTicketAssigned:
		return fmt.Sprintf("Ticket #%s has been assigned to you", ticketID)
	case domain.NotificationTicketStatusChanged:
		return fmt.Sprintf("Ticket #%s status changed to %s", ticketID, status)
	case domain.NotificationTicketCommentAdded:
		return fmt.Sprintf("New comment on ticket #%s", ticketID)
	case domain.NotificationTicketUpdated:
		return fmt.Sprintf("Ticket #%s has been updated", ticketID)
	default:
		return fmt.Sprintf("Update on ticket #%s", ticketID)
	}
}

// UnreadSummary bundles the poll endpoint response.
type UnreadSummary struct {
	UnreadCount int64
	Recent      []domain.Notification
}

// List returns a page of the user's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, user *domain.User, page, pageSize int) ([]domain.Notification, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	items, err := n.notifications.ListByUser(ctx, user.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Unread returns the unread count plus a small most-recent-first slice.
// The count is served from redis when fresh; clients poll this on a
// fixed interval so the cache TTL matches that interval.
func (n *NotificationService) Unread(ctx context.Context, user *domain.User) (*UnreadSummary, error) {
	recent, err := n.notifications.ListUnread(ctx, user.ID, n.recentLimit())
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	count, ok := n.cachedUnreadCount(ctx, user.ID)
	if !ok {
		count, err = n.notifications.CountUnread(ctx, user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		n.storeUnreadCount(ctx, user.ID, count)
	}
	return &UnreadSummary{UnreadCount: count, Recent: recent}, nil
}

// MarkRead marks one notification read and returns its target URL so the
// caller can redirect. Fails when the record does not belong to the user.
func (n *NotificationService) MarkRead(ctx context.Context, user *domain.User, notificationID string) (string, error) {
	notification, err := n.notifications.GetForUser(ctx, user.ID, notificationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return "", apperrors.MapError(err)
	}
	if err := n.notifications.MarkRead(ctx, user.ID, notificationID); err != nil {
		return "", apperrors.MapError(err)
	}
	n.invalidateUnreadCount(ctx, user.ID)
	return notification.Data.URL, nil
}

// MarkAllRead marks every unread notification read. Calling it with an
// empty inbox is a no-op, not an error.
func (n *NotificationService) MarkAllRead(ctx context.Context, user *domain.User) error {
	if err := n.notifications.MarkAllRead(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	n.invalidateUnreadCount(ctx, user.ID)
	return nil
}

// Delete removes a notification owned by the user.
func (n *NotificationService) Delete(ctx context.Context, user *domain.User, notificationID string) error {
	if err := n.notifications.Delete(ctx, user.ID, notificationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	n.invalidateUnreadCount(ctx, user.ID)
	return nil
}

func (n *NotificationService) recentLimit() int {
	if n.cfg.RecentLimit > 0 {
		return n.cfg.RecentLimit
	}
	return 5
}

func unreadCountKey(userID string) string {
	return "notifications:unread:" + userID
}

func (n *NotificationService) cachedUnreadCount(ctx context.Context, userID string) (int64, bool) {
	if n.cache == nil {
		return 0, false
	}
	val, err := n.cache.Get(ctx, unreadCountKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (n *NotificationService) storeUnreadCount(ctx context.Context, userID string, count int64) {
	if n.cache == nil {
		return
	}
	ttl := n.cfg.UnreadCacheTTL()
	if err := n.cache.Set(ctx, unreadCountKey(userID), count, ttl).Err(); err != nil {
		n.logger.Debug("unread count cache store failed", zap.Error(err))
	}
}

func (n *NotificationService) invalidateUnreadCount(ctx context.Context, userID string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		n.logger.Debug("unread count cache invalidation failed", zap.Error(err))
	}
}
