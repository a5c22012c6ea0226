package service

import (
	"context"
	"encoding/json"
	"time"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"go.uber.org/zap"
)

// Realtime pushes an event to every live connection of a user.
type Realtime interface {
	SendToUser(userID uint, eventType string, payload interface{})
}

const (
	NotificationQueueName  = "notification_queue"
	NotificationExchange   = "notification_exchange"
	NotificationRoutingKey = "notification"

	EventNotification = "notification"
	EventNewMessage   = "new_message"
)

// NotificationMessage is the broker payload for a persisted notification.
type NotificationMessage struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	SenderID  *uint     `json:"sender_id,omitempty"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TargetID  *uint     `json:"target_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the subset of the RabbitMQ client the service needs.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

type NotificationService interface {
	Notify(ctx context.Context, n *model.Notification)
	List(ctx context.Context, userID uint, page util.Page) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	SetRealtime(rt Realtime)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	publisher Publisher
	realtime  Realtime
}

// NewNotificationService accepts a nil publisher, in which case events are
// pushed straight to the realtime hub.
func NewNotificationService(notifRepo repository.NotificationRepository, publisher Publisher) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		publisher: publisher,
	}
}

func (s *notificationService) SetRealtime(rt Realtime) {
	s.realtime = rt
}

// Notify persists n and fans it out. Failures are logged and swallowed.
func (s *notificationService) Notify(ctx context.Context, n *model.Notification) {
	if n == nil || (n.SenderID != nil && *n.SenderID == n.UserID) {
		return
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		logger.Warn("failed to persist notification",
			zap.Uint("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
		return
	}

	msg := NotificationMessage{
		ID:        n.ID,
		UserID:    n.UserID,
		SenderID:  n.SenderID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TargetID:  n.TargetID,
		Timestamp: n.CreatedAt,
	}

	if s.publisher != nil {
		body, err := json.Marshal(msg)
		if err == nil {
			err = s.publisher.Publish(ctx, NotificationExchange, NotificationRoutingKey, body)
		}
		if err == nil {
			return
		}
		logger.Warn("failed to publish notification, pushing directly", zap.Error(err))
	}

	if s.realtime != nil {
		s.realtime.SendToUser(n.UserID, EventNotification, msg)
	}
}

func (s *notificationService) List(ctx context.Context, userID uint, page util.Page) ([]model.Notification, error) {
	list, err := s.notifRepo.FindByUserID(ctx, userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return list, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, model.NewInternalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	if err := s.notifRepo.MarkAsRead(ctx, id, userID); err != nil {
		return lookupErr(err, "Notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	if err := s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
		return model.NewInternalError(err)
	}
	return nil
}

func uintPtr(v uint) *uint {
	return &v
}

// notify is a nil-safe Notify.
func notify(ctx context.Context, notifier NotificationService, n *model.Notification) {
	if notifier != nil {
		notifier.Notify(ctx, n)
	}
}

// displayName looks up a username for notification text.
func displayName(ctx context.Context, users repository.UserRepository, id uint) string {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		return "Someone"
	}
	return user.Username
}
