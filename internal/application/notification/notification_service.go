package notification

import (
	"context"
	"errors"

	"github.com/boutique/storefront/internal/domain/notification"
	"github.com/boutique/storefront/internal/domain/shared"
)

// DefaultListLimit bounds the notifications returned by List
const DefaultListLimit = 50

// NotificationService serves the admin notification inbox
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the newest notifications, optionally only unread ones
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]notification.Notification, error) {
	return s.repo.FindRecent(ctx, unreadOnly, DefaultListLimit)
}

// MarkRead flags a notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*notification.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("notification")
		}
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.MarkRead()
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
