package notification

import (
	"context"
	"fmt"

	"github.com/boutique/storefront/internal/domain/notification"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// AdminNotificationHandler records admin notices for new and dispatched orders
type AdminNotificationHandler struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewAdminNotificationHandler creates a new AdminNotificationHandler
func NewAdminNotificationHandler(repo notification.Repository, logger *zap.Logger) *AdminNotificationHandler {
	return &AdminNotificationHandler{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AdminNotificationHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderConfirmed}
}

// Handle creates one notification per event
func (h *AdminNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var n *notification.Notification
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		n = notification.NewOrderPlaced(e.Order.ID, e.Order.Customer.Name)
	case *order.OrderConfirmedEvent:
		n = notification.NewCourierDispatched(e.Order.ID, e.Order.Courier, e.Order.TrackingCode)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if err := h.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	h.logger.Debug("admin notification created",
		zap.Int64("order_id", event.AggregateID()),
		zap.String("type", string(n.Type)),
	)
	return nil
}
