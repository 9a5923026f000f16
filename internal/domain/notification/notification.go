package notification

import (
	"context"
	"fmt"
	"time"
)

// Type classifies admin notifications
type Type string

const (
	TypeNewOrder        Type = "new_order"
	TypeCourierDispatch Type = "courier_dispatch"
)

// Notification is an internal message shown to administrators
type Notification struct {
	ID        int64
	Type      Type
	Title     string
	Message   string
	OrderID   *int64
	Read      bool
	CreatedAt time.Time
}

// NewOrderPlaced builds the admin notice for a freshly placed order
func NewOrderPlaced(orderID int64, customerName string) *Notification {
	id := orderID
	return &Notification{
		Type:      TypeNewOrder,
		Title:     "New order",
		Message:   fmt.Sprintf("new order #%d placed by %s", orderID, customerName),
		OrderID:   &id,
		CreatedAt: time.Now(),
	}
}

// NewCourierDispatched builds the admin notice for a parcel handed to the courier
func NewCourierDispatched(orderID int64, courier, trackingCode string) *Notification {
	id := orderID
	return &Notification{
		Type:      TypeCourierDispatch,
		Title:     "Order dispatched",
		Message:   fmt.Sprintf("order #%d dispatched via %s (tracking %s)", orderID, courier, trackingCode),
		OrderID:   &id,
		CreatedAt: time.Now(),
	}
}

// MarkRead flags the notification as seen
func (n *Notification) MarkRead() {
	n.Read = true
}

// Repository defines the interface for notification persistence
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id int64) (*Notification, error)
	// FindRecent lists notifications newest first, optionally only unread ones
	FindRecent(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error)
	Save(ctx context.Context, n *Notification) error
}
