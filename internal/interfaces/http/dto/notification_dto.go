package dto

import (
	"time"

	"github.com/boutique/storefront/internal/domain/notification"
)

// ListNotificationsRequest filters the admin inbox
type ListNotificationsRequest struct {
	Unread bool `form:"unread"`
}

// NotificationResponse is an admin inbox entry
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   *int64    `json:"orderId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a list of domain notifications
func ToNotificationResponses(list []notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(list))
	for i := range list {
		out[i] = ToNotificationResponse(&list[i])
	}
	return out
}
