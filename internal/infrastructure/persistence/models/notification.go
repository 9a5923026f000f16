package models

import (
	"time"

	"github.com/boutique/storefront/internal/domain/notification"
)

// NotificationModel is the persistence model for admin notifications.
type NotificationModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Type      string    `gorm:"type:varchar(30);not null"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	OrderID   *int64    `gorm:"index"`
	Read      bool      `gorm:"column:is_read;not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:        m.ID,
		Type:      notification.Type(m.Type),
		Title:     m.Title,
		Message:   m.Message,
		OrderID:   m.OrderID,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
