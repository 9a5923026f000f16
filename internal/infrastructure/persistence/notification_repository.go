package persistence

import (
	"context"
	"errors"

	"github.com/boutique/storefront/internal/domain/notification"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const defaultNotificationLimit = 50

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification and assigns its ID
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	model := models.NotificationModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	n.ID = model.ID
	n.CreatedAt = model.CreatedAt
	return nil
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent lists notifications newest first
func (r *GormNotificationRepository) FindRecent(ctx context.Context, unreadOnly bool, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.NotificationModel
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]notification.Notification, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
