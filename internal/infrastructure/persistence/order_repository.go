package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds an order with its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every order, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.withItems(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindByUser returns the orders of a user, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindAwaitingCourierSync returns dispatched, non-terminal orders, oldest first
func (r *GormOrderRepository) FindAwaitingCourierSync(ctx context.Context, limit int) ([]order.Order, error) {
	query := r.withItems(ctx).
		Where("courier IS NOT NULL AND courier <> ''").
		Where("tracking_code IS NOT NULL AND tracking_code <> ''").
		Where("status NOT IN ?", []string{string(order.StatusDelivered), string(order.StatusCancelled)}).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// Create inserts the order together with its item snapshot and assigns the ID
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes the named fields of o to its row. Columns owned by other
// writers are left untouched, and line items are never rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order, fields ...order.Field) error {
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(models.OrderUpdateColumns(o, fields...))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order and its line items
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func toDomainOrders(rows []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
