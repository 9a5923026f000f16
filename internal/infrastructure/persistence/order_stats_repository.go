package persistence

import (
	"context"
	"time"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderStatsRepository implements order.StatsReader using GORM
type GormOrderStatsRepository struct {
	db *gorm.DB
}

// NewGormOrderStatsRepository creates a new GormOrderStatsRepository
func NewGormOrderStatsRepository(db *gorm.DB) *GormOrderStatsRepository {
	return &GormOrderStatsRepository{db: db}
}

func (r *GormOrderStatsRepository) revenueScope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("status <> ?", string(order.StatusCancelled))
}

// RevenueBetween aggregates non-cancelled orders created in [from, to)
func (r *GormOrderStatsRepository) RevenueBetween(ctx context.Context, from, to time.Time) (order.Aggregate, error) {
	type aggregateResult struct {
		Orders  int64
		Revenue decimal.Decimal
	}

	query := r.revenueScope(ctx).Select("COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue")
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var result aggregateResult
	if err := query.Scan(&result).Error; err != nil {
		return order.Aggregate{}, err
	}
	return order.Aggregate{Orders: result.Orders, Revenue: result.Revenue}, nil
}

// RevenuePointsSince lists non-cancelled order amounts created at or after since
func (r *GormOrderStatsRepository) RevenuePointsSince(ctx context.Context, since time.Time) ([]order.RevenuePoint, error) {
	type pointResult struct {
		CreatedAt   time.Time
		TotalAmount decimal.Decimal
	}

	var rows []pointResult
	if err := r.revenueScope(ctx).
		Select("created_at, total_amount").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]order.RevenuePoint, len(rows))
	for i, row := range rows {
		points[i] = order.RevenuePoint{CreatedAt: row.CreatedAt, Amount: row.TotalAmount}
	}
	return points, nil
}

// CountByStatus counts every order grouped by status
func (r *GormOrderStatsRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	type statusResult struct {
		Status string
		Count  int64
	}

	var rows []statusResult
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int64, len(rows))
	for _, row := range rows {
		counts[order.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// Ensure GormOrderStatsRepository implements order.StatsReader
var _ order.StatsReader = (*GormOrderStatsRepository)(nil)
