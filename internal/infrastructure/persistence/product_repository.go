package persistence

import (
	"context"
	"errors"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.LockingProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate reads a product with SELECT ... FOR UPDATE so that concurrent
// checkouts touching the same row serialize until the surrounding transaction ends.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists products ordered by a whitelisted column, newest first by default
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.ProductModel
	orderBy := ValidateSortField(filter.SortBy, ProductSortFields, "created_at") + " " + ValidateSortOrder(filter.SortOrder)
	if err := query.Order(orderBy + ", id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// UpdateStock writes the stock counter of a product
func (r *GormProductRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"stock": stock, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Create inserts a product and assigns its ID
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

// Ensure GormProductRepository implements the catalog repository interfaces
var (
	_ catalog.ProductRepository        = (*GormProductRepository)(nil)
	_ catalog.LockingProductRepository = (*GormProductRepository)(nil)
)
