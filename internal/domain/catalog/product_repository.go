package catalog

import "context"

// ProductFilter narrows product listings
type ProductFilter struct {
	Category  string
	InStock   bool
	Limit     int
	Offset    int
	SortBy    string // column name, unknown values fall back to newest first
	SortOrder string
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID without locking
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll lists products ordered by filter.SortBy, newest first by default
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// UpdateStock writes the stock counter of a product
	UpdateStock(ctx context.Context, id int64, stock int) error
}

// LockingProductRepository reads products under a row write lock.
// Implementations are only meaningful inside a transaction.
type LockingProductRepository interface {
	ProductRepository

	// FindByIDForUpdate reads a product and holds its row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id int64) (*Product, error)
}
