package persistence

import (
	"context"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
	"gorm.io/gorm"
)

// GormTransactionScope implements the checkout TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories sharing one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.LockingProductRepository {
	return NewGormProductRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apporder.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
