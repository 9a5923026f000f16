package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// Listing limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListProductsQuery narrows the public product listing
type ListProductsQuery struct {
	Category string
	InStock  bool
	Limit    int
	Offset   int
	Sort     string
	Order    string
}

func (q ListProductsQuery) filter() catalog.ProductFilter {
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return catalog.ProductFilter{
		Category:  strings.ToLower(strings.TrimSpace(q.Category)),
		InStock:   q.InStock,
		Limit:     limit,
		Offset:    offset,
		SortBy:    q.Sort,
		SortOrder: q.Order,
	}
}

// ProductService serves the catalog read side and manual stock adjustments
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{productRepo: productRepo, logger: logger}
}

// SetEventPublisher sets the publisher notified of stock adjustments
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns products, newest first
func (s *ProductService) List(ctx context.Context, q ListProductsQuery) ([]catalog.Product, error) {
	return s.productRepo.FindAll(ctx, q.filter())
}

// Get returns a single product
func (s *ProductService) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("product")
		}
		return nil, err
	}
	return p, nil
}

// SetStock overwrites a product's stock counter. The write takes no row lock,
// so a checkout committing at the same moment may be overwritten.
func (s *ProductService) SetStock(ctx context.Context, id int64, stock int) (*catalog.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := p.Stock
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateStock(ctx, p.ID, p.Stock); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("product")
		}
		return nil, fmt.Errorf("update stock of product %d: %w", id, err)
	}

	s.logger.Info("product stock adjusted",
		zap.Int64("product_id", p.ID),
		zap.Int("previous", previous),
		zap.Int("stock", p.Stock),
	)
	if s.eventPublisher != nil {
		s.eventPublisher.PublishAsync(ctx, catalog.NewProductStockAdjustedEvent(p, previous))
	}
	return p, nil
}
