package catalog

import "github.com/boutique/storefront/internal/domain/shared"

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductStockAdjusted = "product.stock_adjusted"
)

// ProductStockAdjustedEvent is raised when an admin overwrites a stock counter
type ProductStockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	PreviousStock int    `json:"previous_stock"`
	Stock         int    `json:"stock"`
}

// NewProductStockAdjustedEvent creates a new ProductStockAdjustedEvent
func NewProductStockAdjustedEvent(p *Product, previous int) *ProductStockAdjustedEvent {
	return &ProductStockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockAdjusted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		PreviousStock:   previous,
		Stock:           p.Stock,
	}
}

// SoldOut reports whether the adjustment emptied the product
func (e *ProductStockAdjustedEvent) SoldOut() bool {
	return e.PreviousStock > 0 && e.Stock == 0
}
