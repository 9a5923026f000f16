package catalog

import (
	"time"

	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product categories known to the shipping weight estimator
const (
	CategoryJewelry  = "jewelry"
	CategoryClothing = "clothing"
)

// Product is a sellable catalog entry with an available-quantity counter
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Material    string
	Color       string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock reports whether qty units are available
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}

// DecreaseStock removes qty units, refusing to go below zero
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewInvalidRequest("quantity for %s must be positive", p.Name)
	}
	if !p.HasStock(qty) {
		return shared.NewInvalidRequest("insufficient stock for %s: %d available", p.Name, p.Stock)
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	return nil
}

// SetStock overwrites the counter, as done by a manual admin adjustment
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewInvalidRequest("stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}
