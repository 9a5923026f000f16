package models

import (
	"time"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Category    string          `gorm:"type:varchar(50);index"`
	Material    string          `gorm:"type:varchar(100)"`
	Color       string          `gorm:"type:varchar(50)"`
	Image       string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Category:    m.Category,
		Material:    m.Material,
		Color:       m.Color,
		Image:       m.Image,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Material:    p.Material,
		Color:       p.Color,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
