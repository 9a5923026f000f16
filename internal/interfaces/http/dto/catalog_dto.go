package dto

import (
	"encoding/json"
	"time"

	"github.com/boutique/storefront/internal/domain/catalog"
)

// ListProductsRequest holds the product list query parameters
type ListProductsRequest struct {
	Category string `form:"category" binding:"max=50"`
	InStock  bool   `form:"inStock"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	Sort     string `form:"sort" binding:"omitempty,oneof=created_at price name stock"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// UpdateStockRequest overwrites a product's stock counter
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0" example:"25"`
}

// ProductResponse is the public representation of a product
// @Description Product
type ProductResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price" swaggertype:"number"`
	Stock       int         `json:"stock"`
	Category    string      `json:"category"`
	Material    string      `json:"material,omitempty"`
	Color       string      `json:"color,omitempty"`
	Image       string      `json:"image,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       Money(p.Price),
		Stock:       p.Stock,
		Category:    p.Category,
		Material:    p.Material,
		Color:       p.Color,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a list of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
