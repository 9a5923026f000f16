package handler

import (
	catalogapp "github.com/boutique/storefront/internal/application/catalog"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category query string false "Category"
// @Param        inStock  query bool   false "Only products with stock"
// @Param        limit    query int    false "Page size (max 200)"
// @Param        offset   query int    false "Offset"
// @Param        sort     query string false "Sort field" Enums(created_at, price, name, stock)
// @Param        order    query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]dto.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if !bindQuery(c, &req) {
		return
	}

	products, err := h.productService.List(c.Request.Context(), catalogapp.ListProductsQuery{
		Category: req.Category,
		InStock:  req.InStock,
		Limit:    req.Limit,
		Offset:   req.Offset,
		Sort:     req.Sort,
		Order:    req.Order,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, dto.ToProductResponses(products))
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} APIResponse[dto.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductResponse(p))
}

// UpdateStock godoc
// @ID           updateProductStock
// @Summary      Overwrite a product's stock
// @Description  Plain update without a row lock; it may race with a concurrent checkout.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Product ID"
// @Param        request body dto.UpdateStockRequest true "New stock"
// @Success      200 {object} APIResponse[dto.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStockRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.productService.SetStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductResponse(p))
}
