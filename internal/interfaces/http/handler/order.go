package handler

import (
	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves checkout and the order status endpoints
type OrderHandler struct {
	BaseHandler
	orderService *apporder.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apporder.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create godoc
// @ID           createOrder
// @Summary      Place an order
// @Description  Checks and decrements stock under row locks and persists the order in one transaction.
// @Description  The total is computed server-side from the submitted items.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "Checkout request"
// @Success      201 {object} APIResponse[dto.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.Create(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToOrderResponse(o))
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Every order, newest first
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]dto.OrderResponse]
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.FindAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, dto.ToOrderResponses(orders))
}

// ListByUser godoc
// @ID           listUserOrders
// @Summary      List a user's orders
// @Tags         orders
// @Produce      json
// @Param        userId path int true "User ID"
// @Success      200 {object} APIResponse[[]dto.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/user/{userId} [get]
func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := h.pathID(c, "userId")
	if !ok {
		return
	}
	orders, err := h.orderService.FindByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	List(c, dto.ToOrderResponses(orders))
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[dto.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.FindOne(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Set the fulfillment status
// @Description  Any status may follow any other; no transition table is enforced.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body dto.UpdateStatusRequest true "New status"
// @Success      200 {object} APIResponse[dto.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, order.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// UpdatePaymentStatus godoc
// @ID           updateOrderPaymentStatus
// @Summary      Set the payment status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body dto.UpdatePaymentStatusRequest true "New payment status"
// @Success      200 {object} APIResponse[dto.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/payment-status [patch]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, order.PaymentStatus(req.PaymentStatus))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}
