package handler

import (
	"context"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/application/notification"
	"github.com/boutique/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InvoiceLinker issues time-limited download links for archived invoices
type InvoiceLinker interface {
	InvoiceURL(ctx context.Context, key string) (string, time.Time, error)
}

// AdminOrderHandler serves the courier administration endpoints
type AdminOrderHandler struct {
	BaseHandler
	orderService *apporder.OrderService
	invoices     InvoiceLinker
}

// NewAdminOrderHandler creates a new AdminOrderHandler. invoices may be nil when
// the invoice archive is disabled.
func NewAdminOrderHandler(orderService *apporder.OrderService, invoices InvoiceLinker) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService, invoices: invoices}
}

// Confirm godoc
// @ID           confirmOrder
// @Summary      Dispatch an order to the courier
// @Description  Creates a parcel and stores the consignment on the order. Not idempotent:
// @Description  confirming twice creates two parcels.
// @Tags         admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[dto.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/confirm [post]
func (h *AdminOrderHandler) Confirm(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.ConfirmOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// Sync godoc
// @ID           syncOrder
// @Summary      Pull the parcel status from the courier
// @Description  Courier failures are logged and the current order is returned unchanged.
// @Tags         admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[dto.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/sync [post]
func (h *AdminOrderHandler) Sync(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.SyncStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// Delete godoc
// @ID           deleteOrder
// @Summary      Delete an order
// @Description  Stock is not restored.
// @Tags         admin
// @Param        id path int true "Order ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [delete]
func (h *AdminOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CourierBalance godoc
// @ID           getCourierBalance
// @Summary      Get the courier merchant balance
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[dto.BalanceResponse]
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/courier/balance [get]
func (h *AdminOrderHandler) CourierBalance(c *gin.Context) {
	balance, err := h.orderService.CourierBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BalanceResponse{Balance: dto.Money(balance.Balance)})
}

// CancelParcel godoc
// @ID           cancelCourierParcel
// @Summary      Ask the courier to cancel the order's parcel
// @Description  The order itself is not changed; the cancellation arrives through sync.
// @Tags         admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[apporder.CancelResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/courier/cancel [post]
func (h *AdminOrderHandler) CancelParcel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.orderService.CancelParcel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// InvoiceURL godoc
// @ID           getOrderInvoiceURL
// @Summary      Get a download link for the archived invoice
// @Tags         admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[dto.InvoiceURLResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/invoice [get]
func (h *AdminOrderHandler) InvoiceURL(c *gin.Context) {
	if h.invoices == nil {
		h.Error(c, dto.ErrCodeConfigurationError, "Invoice archive is not configured")
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.FindOne(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if o.CourierConsignmentID == "" {
		h.BadRequest(c, "Order has not been dispatched, no invoice exists")
		return
	}

	url, expiresAt, err := h.invoices.InvoiceURL(c.Request.Context(), notification.InvoiceKey(o))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.InvoiceURLResponse{URL: url, ExpiresAt: expiresAt})
}
