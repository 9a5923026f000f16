package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// Invoice is the archived record of a dispatched order
type Invoice struct {
	OrderID         int64         `json:"orderId"`
	Courier         string        `json:"courier"`
	ConsignmentID   string        `json:"consignmentId"`
	TrackingCode    string        `json:"trackingCode"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	ShippingAddress string        `json:"shippingAddress"`
	PaymentMethod   string        `json:"paymentMethod"`
	Lines           []InvoiceLine `json:"lines"`
	Total           json.Number   `json:"total"`
	CashToCollect   json.Number   `json:"cashToCollect"`
	OrderedAt       time.Time     `json:"orderedAt"`
	IssuedAt        time.Time     `json:"issuedAt"`
}

// InvoiceLine is one item of an Invoice
type InvoiceLine struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	Subtotal  json.Number `json:"subtotal"`
}

// InvoiceKey is the archive key of an order's invoice
func InvoiceKey(o *order.Order) string {
	return fmt.Sprintf("invoices/%d/%s.json", o.ID, o.CourierConsignmentID)
}

// NewInvoice builds the invoice of a dispatched order
func NewInvoice(o *order.Order, issuedAt time.Time) Invoice {
	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, InvoiceLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: json.Number(item.Price.StringFixed(2)),
			Subtotal:  json.Number(item.Subtotal().StringFixed(2)),
		})
	}

	cod := "0.00"
	if o.PaymentMethod.IsCashOnDelivery() {
		cod = o.TotalAmount.StringFixed(2)
	}

	return Invoice{
		OrderID:         o.ID,
		Courier:         o.Courier,
		ConsignmentID:   o.CourierConsignmentID,
		TrackingCode:    o.TrackingCode,
		CustomerName:    o.Customer.Name,
		CustomerPhone:   o.Customer.Phone,
		ShippingAddress: o.Customer.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Lines:           lines,
		Total:           json.Number(o.TotalAmount.StringFixed(2)),
		CashToCollect:   json.Number(cod),
		OrderedAt:       o.CreatedAt.UTC(),
		IssuedAt:        issuedAt.UTC(),
	}
}

// InvoiceArchiveHandler stores an invoice for every confirmed order
type InvoiceArchiveHandler struct {
	archive InvoiceArchive
	logger  *zap.Logger
}

// NewInvoiceArchiveHandler creates a new InvoiceArchiveHandler
func NewInvoiceArchiveHandler(archive InvoiceArchive, logger *zap.Logger) *InvoiceArchiveHandler {
	return &InvoiceArchiveHandler{archive: archive, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceArchiveHandler) EventTypes() []string {
	return []string{order.EventTypeOrderConfirmed}
}

// Handle archives the invoice of the confirmed order
func (h *InvoiceArchiveHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	confirmed, ok := event.(*order.OrderConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderConfirmed, event.EventType())
	}

	body, err := json.MarshalIndent(NewInvoice(&confirmed.Order, confirmed.OccurredAt()), "", "  ")
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}

	key := InvoiceKey(&confirmed.Order)
	if err := h.archive.PutInvoice(ctx, key, body); err != nil {
		return fmt.Errorf("archive invoice %s: %w", key, err)
	}
	h.logger.Info("invoice archived",
		zap.Int64("order_id", confirmed.Order.ID),
		zap.String("key", key),
	)
	return nil
}
