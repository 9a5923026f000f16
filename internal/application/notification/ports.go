package notification

import (
	"context"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
)

// Message is a plain-text transactional email
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends transactional email. Implementations make a single attempt.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// InvoiceArchive stores rendered invoices of dispatched orders
type InvoiceArchive interface {
	PutInvoice(ctx context.Context, key string, body []byte) error
}

// EventExporter forwards domain events to systems outside the process
type EventExporter interface {
	Export(ctx context.Context, events ...shared.DomainEvent) error
}

// CacheInvalidator drops cached values derived from orders
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// orderEventTypes lists every event raised by the order workflow
var orderEventTypes = []string{
	order.EventTypeOrderPlaced,
	order.EventTypeOrderConfirmed,
	order.EventTypeOrderStatusChanged,
}

// exportedEventTypes adds catalog events to the order events
var exportedEventTypes = append(append([]string{}, orderEventTypes...), catalog.EventTypeProductStockAdjusted)
