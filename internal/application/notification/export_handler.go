package notification

import (
	"context"

	"github.com/boutique/storefront/internal/domain/shared"
)

// EventExportHandler forwards order and stock events to an EventExporter
type EventExportHandler struct {
	exporter EventExporter
}

// NewEventExportHandler creates a new EventExportHandler
func NewEventExportHandler(exporter EventExporter) *EventExportHandler {
	return &EventExportHandler{exporter: exporter}
}

// EventTypes returns the event types this handler is interested in
func (h *EventExportHandler) EventTypes() []string {
	return exportedEventTypes
}

// Handle exports the event
func (h *EventExportHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.exporter.Export(ctx, event)
}

// CacheInvalidationHandler drops cached dashboard figures whenever an order changes
type CacheInvalidationHandler struct {
	cache CacheInvalidator
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(cache CacheInvalidator) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return orderEventTypes
}

// Handle invalidates the cache
func (h *CacheInvalidationHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	return h.cache.Invalidate(ctx)
}
