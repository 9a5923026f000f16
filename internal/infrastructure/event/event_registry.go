package event

import (
	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
)

// RegisterOrderEvents registers the order event types with the serializer
func RegisterOrderEvents(serializer *EventSerializer) {
	serializer.Register(order.EventTypeOrderPlaced, &order.OrderPlacedEvent{})
	serializer.Register(order.EventTypeOrderConfirmed, &order.OrderConfirmedEvent{})
	serializer.Register(order.EventTypeOrderStatusChanged, &order.OrderStatusChangedEvent{})
}

// RegisterCatalogEvents registers the catalog event types with the serializer
func RegisterCatalogEvents(serializer *EventSerializer) {
	serializer.Register(catalog.EventTypeProductStockAdjusted, &catalog.ProductStockAdjustedEvent{})
}
