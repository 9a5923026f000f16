package order

import "github.com/boutique/storefront/internal/domain/shared"

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "order.placed"
	EventTypeOrderConfirmed     = "order.confirmed"
	EventTypeOrderStatusChanged = "order.status_changed"
)

// OrderPlacedEvent is raised after the checkout transaction commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Order Order `json:"order"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		Order:           *o,
	}
}

// OrderConfirmedEvent is raised once a courier parcel has been created and persisted
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	Order Order `json:"order"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID),
		Order:           *o,
	}
}

// OrderStatusChangedEvent is raised when status, payment status or courier status changes
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID            int64         `json:"order_id"`
	PreviousStatus     Status        `json:"previous_status"`
	Status             Status        `json:"status"`
	PreviousPayment    PaymentStatus `json:"previous_payment_status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	CourierStatus      string        `json:"courier_status,omitempty"`
	TriggeredByCourier bool          `json:"triggered_by_courier"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(before, after *Order, byCourier bool) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, after.ID),
		OrderID:            after.ID,
		PreviousStatus:     before.Status,
		Status:             after.Status,
		PreviousPayment:    before.PaymentStatus,
		PaymentStatus:      after.PaymentStatus,
		CourierStatus:      after.CourierStatus,
		TriggeredByCourier: byCourier,
	}
}
