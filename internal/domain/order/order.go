package order

import (
	"time"

	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the fulfillment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every fulfillment status in happy-path order followed by cancelled.
var AllStatuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further fulfillment happens after s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the payment status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod selects how the customer pays
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBkash          PaymentMethod = "bkash"
	PaymentMethodNagad          PaymentMethod = "nagad"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// IsValid checks if the method is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCashOnDelivery, PaymentMethodBkash, PaymentMethodNagad, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// IsCashOnDelivery reports whether the courier collects the payment.
func (m PaymentMethod) IsCashOnDelivery() bool {
	return m == PaymentMethodCashOnDelivery
}

// RequiresTransactionID reports whether the customer must supply a payment reference.
func (m PaymentMethod) RequiresTransactionID() bool {
	return !m.IsCashOnDelivery()
}

// InitialStatus returns the status a freshly placed order starts in.
func (m PaymentMethod) InitialStatus() Status {
	if m.IsCashOnDelivery() {
		return StatusConfirmed
	}
	return StatusPending
}

// Item is a line item snapshot taken at checkout
type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Subtotal returns Price * Quantity
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer is the contact and delivery snapshot captured at checkout
type Customer struct {
	Name            string `json:"customerName"`
	Email           string `json:"customerEmail"`
	Phone           string `json:"customerPhone"`
	ShippingAddress string `json:"shippingAddress"`
}

// Consignment is the parcel record returned by the courier on dispatch
type Consignment struct {
	Courier       string
	ConsignmentID string
	TrackingCode  string
	TrackingLink  string
	Status        string
}

// Order is the aggregate root of a checkout
type Order struct {
	ID            int64           `json:"id"`
	UserID        *int64          `json:"userId,omitempty"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	TransactionID string          `json:"transactionId,omitempty"`
	Customer
	Note string `json:"note,omitempty"`

	// Courier fields stay empty until a parcel is dispatched
	Courier              string `json:"courier,omitempty"`
	CourierConsignmentID string `json:"courierConsignmentId,omitempty"`
	TrackingCode         string `json:"trackingCode,omitempty"`
	TrackingLink         string `json:"trackingLink,omitempty"`
	CourierStatus        string `json:"courierStatus,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft carries everything needed to place an order
type Draft struct {
	UserID        *int64
	Items         []Item
	Customer      Customer
	PaymentMethod PaymentMethod
	TransactionID string
	Note          string
}

// Validate checks the draft before any stock is touched
func (d Draft) Validate() error {
	if len(d.Items) == 0 {
		return shared.NewInvalidRequest("order must contain at least one item")
	}
	for _, item := range d.Items {
		if item.ProductID <= 0 {
			return shared.NewInvalidRequest("invalid product id %d", item.ProductID)
		}
		if item.Quantity <= 0 {
			return shared.NewInvalidRequest("quantity for %q must be positive", item.Name)
		}
		if item.Price.IsNegative() {
			return shared.NewInvalidRequest("price for %q cannot be negative", item.Name)
		}
	}
	if !d.PaymentMethod.IsValid() {
		return shared.NewInvalidRequest("unsupported payment method %q", d.PaymentMethod)
	}
	if d.PaymentMethod.RequiresTransactionID() && d.TransactionID == "" {
		return shared.NewInvalidRequest("transaction id is required for %s payments", d.PaymentMethod)
	}
	if d.Customer.Name == "" || d.Customer.Phone == "" || d.Customer.ShippingAddress == "" {
		return shared.NewInvalidRequest("customer name, phone and shipping address are required")
	}
	return nil
}

// CalculateTotal sums Price * Quantity over items
func CalculateTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// NewOrder builds an unsaved order from a validated draft.
// The total is always recomputed from the items.
func NewOrder(d Draft) (*Order, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	items := make([]Item, len(d.Items))
	copy(items, d.Items)

	now := time.Now()
	return &Order{
		UserID:        d.UserID,
		Items:         items,
		TotalAmount:   CalculateTotal(items),
		Status:        d.PaymentMethod.InitialStatus(),
		PaymentStatus: PaymentStatusPending,
		PaymentMethod: d.PaymentMethod,
		TransactionID: d.TransactionID,
		Customer:      d.Customer,
		Note:          d.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetStatus replaces the fulfillment status. Any valid status is accepted
// regardless of the current one.
func (o *Order) SetStatus(s Status) error {
	if !s.IsValid() {
		return shared.NewInvalidRequest("invalid order status %q", s)
	}
	o.Status = s
	o.UpdatedAt = time.Now()
	return nil
}

// SetPaymentStatus replaces the payment status. Any valid value is accepted.
func (o *Order) SetPaymentStatus(s PaymentStatus) error {
	if !s.IsValid() {
		return shared.NewInvalidRequest("invalid payment status %q", s)
	}
	o.PaymentStatus = s
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyConsignment records a successful courier dispatch and confirms the order
func (o *Order) ApplyConsignment(c Consignment) {
	o.Courier = c.Courier
	o.CourierConsignmentID = c.ConsignmentID
	o.TrackingCode = c.TrackingCode
	o.TrackingLink = c.TrackingLink
	o.CourierStatus = c.Status
	o.Status = StatusConfirmed
	o.UpdatedAt = time.Now()
}

// HasTracking reports whether the order has been handed to a courier
func (o *Order) HasTracking() bool {
	return o.Courier != "" && o.TrackingCode != ""
}

// Courier statuses that drive the local status
const (
	CourierStatusDelivered = "delivered"
	CourierStatusCancelled = "cancelled"
)

// ApplyCourierStatus stores the raw courier status and maps the two terminal
// courier states onto the order. Every other value only updates CourierStatus.
// It reports whether any field changed.
func (o *Order) ApplyCourierStatus(raw string) bool {
	before := *o
	o.CourierStatus = raw
	switch raw {
	case CourierStatusDelivered:
		o.Status = StatusDelivered
		o.PaymentStatus = PaymentStatusPaid
	case CourierStatusCancelled:
		o.Status = StatusCancelled
	}
	changed := before.CourierStatus != o.CourierStatus ||
		before.Status != o.Status ||
		before.PaymentStatus != o.PaymentStatus
	if changed {
		o.UpdatedAt = time.Now()
	}
	return changed
}

// ItemCount returns the total number of units across all items
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
