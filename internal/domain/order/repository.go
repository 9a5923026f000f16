package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Field names a group of order columns a caller owns when writing back
type Field int

const (
	// FieldStatus is the order status
	FieldStatus Field = iota + 1
	// FieldPaymentStatus is the payment status
	FieldPaymentStatus
	// FieldCourierStatus is the raw status last reported by the courier
	FieldCourierStatus
	// FieldConsignment covers the courier name, consignment ID, tracking code and link
	FieldConsignment
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID, returning shared.ErrNotFound when missing
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll returns every order, newest first
	FindAll(ctx context.Context) ([]Order, error)

	// FindByUser returns the orders placed by a user, newest first
	FindByUser(ctx context.Context, userID int64) ([]Order, error)

	// FindAwaitingCourierSync returns dispatched orders whose status is not terminal, oldest first
	FindAwaitingCourierSync(ctx context.Context, limit int) ([]Order, error)

	// Create inserts a new order and assigns its ID
	Create(ctx context.Context, o *Order) error

	// Update writes only the named fields of o back to its row. It returns
	// shared.ErrNotFound when the row no longer exists and never inserts.
	Update(ctx context.Context, o *Order, fields ...Field) error

	// Delete removes an order row
	Delete(ctx context.Context, id int64) error
}

// Aggregate is an order count with its summed revenue
type Aggregate struct {
	Orders  int64
	Revenue decimal.Decimal
}

// RevenuePoint is a single non-cancelled order's amount at its creation time
type RevenuePoint struct {
	CreatedAt time.Time
	Amount    decimal.Decimal
}

// StatsReader serves the read-only aggregation queries behind the dashboard.
// Cancelled orders never contribute revenue.
type StatsReader interface {
	// RevenueBetween aggregates non-cancelled orders created in [from, to).
	// A zero from or to leaves that side unbounded.
	RevenueBetween(ctx context.Context, from, to time.Time) (Aggregate, error)

	// RevenuePointsSince lists non-cancelled orders created at or after since
	RevenuePointsSince(ctx context.Context, since time.Time) ([]RevenuePoint, error)

	// CountByStatus counts all orders grouped by status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
