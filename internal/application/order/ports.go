package order

import (
	"context"
	"encoding/json"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// TransactionScope runs repository work inside a single database transaction.
type TransactionScope interface {
	// Execute runs fn in a transaction. Any returned error rolls the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current transaction.
type TransactionalRepositories interface {
	// Products supports locked reads of product rows for the stock check
	Products() catalog.LockingProductRepository
	Orders() order.Repository
}

// ParcelResult is the normalized outcome of a parcel creation call.
// Success is false when the courier answered but rejected the parcel.
type ParcelResult struct {
	Success       bool            `json:"success"`
	ConsignmentID string          `json:"parcelId,omitempty"`
	TrackingCode  string          `json:"trackingCode,omitempty"`
	TrackingLink  string          `json:"trackingLink,omitempty"`
	Invoice       string          `json:"invoice,omitempty"`
	CODAmount     decimal.Decimal `json:"cod"`
	Status        string          `json:"status,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// TrackingResult carries the raw courier status of a parcel
type TrackingResult struct {
	Status  string            `json:"status"`
	History []json.RawMessage `json:"history,omitempty"`
}

// BalanceResult is the merchant balance held by the courier
type BalanceResult struct {
	Balance decimal.Decimal `json:"balance"`
}

// CancelResult is the courier answer to a cancellation request
type CancelResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CourierGateway is the client of the external logistics API.
// Transport and HTTP failures are returned as errors; missing credentials
// are reported as a configuration error.
type CourierGateway interface {
	// Name identifies the courier stored on dispatched orders
	Name() string
	// CreateParcel dispatches the order. categories maps product IDs to catalog
	// categories for the weight estimate; unknown products may be absent.
	CreateParcel(ctx context.Context, o *order.Order, categories map[int64]string) (*ParcelResult, error)
	TrackParcel(ctx context.Context, trackingCode string) (*TrackingResult, error)
	CheckBalance(ctx context.Context) (*BalanceResult, error)
	CancelParcel(ctx context.Context, trackingCode string) (*CancelResult, error)
}

// Metrics receives business measurements from the workflow
type Metrics interface {
	RecordOrderCreated(ctx context.Context, o *order.Order)
	RecordCourierDispatch(ctx context.Context, result string)
	RecordCourierSync(ctx context.Context, result string)
}

// Metric result labels
const (
	ResultSuccess   = "success"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
)

type noopMetrics struct{}

func (noopMetrics) RecordOrderCreated(context.Context, *order.Order) {}
func (noopMetrics) RecordCourierDispatch(context.Context, string) {}
func (noopMetrics) RecordCourierSync(context.Context, string) {}
