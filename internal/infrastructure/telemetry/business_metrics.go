package telemetry

import (
	"context"
	"errors"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of storefront business metrics
const MeterName = "storefront/orders"

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// BusinessMetrics records checkout and courier measurements. It satisfies
// the order service's Metrics port.
type BusinessMetrics struct {
	ordersCreated   *Counter
	orderAmount     *IntHistogram
	courierDispatch *Counter
	courierSync     *Counter
}

// NewBusinessMetrics registers the storefront instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var err error
	bm := &BusinessMetrics{}

	if bm.ordersCreated, err = NewCounter(meter,
		"orders_created_total", "Orders placed through checkout", "{order}"); err != nil {
		return nil, err
	}
	if bm.orderAmount, err = NewIntHistogram(meter,
		"order_amount_cents", "Order totals in minor currency units", "{cent}", OrderAmountBuckets...); err != nil {
		return nil, err
	}
	if bm.courierDispatch, err = NewCounter(meter,
		"courier_dispatch_total", "Parcel creation attempts by outcome", "{parcel}"); err != nil {
		return nil, err
	}
	if bm.courierSync, err = NewCounter(meter,
		"courier_sync_total", "Courier status polls by outcome", "{poll}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderCreated counts the order and records its total in cents
func (m *BusinessMetrics) RecordOrderCreated(ctx context.Context, o *order.Order) {
	if o == nil {
		return
	}
	method := AttrPaymentMethod.String(string(o.PaymentMethod))
	m.ordersCreated.Inc(ctx, method)
	m.orderAmount.Record(ctx, o.TotalAmount.Shift(2).Round(0).IntPart(), method)
}

// RecordCourierDispatch counts one ConfirmOrder attempt
func (m *BusinessMetrics) RecordCourierDispatch(ctx context.Context, result string) {
	m.courierDispatch.Inc(ctx, AttrResult.String(result))
}

// RecordCourierSync counts one SyncStatus poll
func (m *BusinessMetrics) RecordCourierSync(ctx context.Context, result string) {
	m.courierSync.Inc(ctx, AttrResult.String(result))
}

var _ apporder.Metrics = (*BusinessMetrics)(nil)
