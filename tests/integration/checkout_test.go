package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/notification"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/event"
	"github.com/boutique/storefront/internal/infrastructure/persistence"
	"github.com/boutique/storefront/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type idleCourier struct{}

func (idleCourier) Name() string { return "steadfast" }

func (idleCourier) CreateParcel(context.Context, *order.Order, map[int64]string) (*apporder.ParcelResult, error) {
	return &apporder.ParcelResult{Success: true, ConsignmentID: "1", TrackingCode: "TRK1", Status: "in_review"}, nil
}

func (idleCourier) TrackParcel(context.Context, string) (*apporder.TrackingResult, error) {
	return &apporder.TrackingResult{Status: "in_review"}, nil
}

func (idleCourier) CheckBalance(context.Context) (*apporder.BalanceResult, error) {
	return &apporder.BalanceResult{}, nil
}

func (idleCourier) CancelParcel(context.Context, string) (*apporder.CancelResult, error) {
	return &apporder.CancelResult{Status: "success"}, nil
}

func newOrderService(t *testing.T, tdb *TestDB, log *zap.Logger) *apporder.OrderService {
	t.Helper()
	return apporder.NewOrderService(
		persistence.NewGormTransactionScope(tdb.DB),
		persistence.NewGormOrderRepository(tdb.DB),
		persistence.NewGormProductRepository(tdb.DB),
		idleCourier{},
		log,
	)
}

func checkout(items ...apporder.CreateOrderItem) apporder.CreateOrderRequest {
	return apporder.CreateOrderRequest{
		Items:           items,
		CustomerName:    "Nusrat Jahan",
		CustomerEmail:   "nusrat@example.com",
		CustomerPhone:   "+8801712345678",
		ShippingAddress: "Road 12, Banani, Dhaka",
		PaymentMethod:   string(order.PaymentMethodCashOnDelivery),
	}
}

func line(productID int64, qty int) apporder.CreateOrderItem {
	return apporder.CreateOrderItem{
		ProductID: productID,
		Name:      "Item",
		Price:     decimal.NewFromInt(100),
		Quantity:  qty,
	}
}

func TestCheckout_ConcurrentBuyersNeverOversell(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newOrderService(t, tdb, zap.NewNop())
	product := tdb.SeedProduct("Limited Saree", "clothing", 5)

	const buyers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	ctx := testutil.ContextWithTimeout(t, time.Minute)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, checkout(line(product.ID, 1)))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, shared.ErrInvalidRequest):
				rejected.Add(1)
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, succeeded.Load())
	assert.EqualValues(t, buyers-5, rejected.Load())
	assert.Equal(t, 0, tdb.Stock(product.ID))
	assert.EqualValues(t, 5, tdb.Count("orders"))
}

func TestCheckout_OpposingLockOrderDoesNotDeadlock(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newOrderService(t, tdb, zap.NewNop())
	a := tdb.SeedProduct("Bangle", "jewelry", 50)
	b := tdb.SeedProduct("Earrings", "jewelry", 50)

	ctx := testutil.ContextWithTimeout(t, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, checkout(line(a.ID, 1), line(b.ID, 1)))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, checkout(line(b.ID, 1), line(a.ID, 1)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, tdb.Stock(a.ID))
	assert.Equal(t, 30, tdb.Stock(b.ID))
}

func TestCheckout_FailureRollsBackEveryLine(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newOrderService(t, tdb, zaptest.NewLogger(t))
	plenty := tdb.SeedProduct("Scarf", "accessories", 10)
	scarce := tdb.SeedProduct("Clutch", "bags", 1)

	t.Run("insufficient stock on a later line", func(t *testing.T) {
		_, err := svc.Create(context.Background(), checkout(line(plenty.ID, 3), line(scarce.ID, 2)))

		require.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.Equal(t, 10, tdb.Stock(plenty.ID))
		assert.Equal(t, 1, tdb.Stock(scarce.ID))
		assert.Zero(t, tdb.Count("orders"))
		assert.Zero(t, tdb.Count("order_items"))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Create(context.Background(), checkout(line(plenty.ID, 1), line(9999, 1)))

		require.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.Contains(t, err.Error(), "product not found")
		assert.Equal(t, 10, tdb.Stock(plenty.ID))
	})
}

func TestCheckout_PublishesAfterCommit(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newOrderService(t, tdb, zap.NewNop())
	product := tdb.SeedProduct("Anklet", "jewelry", 2)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	recorder := testutil.NewRecordingHandler(order.EventTypeOrderPlaced)
	bus.Subscribe(recorder, recorder.EventTypes()...)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	svc.SetEventPublisher(bus)

	o, err := svc.Create(context.Background(), checkout(line(product.ID, 1)))
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool { return recorder.Count(order.EventTypeOrderPlaced) == 1 }, 5*time.Second)
	assert.Equal(t, o.ID, recorder.Handled()[0].AggregateID())

	_, err = svc.Create(context.Background(), checkout(line(product.ID, 5)))
	require.Error(t, err)
	testutil.AssertNever(t, func() bool { return recorder.Count(order.EventTypeOrderPlaced) > 1 }, 200*time.Millisecond)
}

func TestSchema_Constraints(t *testing.T) {
	tdb := NewTestDB(t)
	svc := newOrderService(t, tdb, zap.NewNop())
	product := tdb.SeedProduct("Ring", "jewelry", 3)

	t.Run("stock cannot go negative", func(t *testing.T) {
		err := tdb.DB.Exec("UPDATE products SET stock = -1 WHERE id = ?", product.ID).Error
		assert.ErrorContains(t, err, "products_stock_non_negative")
	})

	t.Run("deleting an order cascades to items and keeps notifications", func(t *testing.T) {
		o, err := svc.Create(context.Background(), checkout(line(product.ID, 1)))
		require.NoError(t, err)
		orderID := o.ID
		n := &notification.Notification{Type: notification.TypeNewOrder, Message: "new order", OrderID: &orderID}
		require.NoError(t, persistence.NewGormNotificationRepository(tdb.DB).Create(context.Background(), n))

		require.NoError(t, svc.Delete(context.Background(), o.ID))

		assert.Zero(t, tdb.Count("order_items"))
		stored, err := persistence.NewGormNotificationRepository(tdb.DB).FindByID(context.Background(), n.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.OrderID)
		// stock is not restored on delete
		assert.Equal(t, 2, tdb.Stock(product.ID))
	})
}
