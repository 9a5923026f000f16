package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/notification"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.NotificationModel{},
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, category string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:     name,
		Price:    decimal.NewFromInt(1500),
		Stock:    stock,
		Category: category,
	}
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

func newTestOrder(t *testing.T, createdAt time.Time, items ...order.Item) *order.Order {
	t.Helper()
	if len(items) == 0 {
		items = []order.Item{{ProductID: 1, Name: "Ring", Price: decimal.NewFromInt(100), Quantity: 1}}
	}
	o, err := order.NewOrder(order.Draft{
		Items: items,
		Customer: order.Customer{
			Name:            "Ayesha Rahman",
			Email:           "ayesha@example.com",
			Phone:           "01712345678",
			ShippingAddress: "Dhanmondi, Dhaka",
		},
		PaymentMethod: order.PaymentMethodCashOnDelivery,
	})
	require.NoError(t, err)
	o.CreatedAt = createdAt
	o.UpdatedAt = createdAt
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		order.Item{ProductID: 3, Name: "Anklet", Price: decimal.NewFromInt(50), Quantity: 1},
		order.Item{ProductID: 1, Name: "Ring", Price: decimal.NewFromInt(100), Quantity: 2},
	)
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(found.TotalAmount))
	assert.Equal(t, order.StatusConfirmed, found.Status)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Anklet", found.Items[0].Name)
	assert.Equal(t, "Ring", found.Items[1].Name)
	assert.Equal(t, 2, found.Items[1].Quantity)
	assert.Empty(t, found.TrackingCode)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_Listing(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	userID := int64(12)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		o := newTestOrder(t, base.Add(time.Duration(i)*time.Hour))
		if i != 1 {
			o.UserID = &userID
		}
		require.NoError(t, repo.Create(ctx, o))
		ids = append(ids, o.ID)
	}

	t.Run("FindAll is newest first", func(t *testing.T) {
		orders, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{orders[0].ID, orders[1].ID, orders[2].ID})
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("FindByUser filters by user", func(t *testing.T) {
		orders, err := repo.FindByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, ids[2], orders[0].ID)
		assert.Equal(t, ids[0], orders[1].ID)
	})
}

func TestGormOrderRepository_UpdateAndSyncCandidates(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	dispatched := newTestOrder(t, base)
	delivered := newTestOrder(t, base.Add(time.Hour))
	undispatched := newTestOrder(t, base.Add(2*time.Hour))
	for _, o := range []*order.Order{dispatched, delivered, undispatched} {
		require.NoError(t, repo.Create(ctx, o))
	}

	dispatched.ApplyConsignment(order.Consignment{Courier: "steadfast", ConsignmentID: "42", TrackingCode: "TRK1", Status: "in_review"})
	require.NoError(t, repo.Update(ctx, dispatched, order.FieldConsignment, order.FieldCourierStatus, order.FieldStatus))
	delivered.ApplyConsignment(order.Consignment{Courier: "steadfast", ConsignmentID: "43", TrackingCode: "TRK2", Status: "in_review"})
	delivered.ApplyCourierStatus(order.CourierStatusDelivered)
	require.NoError(t, repo.Update(ctx, delivered,
		order.FieldConsignment, order.FieldCourierStatus, order.FieldStatus, order.FieldPaymentStatus))

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Count(&itemCount).Error)
	assert.Equal(t, int64(3), itemCount, "updating must not duplicate line items")

	reloaded, err := repo.FindByID(ctx, dispatched.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRK1", reloaded.TrackingCode)
	assert.Equal(t, "42", reloaded.CourierConsignmentID)

	candidates, err := repo.FindAwaitingCourierSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, dispatched.ID, candidates[0].ID)
}

func TestGormOrderRepository_UpdateWritesOnlyNamedFields(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, o))

	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	paid, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NoError(t, paid.SetPaymentStatus(order.PaymentStatusPaid))
	require.NoError(t, repo.Update(ctx, paid, order.FieldPaymentStatus))

	stale.ApplyConsignment(order.Consignment{Courier: "steadfast", ConsignmentID: "42", TrackingCode: "TRK1", Status: "in_review"})
	require.NoError(t, repo.Update(ctx, stale, order.FieldConsignment, order.FieldStatus))

	reloaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, reloaded.Status)
	assert.Equal(t, "TRK1", reloaded.TrackingCode)
	assert.Equal(t, "42", reloaded.CourierConsignmentID)
	assert.Empty(t, reloaded.CourierStatus, "courier status was not named")
}

func TestGormOrderRepository_UpdateMissingRow(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, o))
	require.NoError(t, repo.Delete(ctx, o.ID))

	o.ApplyConsignment(order.Consignment{Courier: "steadfast", ConsignmentID: "42", TrackingCode: "TRK1"})
	err := repo.Update(ctx, o, order.FieldConsignment, order.FieldStatus)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	var count int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&count).Error)
	assert.Zero(t, count, "update must never insert")
}

func TestGormOrderRepository_Delete(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.ID))
	_, err := repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	assert.ErrorIs(t, repo.Delete(ctx, o.ID), shared.ErrNotFound)
}

func TestGormProductRepository(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	ring := seedProduct(t, db, "Ring", catalog.CategoryJewelry, 4)
	seedProduct(t, db, "Saree", catalog.CategoryClothing, 0)

	t.Run("filters by category and stock", func(t *testing.T) {
		jewelry, err := repo.FindAll(ctx, catalog.ProductFilter{Category: catalog.CategoryJewelry})
		require.NoError(t, err)
		require.Len(t, jewelry, 1)
		assert.Equal(t, "Ring", jewelry[0].Name)

		inStock, err := repo.FindAll(ctx, catalog.ProductFilter{InStock: true})
		require.NoError(t, err)
		assert.Len(t, inStock, 1)
	})

	t.Run("sorts by whitelisted column", func(t *testing.T) {
		byName, err := repo.FindAll(ctx, catalog.ProductFilter{SortBy: "name", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, byName, 2)
		assert.Equal(t, "Ring", byName[0].Name)

		byStock, err := repo.FindAll(ctx, catalog.ProductFilter{SortBy: "stock; DROP TABLE products", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Len(t, byStock, 2)
	})

	t.Run("locked read and stock update", func(t *testing.T) {
		p, err := repo.FindByIDForUpdate(ctx, ring.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Stock)

		require.NoError(t, repo.UpdateStock(ctx, ring.ID, 1))
		p, err = repo.FindByID(ctx, ring.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Stock)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.FindByIDForUpdate(ctx, 9999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateStock(ctx, 9999, 1), shared.ErrNotFound)
	})
}

func TestGormNotificationRepository(t *testing.T) {
	db := setupStoreTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	first := notification.NewOrderPlaced(1, "Ayesha")
	first.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	second := notification.NewOrderPlaced(2, "Karim")
	second.CreatedAt = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.MarkRead()
	require.NoError(t, repo.Save(ctx, first))

	all, err := repo.FindRecent(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new order #2 placed by Karim", all[0].Message)

	unread, err := repo.FindRecent(ctx, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, found.Read)
}

func TestGormOrderStatsRepository(t *testing.T) {
	db := setupStoreTestDB(t)
	orders := NewGormOrderRepository(db)
	stats := NewGormOrderStatsRepository(db)
	ctx := context.Background()

	price := func(n int64) []order.Item {
		return []order.Item{{ProductID: 1, Name: "Ring", Price: decimal.NewFromInt(n), Quantity: 1}}
	}
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	a := newTestOrder(t, jan, price(100)...)
	b := newTestOrder(t, feb, price(300)...)
	c := newTestOrder(t, feb, price(1000)...)
	require.NoError(t, c.SetStatus(order.StatusCancelled))
	for _, o := range []*order.Order{a, b, c} {
		require.NoError(t, orders.Create(ctx, o))
	}

	t.Run("total revenue excludes cancelled", func(t *testing.T) {
		agg, err := stats.RevenueBetween(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), agg.Orders)
		assert.True(t, decimal.NewFromInt(400).Equal(agg.Revenue), agg.Revenue.String())
	})

	t.Run("window is half open", func(t *testing.T) {
		agg, err := stats.RevenueBetween(ctx, jan, feb)
		require.NoError(t, err)
		assert.Equal(t, int64(1), agg.Orders)
		assert.True(t, decimal.NewFromInt(100).Equal(agg.Revenue))
	})

	t.Run("empty window", func(t *testing.T) {
		agg, err := stats.RevenueBetween(ctx, feb.AddDate(1, 0, 0), time.Time{})
		require.NoError(t, err)
		assert.Zero(t, agg.Orders)
		assert.True(t, agg.Revenue.IsZero())
	})

	t.Run("points since", func(t *testing.T) {
		points, err := stats.RevenuePointsSince(ctx, feb.AddDate(0, 0, -1))
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.True(t, decimal.NewFromInt(300).Equal(points[0].Amount))
		assert.Equal(t, time.February, points[0].CreatedAt.Month())
	})

	t.Run("counts by status", func(t *testing.T) {
		counts, err := stats.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[order.StatusConfirmed])
		assert.Equal(t, int64(1), counts[order.StatusCancelled])
	})
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()

	t.Run("commits stock and order together", func(t *testing.T) {
		db := setupStoreTestDB(t)
		ring := seedProduct(t, db, "Ring", catalog.CategoryJewelry, 3)
		scope := NewGormTransactionScope(db)

		o := newTestOrder(t, time.Now().UTC(), order.Item{ProductID: ring.ID, Name: "Ring", Price: decimal.NewFromInt(100), Quantity: 2})
		err := scope.Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			p, err := repos.Products().FindByIDForUpdate(ctx, ring.ID)
			if err != nil {
				return err
			}
			if err := p.DecreaseStock(2); err != nil {
				return err
			}
			if err := repos.Products().UpdateStock(ctx, p.ID, p.Stock); err != nil {
				return err
			}
			return repos.Orders().Create(ctx, o)
		})
		require.NoError(t, err)

		p, err := NewGormProductRepository(db).FindByID(ctx, ring.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Stock)
		_, err = NewGormOrderRepository(db).FindByID(ctx, o.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back every write on failure", func(t *testing.T) {
		db := setupStoreTestDB(t)
		ring := seedProduct(t, db, "Ring", catalog.CategoryJewelry, 3)
		scope := NewGormTransactionScope(db)
		failure := errors.New("second line failed")

		err := scope.Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			if err := repos.Products().UpdateStock(ctx, ring.ID, 0); err != nil {
				return err
			}
			if err := repos.Orders().Create(ctx, newTestOrder(t, time.Now().UTC())); err != nil {
				return err
			}
			return failure
		})
		require.ErrorIs(t, err, failure)

		p, err := NewGormProductRepository(db).FindByID(ctx, ring.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Stock)

		var count int64
		require.NoError(t, db.Model(&models.OrderModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}
