package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/logger"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// OrderService owns checkout, the order status workflow and courier orchestration
type OrderService struct {
	txScope        TransactionScope
	orderRepo      order.Repository
	productRepo    catalog.ProductRepository
	courier        CourierGateway
	eventPublisher shared.EventPublisher
	metrics        Metrics
	policy         *bluemonday.Policy
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope TransactionScope,
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	courier CourierGateway,
	zapLogger *zap.Logger,
) *OrderService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &OrderService{
		txScope:     txScope,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		courier:     courier,
		metrics:     noopMetrics{},
		policy:      bluemonday.StrictPolicy(),
		logger:      zapLogger,
	}
}

// SetEventPublisher sets the publisher used for post-commit side effects
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// Create places an order. Stock of every product is checked and decremented under a
// row lock in the same transaction as the order insert; any failure rolls everything back.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	o, err := order.NewOrder(req.toDraft(s.policy))
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.Products()
		for _, idx := range lockOrder(o.Items) {
			item := o.Items[idx]
			p, err := products.FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewInvalidRequest("product not found: %d", item.ProductID)
				}
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}
			if err := p.DecreaseStock(item.Quantity); err != nil {
				return err
			}
			if err := products.UpdateStock(ctx, p.ID, p.Stock); err != nil {
				return fmt.Errorf("update stock of product %d: %w", p.ID, err)
			}
		}
		return repos.Orders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("order placed",
		logger.OrderID(o.ID),
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.String("total_amount", o.TotalAmount.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
	s.metrics.RecordOrderCreated(ctx, o)
	s.publish(ctx, order.NewOrderPlacedEvent(o))
	return o, nil
}

// lockOrder returns item indexes sorted by product ID so that concurrent
// checkouts acquire row locks in the same order.
func lockOrder(items []order.Item) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].ProductID < items[idx[b]].ProductID
	})
	return idx
}

// FindAll returns every order, newest first
func (s *OrderService) FindAll(ctx context.Context) ([]order.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// FindByUser returns a user's orders, newest first
func (s *OrderService) FindByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	return s.orderRepo.FindByUser(ctx, userID)
}

// FindOne returns a single order
func (s *OrderService) FindOne(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("order")
		}
		return nil, err
	}
	return o, nil
}

// UpdateStatus sets the fulfillment status without any transition check
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	if !status.IsValid() {
		return nil, shared.NewInvalidRequest("invalid order status %q", status)
	}
	return s.mutate(ctx, id, order.FieldStatus, func(o *order.Order) error {
		return o.SetStatus(status)
	})
}

// UpdatePaymentStatus sets the payment status without any transition check
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, status order.PaymentStatus) (*order.Order, error) {
	if !status.IsValid() {
		return nil, shared.NewInvalidRequest("invalid payment status %q", status)
	}
	return s.mutate(ctx, id, order.FieldPaymentStatus, func(o *order.Order) error {
		return o.SetPaymentStatus(status)
	})
}

// mutate applies fn to a fresh copy of the order and writes back only field
func (s *OrderService) mutate(ctx context.Context, id int64, field order.Field, fn func(o *order.Order) error) (*order.Order, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *o
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o, field); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("order")
		}
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	if before.Status != o.Status || before.PaymentStatus != o.PaymentStatus {
		s.publish(ctx, order.NewOrderStatusChangedEvent(&before, o, false))
	}
	return o, nil
}

// ConfirmOrder hands the order to the courier and records the consignment.
// Calling it twice dispatches two parcels. On any failure the order is left untouched.
// Only the consignment and status columns are written back, so concurrent
// payment updates survive the courier round trip.
func (s *OrderService) ConfirmOrder(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	log := s.log(ctx).With(logger.OrderID(o.ID))

	result, err := s.courier.CreateParcel(ctx, o, s.categoriesOf(ctx, o))
	if err != nil {
		s.metrics.RecordCourierDispatch(ctx, ResultError)
		log.Error("courier dispatch failed", zap.Error(err))
		if errors.Is(err, shared.ErrConfigurationError) {
			return nil, err
		}
		return nil, shared.NewCourierError(err.Error(), err)
	}
	if !result.Success {
		s.metrics.RecordCourierDispatch(ctx, ResultRejected)
		log.Warn("courier rejected parcel", zap.String("message", result.Message))
		return nil, shared.NewCourierError(result.Message, nil)
	}

	o.ApplyConsignment(order.Consignment{
		Courier:       s.courier.Name(),
		ConsignmentID: result.ConsignmentID,
		TrackingCode:  result.TrackingCode,
		TrackingLink:  result.TrackingLink,
		Status:        result.Status,
	})
	if err := s.orderRepo.Update(ctx, o, order.FieldConsignment, order.FieldStatus); err != nil {
		// the parcel already exists on the courier side
		log.Error("failed to persist consignment",
			zap.String("tracking_code", result.TrackingCode),
			zap.Error(err),
		)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeConflict, fmt.Sprintf(
				"order #%d was deleted after parcel %s was created", id, result.TrackingCode))
		}
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	s.metrics.RecordCourierDispatch(ctx, ResultSuccess)
	log.Info("order dispatched to courier",
		zap.String("consignment_id", o.CourierConsignmentID),
		zap.String("tracking_code", o.TrackingCode),
	)
	s.publish(ctx, order.NewOrderConfirmedEvent(o))
	return o, nil
}

// categoriesOf looks up the catalog category of every ordered product.
// Products that cannot be read are left out and weighed as unknown.
func (s *OrderService) categoriesOf(ctx context.Context, o *order.Order) map[int64]string {
	categories := make(map[int64]string, len(o.Items))
	for _, item := range o.Items {
		if _, ok := categories[item.ProductID]; ok {
			continue
		}
		p, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			continue
		}
		categories[item.ProductID] = p.Category
	}
	return categories
}

// SyncOutcome reports what a courier status sync did to an order
type SyncOutcome string

// Sync outcomes
const (
	SyncSkipped   SyncOutcome = "skipped"
	SyncUnchanged SyncOutcome = "unchanged"
	SyncChanged   SyncOutcome = "changed"
	SyncFailed    SyncOutcome = "failed"
)

// SyncStatus polls the courier for the parcel status and maps it onto the order.
// Courier and persistence failures are logged and the pre-sync order is returned.
func (s *OrderService) SyncStatus(ctx context.Context, id int64) (*order.Order, error) {
	o, _, err := s.SyncStatusOutcome(ctx, id)
	return o, err
}

// SyncStatusOutcome behaves like SyncStatus and also reports the outcome.
// Orders without tracking are SyncSkipped. A courier or persistence failure
// is SyncFailed with a nil error; only a failed lookup returns an error.
func (s *OrderService) SyncStatusOutcome(ctx context.Context, id int64) (*order.Order, SyncOutcome, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, SyncFailed, err
	}
	if !o.HasTracking() {
		return o, SyncSkipped, nil
	}
	log := s.log(ctx).With(logger.OrderID(o.ID), zap.String("tracking_code", o.TrackingCode))

	tracking, err := s.courier.TrackParcel(ctx, o.TrackingCode)
	if err != nil {
		s.metrics.RecordCourierSync(ctx, ResultError)
		log.Warn("courier status sync failed", zap.Error(err))
		return o, SyncFailed, nil
	}

	before := *o
	if !o.ApplyCourierStatus(tracking.Status) {
		s.metrics.RecordCourierSync(ctx, ResultUnchanged)
		return o, SyncUnchanged, nil
	}
	fields := []order.Field{order.FieldCourierStatus}
	if o.Status != before.Status {
		fields = append(fields, order.FieldStatus)
	}
	if o.PaymentStatus != before.PaymentStatus {
		fields = append(fields, order.FieldPaymentStatus)
	}
	if err := s.orderRepo.Update(ctx, o, fields...); err != nil {
		s.metrics.RecordCourierSync(ctx, ResultError)
		log.Error("failed to persist courier status", zap.Error(err))
		return &before, SyncFailed, nil
	}

	s.metrics.RecordCourierSync(ctx, ResultChanged)
	log.Info("courier status synced",
		zap.String("courier_status", o.CourierStatus),
		zap.String("status", string(o.Status)),
	)
	s.publish(ctx, order.NewOrderStatusChangedEvent(&before, o, true))
	return o, SyncChanged, nil
}

// Delete removes an order row. Stock is not restored.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFound("order")
		}
		return err
	}
	s.log(ctx).Info("order deleted", logger.OrderID(id))
	return nil
}

// CourierBalance returns the merchant balance held by the courier
func (s *OrderService) CourierBalance(ctx context.Context) (*BalanceResult, error) {
	balance, err := s.courier.CheckBalance(ctx)
	if err != nil {
		return nil, courierFailure(err)
	}
	return balance, nil
}

// CancelParcel asks the courier to cancel the order's parcel. The local order is not
// changed; the resulting status arrives through SyncStatus.
func (s *OrderService) CancelParcel(ctx context.Context, id int64) (*CancelResult, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TrackingCode == "" {
		return nil, shared.NewInvalidRequest("order #%d has no tracking code", o.ID)
	}

	result, err := s.courier.CancelParcel(ctx, o.TrackingCode)
	if err != nil {
		s.log(ctx).Error("courier cancellation failed", logger.OrderID(o.ID), zap.Error(err))
		return nil, courierFailure(err)
	}
	s.log(ctx).Info("courier cancellation requested",
		logger.OrderID(o.ID),
		zap.String("courier_status", result.Status),
	)
	return result, nil
}

func courierFailure(err error) error {
	if errors.Is(err, shared.ErrConfigurationError) {
		return err
	}
	return shared.NewCourierError(err.Error(), err)
}

func (s *OrderService) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	s.eventPublisher.PublishAsync(ctx, events...)
}
