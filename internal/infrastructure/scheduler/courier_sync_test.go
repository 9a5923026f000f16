package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/boutique/storefront/internal/infrastructure/cache"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubFinder struct {
	orders []order.Order
	err    error
	limit  int
}

func (f *stubFinder) FindAwaitingCourierSync(_ context.Context, limit int) ([]order.Order, error) {
	f.limit = limit
	return f.orders, f.err
}

// stubSyncer moves orders listed in deliver to delivered, reports courier
// failures for those in courierDown and fails the lookup of those in fail
type stubSyncer struct {
	deliver     map[int64]bool
	courierDown map[int64]bool
	fail        map[int64]bool
	block       chan struct{}
	inFlight    atomic.Int32
	peak        atomic.Int32
}

func (s *stubSyncer) SyncStatusOutcome(_ context.Context, id int64) (*order.Order, apporder.SyncOutcome, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.block != nil {
		<-s.block
	}

	if s.fail[id] {
		return nil, apporder.SyncFailed, shared.NewNotFound("order")
	}
	o := &order.Order{ID: id, Status: order.StatusShipped, CourierStatus: "in_review"}
	if s.courierDown[id] {
		return o, apporder.SyncFailed, nil
	}
	if s.deliver[id] {
		o.Status = order.StatusDelivered
		o.CourierStatus = order.CourierStatusDelivered
		return o, apporder.SyncChanged, nil
	}
	return o, apporder.SyncUnchanged, nil
}

func shippedOrders(ids ...int64) []order.Order {
	out := make([]order.Order, len(ids))
	for i, id := range ids {
		out[i] = order.Order{ID: id, Status: order.StatusShipped, CourierStatus: "in_review", TrackingCode: "TRK"}
	}
	return out
}

func newRunner(t *testing.T, finder SyncCandidateFinder, syncer StatusSyncer, locker cache.Locker, cfg config.SchedulerConfig) *CourierSyncRunner {
	t.Helper()
	r, err := NewCourierSyncRunner(finder, syncer, locker, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

func TestNewCourierSyncRunner_RequiresCollaborators(t *testing.T) {
	_, err := NewCourierSyncRunner(nil, &stubSyncer{}, cache.NewInMemoryRunLock(), config.SchedulerConfig{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCourierSyncRunner_Run(t *testing.T) {
	finder := &stubFinder{orders: shippedOrders(1, 2, 3, 4, 5)}
	syncer := &stubSyncer{
		deliver:     map[int64]bool{2: true, 4: true},
		fail:        map[int64]bool{3: true},
		courierDown: map[int64]bool{5: true},
	}
	r := newRunner(t, finder, syncer, cache.NewInMemoryRunLock(), config.SchedulerConfig{CourierSyncBatchSize: 50})

	assert.Nil(t, r.LastResult())

	res, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
	assert.Equal(t, 50, finder.limit)
	assert.Equal(t, res, r.LastResult())
}

func TestCourierSyncRunner_BoundedConcurrency(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	syncer := &stubSyncer{block: make(chan struct{})}
	r := newRunner(t, &stubFinder{orders: shippedOrders(ids...)}, syncer, cache.NewInMemoryRunLock(),
		config.SchedulerConfig{CourierSyncConcurrency: 3})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Run(context.Background())
	}()

	require.Eventually(t, func() bool { return syncer.inFlight.Load() == 3 }, time.Second, 5*time.Millisecond)
	close(syncer.block)
	<-done

	assert.Equal(t, int32(3), syncer.peak.Load())
}

func TestCourierSyncRunner_RejectsOverlappingRuns(t *testing.T) {
	syncer := &stubSyncer{block: make(chan struct{})}
	r := newRunner(t, &stubFinder{orders: shippedOrders(1)}, syncer, cache.NewInMemoryRunLock(), config.SchedulerConfig{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.Run(context.Background())
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return syncer.inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrJobAlreadyRunning)

	close(syncer.block)
	wg.Wait()

	// lock is released after the batch
	_, err = r.Run(context.Background())
	assert.NoError(t, err)
}

func TestCourierSyncRunner_FinderFailure(t *testing.T) {
	r := newRunner(t, &stubFinder{err: errors.New("db down")}, &stubSyncer{}, cache.NewInMemoryRunLock(), config.SchedulerConfig{})

	_, err := r.Run(context.Background())

	assert.ErrorContains(t, err, "db down")
	assert.Nil(t, r.LastResult())
}

func TestCourierSyncRunner_DetachedFromCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newRunner(t, &stubFinder{orders: shippedOrders(1, 2)}, &stubSyncer{deliver: map[int64]bool{1: true}},
		cache.NewInMemoryRunLock(), config.SchedulerConfig{})

	res, err := r.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, 0, res.Failed)
}
