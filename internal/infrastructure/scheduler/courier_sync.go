package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apporder "github.com/boutique/storefront/internal/application/order"
	"github.com/boutique/storefront/internal/domain/order"
	"github.com/boutique/storefront/internal/infrastructure/cache"
	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourierSyncJobName is the run lock name of the courier status batch
const CourierSyncJobName = "courier-sync"

// SyncCandidateFinder lists orders that still wait for courier updates
type SyncCandidateFinder interface {
	FindAwaitingCourierSync(ctx context.Context, limit int) ([]order.Order, error)
}

// StatusSyncer polls the courier for one order and reports what happened.
// A courier failure is SyncFailed with a nil error.
type StatusSyncer interface {
	SyncStatusOutcome(ctx context.Context, id int64) (*order.Order, apporder.SyncOutcome, error)
}

// CourierSyncResult summarizes one batch
type CourierSyncResult struct {
	Total      int       `json:"total"`
	Changed    int       `json:"changed"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CourierSyncRunner polls the courier for every dispatched, non-terminal order.
// It never schedules itself; an external cron triggers Run through the admin API.
type CourierSyncRunner struct {
	finder SyncCandidateFinder
	syncer StatusSyncer
	locker cache.Locker
	config config.SchedulerConfig
	logger *zap.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *CourierSyncResult
}

// NewCourierSyncRunner creates a runner; zero config values fall back to defaults
func NewCourierSyncRunner(
	finder SyncCandidateFinder,
	syncer StatusSyncer,
	locker cache.Locker,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) (*CourierSyncRunner, error) {
	if finder == nil || syncer == nil || locker == nil {
		return nil, ErrInvalidConfig
	}
	if cfg.CourierSyncConcurrency <= 0 {
		cfg.CourierSyncConcurrency = 4
	}
	if cfg.CourierSyncBatchSize <= 0 {
		cfg.CourierSyncBatchSize = 200
	}
	if cfg.CourierSyncLockTTL <= 0 {
		cfg.CourierSyncLockTTL = 10 * time.Minute
	}
	if cfg.CourierSyncTimeout <= 0 {
		cfg.CourierSyncTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourierSyncRunner{
		finder: finder,
		syncer: syncer,
		locker: locker,
		config: cfg,
		logger: logger.Named("courier_sync"),
		now:    time.Now,
	}, nil
}

// Run executes one batch. It returns ErrJobAlreadyRunning when another batch,
// possibly on another instance, holds the run lock. The batch is detached from
// ctx cancellation and bounded by the configured timeout instead.
func (r *CourierSyncRunner) Run(ctx context.Context) (*CourierSyncResult, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.CourierSyncTimeout)
	defer cancel()

	unlock, acquired, err := r.locker.TryLock(ctx, CourierSyncJobName, r.config.CourierSyncLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire %s lock: %w", CourierSyncJobName, err)
	}
	if !acquired {
		return nil, ErrJobAlreadyRunning
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("Failed to release run lock", zap.Error(err))
		}
	}()

	ctx, span := telemetry.StartSpan(ctx, "courier_sync.run",
		attribute.String(telemetry.SpanAttrJob, CourierSyncJobName))
	defer span.End()

	result := &CourierSyncResult{StartedAt: r.now()}
	candidates, err := r.finder.FindAwaitingCourierSync(ctx, r.config.CourierSyncBatchSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list sync candidates: %w", err)
	}
	result.Total = len(candidates)

	var changed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.CourierSyncConcurrency)
	for i := range candidates {
		id := candidates[i].ID
		g.Go(func() error {
			_, outcome, err := r.syncer.SyncStatusOutcome(gctx, id)
			switch {
			case err != nil:
				failed.Add(1)
				r.logger.Warn("Order sync failed", zap.Int64("order_id", id), zap.Error(err))
			case outcome == apporder.SyncFailed:
				failed.Add(1)
			case outcome == apporder.SyncChanged:
				changed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Changed = int(changed.Load())
	result.Failed = int(failed.Load())
	result.FinishedAt = r.now()
	span.SetAttributes(
		attribute.Int("courier_sync.total", result.Total),
		attribute.Int("courier_sync.changed", result.Changed),
		attribute.Int("courier_sync.failed", result.Failed),
	)

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	r.logger.Info("Courier sync batch finished",
		zap.Int("total", result.Total),
		zap.Int("changed", result.Changed),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// LastResult returns a copy of the most recent batch result, or nil before the first run
func (r *CourierSyncRunner) LastResult() *CourierSyncResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	res := *r.last
	return &res
}
