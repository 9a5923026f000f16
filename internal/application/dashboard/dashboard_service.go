package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/boutique/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// ChartMonths is the number of calendar months in the revenue chart, current month included
	ChartMonths = 6
	// TrendWindow is the length of each window compared by Trends
	TrendWindow = 30 * 24 * time.Hour
	// DefaultCacheTTL is used when no positive TTL is configured
	DefaultCacheTTL = 60 * time.Second
)

// Cache keys
const (
	keyRevenue      = "dashboard:revenue"
	keyRevenueChart = "dashboard:revenue-chart"
	keyPerformance  = "dashboard:performance"
	keyTrends       = "dashboard:trends"
)

// Cache stores computed dashboard figures as JSON
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// DashboardService aggregates order figures for the admin dashboard
type DashboardService struct {
	stats  order.StatsReader
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(stats order.StatsReader, cache Cache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:  stats,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// TotalRevenue sums every non-cancelled order
func (s *DashboardService) TotalRevenue(ctx context.Context) (RevenueSummary, error) {
	return cached(ctx, s, keyRevenue, func() (RevenueSummary, error) {
		agg, err := s.stats.RevenueBetween(ctx, time.Time{}, time.Time{})
		if err != nil {
			return RevenueSummary{}, fmt.Errorf("total revenue: %w", err)
		}
		return RevenueSummary{TotalRevenue: agg.Revenue}, nil
	})
}

// RevenueChart buckets non-cancelled orders of the last six calendar months by
// creation month, oldest first. Months without orders are zero.
func (s *DashboardService) RevenueChart(ctx context.Context) ([]MonthlyRevenue, error) {
	return cached(ctx, s, keyRevenueChart, func() ([]MonthlyRevenue, error) {
		now := s.now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start := first.AddDate(0, -(ChartMonths - 1), 0)

		points, err := s.stats.RevenuePointsSince(ctx, start)
		if err != nil {
			return nil, fmt.Errorf("revenue chart: %w", err)
		}

		chart := make([]MonthlyRevenue, ChartMonths)
		for i := range chart {
			m := start.AddDate(0, i, 0)
			chart[i] = MonthlyRevenue{
				Month:      m.Format("Jan 2006"),
				Year:       m.Year(),
				MonthIndex: int(m.Month()) - 1,
				Revenue:    decimal.Zero,
			}
		}
		for _, p := range points {
			at := p.CreatedAt.In(now.Location())
			idx := (at.Year()-start.Year())*12 + int(at.Month()) - int(start.Month())
			if idx < 0 || idx >= ChartMonths {
				continue
			}
			chart[idx].Revenue = chart[idx].Revenue.Add(p.Amount)
			chart[idx].Orders++
		}
		return chart, nil
	})
}

// Performance reports status counts and rates over all orders. The average order
// value only considers non-cancelled orders.
func (s *DashboardService) Performance(ctx context.Context) (Performance, error) {
	return cached(ctx, s, keyPerformance, func() (Performance, error) {
		counts, err := s.stats.CountByStatus(ctx)
		if err != nil {
			return Performance{}, fmt.Errorf("performance: %w", err)
		}
		agg, err := s.stats.RevenueBetween(ctx, time.Time{}, time.Time{})
		if err != nil {
			return Performance{}, fmt.Errorf("performance: %w", err)
		}

		var total int64
		for _, n := range counts {
			total += n
		}
		delivered := counts[order.StatusDelivered]
		cancelled := counts[order.StatusCancelled]

		return Performance{
			TotalOrders:       total,
			DeliveredOrders:   delivered,
			CancelledOrders:   cancelled,
			PendingOrders:     counts[order.StatusPending],
			FulfillmentRate:   percentage(delivered, total),
			CancellationRate:  percentage(cancelled, total),
			AverageOrderValue: average(agg.Revenue, agg.Orders),
		}, nil
	})
}

// Trends compares the trailing 30 days with the 30 days before them
func (s *DashboardService) Trends(ctx context.Context) (Trends, error) {
	return cached(ctx, s, keyTrends, func() (Trends, error) {
		now := s.now()
		currentStart := now.Add(-TrendWindow)
		previousStart := currentStart.Add(-TrendWindow)

		current, err := s.stats.RevenueBetween(ctx, currentStart, now)
		if err != nil {
			return Trends{}, fmt.Errorf("trends: %w", err)
		}
		previous, err := s.stats.RevenueBetween(ctx, previousStart, currentStart)
		if err != nil {
			return Trends{}, fmt.Errorf("trends: %w", err)
		}

		return Trends{
			Revenue: newTrend(current.Revenue, previous.Revenue),
			Orders:  newTrend(decimal.NewFromInt(current.Orders), decimal.NewFromInt(previous.Orders)),
			AverageOrderValue: newTrend(
				average(current.Revenue, current.Orders),
				average(previous.Revenue, previous.Orders),
			),
		}, nil
	})
}

func newTrend(current, previous decimal.Decimal) Trend {
	return Trend{Current: current, Previous: previous, Trend: CalculateTrend(current, previous)}
}

// cached serves key from the cache or computes and stores it. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, s *DashboardService, key string, compute func() (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return hit, nil
		}
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}
