package middleware

import (
	"time"

	"github.com/boutique/storefront/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics holds the HTTP server instruments
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.IntHistogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}
	requestDuration, err := telemetry.NewIntHistogram(meter,
		"http_server_request_duration_ms",
		"HTTP request latency distribution in milliseconds",
		"ms",
		telemetry.HTTPDurationBuckets...,
	)
	if err != nil {
		return nil, err
	}
	return &httpMetrics{requestTotal: requestTotal, requestDuration: requestDuration}, nil
}

// HTTPMetrics counts requests and records their latency per method, route and status.
// Unmatched routes are reported as "unmatched" to keep cardinality bounded.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := c.Request.Context()
		method := telemetry.AttrHTTPMethod.String(c.Request.Method)
		routeAttr := telemetry.AttrHTTPRoute.String(route)

		m.requestTotal.Inc(ctx, method, routeAttr, telemetry.AttrHTTPStatus.Int(c.Writer.Status()))
		m.requestDuration.Record(ctx, time.Since(start).Milliseconds(), method, routeAttr)
	}, nil
}
