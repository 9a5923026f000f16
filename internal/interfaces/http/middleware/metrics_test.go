package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boutique/storefront/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_RecordsRouteAndStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/orders/1", "/orders/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var sawHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "http_server_request_total":
				sum := m.Data.(metricdata.Sum[int64])
				for _, dp := range sum.DataPoints {
					route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
					counts[route.AsString()] += dp.Value
				}
			case "http_server_request_duration_ms":
				sawHistogram = true
			}
		}
	}

	assert.Equal(t, int64(2), counts["/orders/:id"])
	assert.Equal(t, int64(1), counts["unmatched"])
	assert.True(t, sawHistogram)
}

func TestHTTPMetrics_NoopMeter(t *testing.T) {
	mw, err := HTTPMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
