package telemetry_test

import (
	"context"
	"testing"

	"github.com/boutique/storefront/internal/infrastructure/config"
	"github.com/boutique/storefront/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func disabledConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "storefront-test",
	}
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := disabledConfig()

	tp, err := telemetry.NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore("storefront", zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestProviders_Enabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := disabledConfig()
	cfg.Enabled = true
	cfg.MetricsEnabled = true
	cfg.LogsEnabled = true
	cfg.Insecure = true

	// gRPC exporters connect lazily, so construction succeeds without a collector
	tp, err := telemetry.NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	lp, err := telemetry.NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	core := lp.ZapCore("storefront", zapcore.WarnLevel)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = tp.Shutdown(shutdownCtx)
	_ = mp.Shutdown(shutdownCtx)
	_ = lp.Shutdown(shutdownCtx)
}
