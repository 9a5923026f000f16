package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks spans of queries slower than this
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// InstrumentGorm installs the otelgorm plugin plus callbacks that tag each
// query span with the table, affected rows and a slow-query event.
// Query variables are never recorded because they carry customer details.
func InstrumentGorm(db *gorm.DB, slowThreshold time.Duration, logger *zap.Logger) error {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}
	after := func(tx *gorm.DB) { annotateQuerySpan(tx, slowThreshold) }
	cb := db.Callback()
	registrations := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("storefront:before_create", markQueryStart)},
		{"create", cb.Create().After("gorm:create").Register("storefront:after_create", after)},
		{"query", cb.Query().Before("gorm:query").Register("storefront:before_query", markQueryStart)},
		{"query", cb.Query().After("gorm:query").Register("storefront:after_query", after)},
		{"update", cb.Update().Before("gorm:update").Register("storefront:before_update", markQueryStart)},
		{"update", cb.Update().After("gorm:update").Register("storefront:after_update", after)},
		{"delete", cb.Delete().Before("gorm:delete").Register("storefront:before_delete", markQueryStart)},
		{"delete", cb.Delete().After("gorm:delete").Register("storefront:after_delete", after)},
		{"row", cb.Row().Before("gorm:row").Register("storefront:before_row", markQueryStart)},
		{"row", cb.Row().After("gorm:row").Register("storefront:after_row", after)},
		{"raw", cb.Raw().Before("gorm:raw").Register("storefront:before_raw", markQueryStart)},
		{"raw", cb.Raw().After("gorm:raw").Register("storefront:after_raw", after)},
	}
	for _, r := range registrations {
		if r.err != nil {
			return fmt.Errorf("register %s tracing callback: %w", r.name, r.err)
		}
	}

	// registered last so the tagging callbacks above run before otelgorm ends the span
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", slowThreshold))
	return nil
}

func markQueryStart(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
	}
}

func annotateQuerySpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slowThreshold {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThreshold.Milliseconds()),
			))
		}
	}
}
