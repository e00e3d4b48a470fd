package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracingConfig controls the otelgorm plugin.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables; development only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom derives the database tracing config
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	system := "postgresql"
	if db.Driver == "sqlite" {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: tel.DBSlowQueryThresh,
		DBSystem:        system,
	}
}

type queryStartKey struct{}

// InstrumentDB registers otelgorm on db plus callbacks that annotate each
// span with row counts, errors and a slow_query flag.
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	registrations := []error{
		cb.Create().Before("gorm:create").Register("mfg_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("mfg_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("mfg_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("mfg_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("mfg_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("mfg_timing:before_raw", before),
		cb.Create().After("gorm:create").Register("mfg_timing:after_create", after),
		cb.Query().After("gorm:query").Register("mfg_timing:after_query", after),
		cb.Update().After("gorm:update").Register("mfg_timing:after_update", after),
		cb.Delete().After("gorm:delete").Register("mfg_timing:after_delete", after),
		cb.Row().After("gorm:row").Register("mfg_timing:after_row", after),
		cb.Raw().After("gorm:raw").Register("mfg_timing:after_raw", after),
	}
	if err := errors.Join(registrations...); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, threshold time.Duration) {
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
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
