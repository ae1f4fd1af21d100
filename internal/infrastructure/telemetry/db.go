package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation
type DBConfig struct {
	TraceEnabled    bool
	DBName          string
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// InstrumentDB registers the otelgorm tracing plugin when tracing is on and
// always records query durations on meter. Queries slower than the
// threshold are logged with the statement.
func InstrumentDB(db *gorm.DB, cfg DBConfig, meter metric.Meter, log *zap.Logger) error {
	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	duration, err := meter.Float64Histogram("db.client.query.duration",
		metric.WithDescription("Duration of database statements"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	q := &queryTimer{duration: duration, slow: cfg.SlowQueryThresh, logger: log.Named("db")}
	return q.register(db)
}

type queryTimer struct {
	duration metric.Float64Histogram
	slow     time.Duration
	logger   *zap.Logger
}

func (q *queryTimer) register(db *gorm.DB) error {
	cb := db.Callback()
	steps := []struct {
		name   string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.before("sitestock:timer_before_"+s.name, q.before); err != nil {
			return err
		}
		if err := s.after("sitestock:timer_after_"+s.name, q.after(s.name)); err != nil {
			return err
		}
	}
	return nil
}

func (q *queryTimer) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (q *queryTimer) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		q.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.table", db.Statement.Table),
			attribute.Bool("error", db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)),
		))
		if elapsed > q.slow {
			logger.Enrich(ctx, q.logger).Warn("Slow query",
				zap.String("operation", operation),
				zap.String("table", db.Statement.Table),
				zap.Duration("elapsed", elapsed),
				zap.String("sql", db.Statement.SQL.String()),
			)
		}
	}
}
