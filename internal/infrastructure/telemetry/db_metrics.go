package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsStartKey = "telemetry:metrics_start"

// DBMetricsConfig controls query and connection pool metrics
type DBMetricsConfig struct {
	SlowQueryThresh   time.Duration
	PoolStatsInterval time.Duration
}

// DBMetrics records query counts, latency and pool usage
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolConns      *Gauge
	poolConnsMax   *Gauge

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// RegisterDBMetrics installs the gorm callbacks and starts pool sampling.
// It returns nil when metrics are disabled; Stop is safe on a nil *DBMetrics.
func RegisterDBMetrics(ctx context.Context, db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !mp.IsEnabled() {
		return nil, nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m, err := newDBMetrics(mp, cfg, logger)
	if err != nil {
		return nil, err
	}
	if m.sqlDB, err = db.DB(); err != nil {
		return nil, err
	}

	cb := db.Callback()
	before := func(tx *gorm.DB) { tx.InstanceSet(metricsStartKey, time.Now()) }
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) { m.recordQuery(tx, operation) }
	}
	err = errors.Join(
		cb.Create().Before("gorm:create").Register("metrics:before_create", before),
		cb.Query().Before("gorm:query").Register("metrics:before_query", before),
		cb.Update().Before("gorm:update").Register("metrics:before_update", before),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before),
		cb.Row().Before("gorm:row").Register("metrics:before_row", before),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before),
		cb.Create().After("gorm:create").Register("metrics:after_create", after("INSERT")),
		cb.Query().After("gorm:query").Register("metrics:after_query", after("SELECT")),
		cb.Update().After("gorm:update").Register("metrics:after_update", after("UPDATE")),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("DELETE")),
		cb.Row().After("gorm:row").Register("metrics:after_row", after("")),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("")),
	)
	if err != nil {
		return nil, err
	}

	m.startPoolStats(ctx)
	logger.Info("Database metrics enabled",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.Duration("pool_stats_interval", cfg.PoolStatsInterval),
	)
	return m, nil
}

func newDBMetrics(mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	meter := mp.Meter("db.client")
	m := &DBMetrics{config: cfg, logger: logger, stopCh: make(chan struct{})}

	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, "db_query_duration_seconds", "Database query latency in seconds", "s", DBDurationBuckets); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the slow query threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.poolConns, err = NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnsMax, err = NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}"); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DBMetrics) recordQuery(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if operation == "" {
		operation = operationOf(tx.Statement.SQL.String())
	}

	var elapsed time.Duration
	if v, ok := tx.InstanceGet(metricsStartKey); ok {
		if start, ok := v.(time.Time); ok {
			elapsed = time.Since(start)
		}
	}

	op := AttrDBOperation.String(operation)
	m.queryTotal.Inc(ctx, op)
	m.queryDuration.RecordDuration(ctx, elapsed, op)
	if elapsed > m.config.SlowQueryThresh {
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, op, AttrDBTable.String(table))
	}
}

func (m *DBMetrics) startPoolStats(ctx context.Context) {
	m.collectPoolStats(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConns.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool sampling. Safe to call more than once.
func (m *DBMetrics) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

func operationOf(statement string) string {
	statement = strings.ToUpper(strings.TrimSpace(statement))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(statement, op) {
			return op
		}
	}
	return "OTHER"
}
