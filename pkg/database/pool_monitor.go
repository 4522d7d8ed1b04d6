package database

import (
	"context"
	"time"

	"fedforum/pkg/logger"
	"fedforum/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PoolMonitor periodically snapshots the connection pool into the
// metrics collector. Wait pressure on the pool is the first thing to
// look at when inbox latency climbs.
type PoolMonitor struct {
	db        *gorm.DB
	collector *metrics.Collector
	interval  time.Duration

	lastWaitCount    int64
	lastWaitDuration time.Duration
}

func NewPoolMonitor(db *gorm.DB, collector *metrics.Collector, interval time.Duration) *PoolMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PoolMonitor{
		db:        db,
		collector: collector,
		interval:  interval,
	}
}

// Start runs the sampling loop until ctx is canceled.
func (m *PoolMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sample()
			}
		}
	}()
}

func (m *PoolMonitor) sample() {
	sqlDB, err := m.db.DB()
	if err != nil {
		logger.Log.Warn("pool monitor could not reach sql.DB", zap.Error(err))
		return
	}
	stats := sqlDB.Stats()

	waitCountDelta := stats.WaitCount - m.lastWaitCount
	waitDelta := stats.WaitDuration - m.lastWaitDuration
	m.lastWaitCount = stats.WaitCount
	m.lastWaitDuration = stats.WaitDuration

	m.collector.ObserveDBPool(stats.OpenConnections, stats.InUse, stats.Idle,
		waitCountDelta, waitDelta)

	if waitCountDelta > 0 {
		logger.Log.Warn("connection pool waits observed",
			zap.Int64("waits", waitCountDelta),
			zap.Duration("wait_time", waitDelta),
			zap.Int("open", stats.OpenConnections),
			zap.Int("in_use", stats.InUse),
		)
	}
}
