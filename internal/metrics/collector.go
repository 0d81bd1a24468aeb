package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// metricsKey is the Redis key the engine's metrics snapshot is written to.
	metricsKey = "metrics:escalation-engine"
	// metricsTTL is how long a snapshot stays in Redis if not refreshed.
	metricsTTL = 2 * time.Minute
	// defaultReportInterval is the default interval for writing metrics to Redis.
	defaultReportInterval = 30 * time.Second
)

// Snapshot holds the engine's metrics at one point in time.
type Snapshot struct {
	ServiceName     string            `json:"service_name"`
	StartedAt       time.Time         `json:"started_at"`
	LastUpdated     time.Time         `json:"last_updated"`
	Runs            uint64            `json:"runs"`
	AlertsProcessed uint64            `json:"alerts_processed"`
	LevelsSkipped   uint64            `json:"levels_skipped"`
	Errors          uint64            `json:"errors"`
	LastRunMs       float64           `json:"last_run_ms"`
	Escalated       map[string]uint64 `json:"escalated"`
}

// Collector collects escalation metrics and reports them to Redis.
type Collector struct {
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	runs            atomic.Uint64
	alertsProcessed atomic.Uint64
	levelsSkipped   atomic.Uint64
	errors          atomic.Uint64
	lastRunNs       atomic.Uint64

	channelMu sync.RWMutex
	escalated map[string]*atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector reporting to Redis.
func NewCollector(redisClient *redis.Client) *Collector {
	return &Collector{
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: defaultReportInterval,
		escalated:      make(map[string]*atomic.Uint64),
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordRun records one completed run with its duration.
func (c *Collector) RecordRun(duration time.Duration) {
	c.runs.Add(1)
	c.lastRunNs.Store(uint64(duration.Nanoseconds()))
}

// RecordProcessed increments the count of alerts evaluated.
func (c *Collector) RecordProcessed() {
	c.alertsProcessed.Add(1)
}

// RecordEscalated increments the dispatch counter for a channel.
func (c *Collector) RecordEscalated(channel string) {
	c.channelMu.RLock()
	counter, exists := c.escalated[channel]
	c.channelMu.RUnlock()

	if !exists {
		c.channelMu.Lock()
		// Double-check after acquiring write lock
		if counter, exists = c.escalated[channel]; !exists {
			counter = &atomic.Uint64{}
			c.escalated[channel] = counter
		}
		c.channelMu.Unlock()
	}
	counter.Add(1)
}

// RecordSkipped increments the count of levels skipped by the idempotency guard.
func (c *Collector) RecordSkipped() {
	c.levelsSkipped.Add(1)
}

// RecordError increments the error counter.
func (c *Collector) RecordError() {
	c.errors.Add(1)
}

// GetSnapshot returns current metrics without writing to Redis.
func (c *Collector) GetSnapshot() *Snapshot {
	c.channelMu.RLock()
	escalated := make(map[string]uint64, len(c.escalated))
	for channel, counter := range c.escalated {
		escalated[channel] = counter.Load()
	}
	c.channelMu.RUnlock()

	return &Snapshot{
		ServiceName:     "escalation-engine",
		StartedAt:       c.startedAt,
		LastUpdated:     time.Now().UTC(),
		Runs:            c.runs.Load(),
		AlertsProcessed: c.alertsProcessed.Load(),
		LevelsSkipped:   c.levelsSkipped.Load(),
		Errors:          c.errors.Load(),
		LastRunMs:       float64(c.lastRunNs.Load()) / 1e6,
		Escalated:       escalated,
	}
}

// writeMetrics writes current metrics to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(c.GetSnapshot())
	if err != nil {
		slog.Error("Failed to marshal metrics", "error", err)
		return
	}

	if err := c.redis.Set(ctx, metricsKey, data, metricsTTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "error", err)
		return
	}

	slog.Debug("Metrics written to Redis", "key", metricsKey)
}

// Ensure Collector implements Recorder
var _ Recorder = (*Collector)(nil)
