package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the federation-facing prometheus metrics.
type Collector struct {
	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Inbound federation
	activitiesReceivedTotal *prometheus.CounterVec
	activitiesRejectedTotal *prometheus.CounterVec
	dereferenceTotal        *prometheus.CounterVec

	// Votes
	votesAppliedTotal *prometheus.CounterVec

	// Outbound delivery
	deliveriesTotal *prometheus.CounterVec
	queueDepth      prometheus.Gauge

	// Database pool
	dbConnections    *prometheus.GaugeVec
	dbWaitSeconds    prometheus.Counter
	dbWaitCountTotal prometheus.Counter
}

// NewCollector registers and returns the metric set.
func NewCollector() *Collector {
	return &Collector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		activitiesReceivedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "federation_activities_received_total",
				Help: "Inbound activities by type",
			},
			[]string{"type"},
		),
		activitiesRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "federation_activities_rejected_total",
				Help: "Inbound activities rejected during verify, by reason",
			},
			[]string{"type", "reason"},
		),
		dereferenceTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "federation_dereference_total",
				Help: "Remote dereference attempts by outcome",
			},
			[]string{"outcome"},
		),
		votesAppliedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "votes_applied_total",
				Help: "Vote submissions by score",
			},
			[]string{"score"},
		),
		deliveriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "federation_deliveries_total",
				Help: "Outbound delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		queueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "federation_delivery_queue_depth",
				Help: "Current depth of the outbound delivery queue",
			},
		),
		dbConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_connections",
				Help: "Database connection pool state",
			},
			[]string{"state"},
		),
		dbWaitSeconds: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "db_wait_seconds_total",
				Help: "Cumulative time spent waiting for a connection",
			},
		),
		dbWaitCountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "db_wait_count_total",
				Help: "Cumulative number of waits for a connection",
			},
		),
	}
}

func (c *Collector) ObserveHTTPRequest(method, endpoint, status string, seconds float64) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func (c *Collector) ActivityReceived(activityType string) {
	c.activitiesReceivedTotal.WithLabelValues(activityType).Inc()
}

func (c *Collector) ActivityRejected(activityType, reason string) {
	c.activitiesRejectedTotal.WithLabelValues(activityType, reason).Inc()
}

func (c *Collector) DereferenceResult(outcome string) {
	c.dereferenceTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) VoteApplied(score string) {
	c.votesAppliedTotal.WithLabelValues(score).Inc()
}

func (c *Collector) DeliveryResult(outcome string) {
	c.deliveriesTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) SetQueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}

// ObserveDBPool records a pool snapshot. Wait figures are deltas since
// the previous snapshot because sql.DBStats reports them cumulatively.
func (c *Collector) ObserveDBPool(open, inUse, idle int, waitCountDelta int64, waitDelta time.Duration) {
	c.dbConnections.WithLabelValues("open").Set(float64(open))
	c.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	c.dbConnections.WithLabelValues("idle").Set(float64(idle))
	if waitCountDelta > 0 {
		c.dbWaitCountTotal.Add(float64(waitCountDelta))
	}
	if waitDelta > 0 {
		c.dbWaitSeconds.Add(waitDelta.Seconds())
	}
}
