package metrics

import (
	"net/http" // Handler type
	"strconv"  // Status label
	"time"     // Latency

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Collectors and registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Go and process collectors
	"github.com/prometheus/client_golang/prometheus/promhttp"   // Exposition handler
)

// Metrics holds the service collectors.
type Metrics struct {
	RequestCount    *prometheus.CounterVec   // Requests by method, route and status
	RequestDuration *prometheus.HistogramVec // Request latency by method and route
	Trades          *prometheus.CounterVec   // Trades by type and outcome
	TradeDuration   *prometheus.HistogramVec // Trade latency by type
}

// New creates the collectors and registers them, with the Go and process collectors, on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		Trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trades_total",
				Help: "Total trade requests by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		TradeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trade_duration_seconds",
				Help:    "Trade execution duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		m.RequestCount, m.RequestDuration, m.Trades, m.TradeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTrade records one trade attempt.
func (m *Metrics) ObserveTrade(tradeType, outcome string, duration time.Duration) {
	m.Trades.WithLabelValues(tradeType, outcome).Inc()
	m.TradeDuration.WithLabelValues(tradeType).Observe(duration.Seconds())
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched" // Keeps label cardinality bounded
		}
		m.RequestCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
