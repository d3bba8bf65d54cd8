package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routesketch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routesketch",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Editor metrics
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "editor",
		Name:      "mutations_total",
		Help:      "Total route mutations, by operation and outcome",
	}, []string{"operation", "outcome"})

	GesturesRejectedBusy = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "editor",
		Name:      "gestures_rejected_busy_total",
		Help:      "Total gestures dropped because a mutation was in flight",
	})

	UndoDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routesketch",
		Subsystem: "editor",
		Name:      "undo_depth",
		Help:      "Current depth of the undo log",
	})

	// Directions metrics
	DirectionsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "directions",
		Name:      "requests_total",
		Help:      "Total directions provider lookups, by outcome",
	}, []string{"outcome"})

	DirectionsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routesketch",
		Subsystem: "directions",
		Name:      "request_duration_seconds",
		Help:      "Directions provider round-trip latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	ElevationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "elevation",
		Name:      "requests_total",
		Help:      "Total elevation profile lookups, by outcome",
	}, []string{"outcome"})

	// Observer metrics
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routesketch",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	SnapshotsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "ws",
		Name:      "snapshots_published_total",
		Help:      "Total route snapshots pushed to observers",
	}, []string{"channel"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routesketch",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
