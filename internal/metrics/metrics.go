package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads accepted by the intake forms",
		},
		[]string{"kind"},
	)

	leadTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transitions_total",
			Help: "Total number of lead status changes",
		},
		[]string{"to"},
	)

	leadsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_purged_total",
			Help: "Total number of completed leads deleted by the retention policy",
		},
	)

	notifyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_errors_total",
			Help: "Total number of failed best-effort deliveries",
		},
		[]string{"channel"},
	)
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordLeadCreated(kind string) {
	leadsCreated.WithLabelValues(kind).Inc()
}

func RecordTransition(to string) {
	leadTransitions.WithLabelValues(to).Inc()
}

func RecordPurged(n int) {
	if n > 0 {
		leadsPurged.Add(float64(n))
	}
}

func RecordNotifyError(channel string) {
	notifyErrors.WithLabelValues(channel).Inc()
}
