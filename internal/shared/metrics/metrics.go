package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakly_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "breakly_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	leaveSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakly_leave_submitted_total",
		Help: "Leave requests submitted by type",
	}, []string{"type"})

	leaveDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakly_leave_decided_total",
		Help: "Leave decisions by resulting status",
	}, []string{"status"})

	leaveDecideConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breakly_leave_decide_conflicts_total",
		Help: "Decisions rejected because the request was no longer pending",
	})

	dashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakly_dashboard_cache_total",
		Help: "Dashboard stats cache lookups by result",
	}, []string{"result"})

	outboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakly_outbox_published_total",
		Help: "Outbox events handed to kafka by result",
	}, []string{"result"})
)

// Middleware records request counts and latency keyed by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func ObserveLeaveSubmitted(leaveType string) {
	leaveSubmitted.WithLabelValues(leaveType).Inc()
}

func ObserveLeaveDecided(status string) {
	leaveDecided.WithLabelValues(status).Inc()
}

func ObserveDecideConflict() {
	leaveDecideConflicts.Inc()
}

// ObserveDashboardCache takes "hit", "miss" or "error".
func ObserveDashboardCache(result string) {
	dashboardCache.WithLabelValues(result).Inc()
}

func ObserveOutboxPublish(result string) {
	outboxPublished.WithLabelValues(result).Inc()
}
