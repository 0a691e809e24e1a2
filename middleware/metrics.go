package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the API
type Metrics struct {
	registry            *prometheus.Registry
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CascadeDeletesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bugtracker_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bugtracker_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CascadeDeletesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bugtracker_cascade_deletes_total",
				Help: "Cascading deletes by parent entity and outcome",
			},
			[]string{"entity", "outcome"},
		),
	}

	registry.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.CascadeDeletesTotal)
	return m
}

// Handler records request count and latency per route template
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveCascade implements services.CascadeObserver
func (m *Metrics) ObserveCascade(entity, outcome string) {
	m.CascadeDeletesTotal.WithLabelValues(entity, outcome).Inc()
}

// Exposition serves the registry in the Prometheus text format
func (m *Metrics) Exposition() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
