package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the console.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	submissionTotal   *prometheus.CounterVec
	slotWriteFailures prometheus.Counter
}

// NewMetricsService registers the console's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Attendance submission lifecycle outcomes",
	}, []string{"outcome"})

	slotWriteFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_slot_write_failures_total",
		Help: "Failed writes to the durable attendance slot",
	})

	registry.MustRegister(requestDuration, requestTotal, submissionTotal, slotWriteFailures)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		submissionTotal:   submissionTotal,
		slotWriteFailures: slotWriteFailures,
	}
}

// RecordSubmission counts one submission outcome.
func (s *MetricsService) RecordSubmission(outcome string) {
	s.submissionTotal.WithLabelValues(outcome).Inc()
}

// RecordSlotWriteFailure counts one failed durable-slot write.
func (s *MetricsService) RecordSlotWriteFailure() {
	s.slotWriteFailures.Inc()
}

// Handler serves the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// GinMiddleware observes request totals and latency per route.
func (s *MetricsService) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())
		s.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		s.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
