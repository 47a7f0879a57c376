package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and quiz collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Submissions     *prometheus.CounterVec
	NewRecords      prometheus.Counter
	ActiveSessions  prometheus.Gauge
	SSEClients      prometheus.Gauge
	PINRejections   prometheus.Counter
}

// New registers every collector on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_submissions_total",
				Help: "Graded exam submissions",
			},
			[]string{"source"},
		),
		NewRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_new_records_total",
			Help: "Submissions that set a new exam record",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Exam sessions held in memory",
		}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_sse_clients",
			Help: "Open record event streams",
		}),
		PINRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_pin_rejections_total",
			Help: "Requests refused for a wrong or throttled PIN",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.Submissions,
		m.NewRecords,
		m.ActiveSessions,
		m.SSEClients,
		m.PINRejections,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveSubmission(source string, newRecord bool) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(source).Inc()
	if newRecord {
		m.NewRecords.Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) SSEClientConnected() {
	if m == nil {
		return
	}
	m.SSEClients.Inc()
}

func (m *Metrics) SSEClientDisconnected() {
	if m == nil {
		return
	}
	m.SSEClients.Dec()
}

func (m *Metrics) PINRejected() {
	if m == nil {
		return
	}
	m.PINRejections.Inc()
}

func (m *Metrics) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) PrometheusHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
