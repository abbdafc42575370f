package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestLabels = []string{"method", "route", "status"}

// Handler owns the registry behind /metrics and the HTTP request collectors.
type Handler struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func New() *Handler {
	h := &Handler{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, requestLabels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP requests answered with a 4xx or 5xx status",
		}, requestLabels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, requestLabels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		}),
	}

	h.registry.MustRegister(
		h.requests,
		h.failures,
		h.latency,
		h.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return h
}

// Middleware labels requests by route template, so /clinics/:id/ is a single series.
// Requests that match no route share the "unmatched" label.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.inFlight.Inc()
		start := time.Now()
		defer h.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		labels := []string{c.Request.Method, route, strconv.Itoa(status)}

		h.requests.WithLabelValues(labels...).Inc()
		h.latency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		if status >= 400 {
			h.failures.WithLabelValues(labels...).Inc()
		}
	}
}

// Registry is where other components register their collectors to be served on /metrics.
func (h *Handler) Registry() prometheus.Registerer {
	return h.registry
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
