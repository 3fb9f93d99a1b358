// Package metrics exposes Prometheus metrics for the HCP services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the collectors of one process.
type Registry struct {
	reg      *prometheus.Registry
	service  string
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a registry with HTTP and Go runtime collectors. service labels
// every HTTP sample.
func New(service string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		reg:     reg,
		service: service,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hcp_http_requests_total",
				Help: "Total HTTP requests by service, method, route and status",
			},
			[]string{"service", "method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hcp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service", "method", "route"},
		),
	}
	reg.MustRegister(r.requests, r.duration)
	return r
}

// Counter registers and returns a counter vector.
func (r *Registry) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	r.reg.MustRegister(c)
	return c
}

// Gauge registers a gauge whose value is read from fn at scrape time.
func (r *Registry) Gauge(name, help string, fn func() float64) {
	r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer is exposed for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Middleware records request count and latency. Routes are the echo route
// pattern, so path parameters do not create new series.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error so the recorded status is the real one.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			r.requests.WithLabelValues(r.service, method, route, status).Inc()
			r.duration.WithLabelValues(r.service, method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Inc increments c for labels; a nil c is ignored.
func Inc(c *prometheus.CounterVec, labels ...string) {
	if c == nil {
		return
	}
	c.WithLabelValues(labels...).Inc()
}
