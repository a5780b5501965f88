// Package observability holds the Prometheus collector and OpenTelemetry
// tracing setup.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devicemap/internal/domain"
)

// Collector bundles the devicemap Prometheus metrics and helpers to wire
// them into the HTTP router
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
	Events        *prometheus.CounterVec

	Devices             prometheus.Gauge
	Connections         prometheus.Gauge
	ConnectionTypes     prometheus.Gauge
	DanglingConnections prometheus.Gauge
}

// NewCollector registers metrics against reg, defaulting to the global
// Prometheus registry when nil
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devicemap_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route pattern and status code.",
	}, []string{"method", "route", "code"}), "devicemap_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devicemap_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"}), "devicemap_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devicemap_events_total",
		Help: "Inventory change events published, labeled by event type.",
	}, []string{"type"}), "devicemap_events_total")
	if err != nil {
		return nil, err
	}

	devices, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "devicemap_devices",
		Help: "Devices in the last exported graph.",
	}), "devicemap_devices")
	if err != nil {
		return nil, err
	}
	connections, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "devicemap_connections",
		Help: "Connections in the last exported graph.",
	}), "devicemap_connections")
	if err != nil {
		return nil, err
	}
	types, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "devicemap_connection_types",
		Help: "Connection types in the last inventory snapshot.",
	}), "devicemap_connection_types")
	if err != nil {
		return nil, err
	}
	dangling, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "devicemap_dangling_connections",
		Help: "Connections referencing a device that no longer exists, as of the last snapshot.",
	}), "devicemap_dangling_connections")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:            gatherer,
		HTTPRequests:        requests,
		HTTPDurations:       durations,
		Events:              events,
		Devices:             devices,
		Connections:         connections,
		ConnectionTypes:     types,
		DanglingConnections: dangling,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		c.HTTPDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordEvent counts a published inventory event
func (c *Collector) RecordEvent(eventType string) {
	if c == nil {
		return
	}
	c.Events.WithLabelValues(eventType).Inc()
}

// ObserveGraph updates the device and connection gauges from an export
func (c *Collector) ObserveGraph(g *domain.Graph) {
	if c == nil || g == nil {
		return
	}
	c.Devices.Set(float64(len(g.Nodes)))
	c.Connections.Set(float64(len(g.Edges)))
}

// ObserveInventory updates every inventory gauge from a snapshot
func (c *Collector) ObserveInventory(inv *domain.Inventory) {
	if c == nil || inv == nil {
		return
	}
	c.Devices.Set(float64(len(inv.Devices)))
	c.Connections.Set(float64(len(inv.Connections)))
	c.ConnectionTypes.Set(float64(len(inv.ConnectionTypes)))
	c.DanglingConnections.Set(float64(len(inv.DanglingConnections())))
}

// statusWriter captures the response status for metrics and logging
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent events working through the wrapper
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
