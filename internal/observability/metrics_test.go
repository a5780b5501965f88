package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicemap/internal/domain"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	return c, reg
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	c, _ := newTestCollector(t)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices/42", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/devices/{id}", "404"))
	assert.Equal(t, float64(2), got)
}

func TestNewCollectorIsIdempotentPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	first.RecordEvent("device_created")
	second.RecordEvent("device_created")

	assert.Equal(t, float64(2), testutil.ToFloat64(first.Events.WithLabelValues("device_created")))
}

func TestObserveInventory(t *testing.T) {
	c, _ := newTestCollector(t)

	inv := domain.NewInventory()
	inv.Devices = []domain.Device{{ID: 1}, {ID: 2}}
	inv.ConnectionTypes = []domain.ConnectionType{{ID: 1, Name: "Ethernet"}}
	inv.Connections = []domain.Connection{
		{ID: 1, SourceID: 1, DestinationID: 2},
		{ID: 2, SourceID: 9, DestinationID: 2},
	}

	c.ObserveInventory(inv)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.Devices))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.Connections))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ConnectionTypes))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.DanglingConnections))

	c.ObserveGraph(domain.NewGraph())
	assert.Equal(t, float64(0), testutil.ToFloat64(c.Devices))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordEvent("x")
	c.ObserveGraph(domain.NewGraph())
	c.ObserveInventory(domain.NewInventory())

	called := false
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c, _ := newTestCollector(t)
	c.RecordEvent("connection_created")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `devicemap_events_total{type="connection_created"} 1`))
}
