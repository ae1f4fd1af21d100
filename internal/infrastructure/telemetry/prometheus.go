package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Metrics is the Prometheus registry of the service. It also subscribes to
// the event bus to count stock movements and document changes.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	movements    *prometheus.CounterVec
	movedQty     *prometheus.CounterVec
	documents    *prometheus.CounterVec
	sweeps       *prometheus.CounterVec
	repaired     prometheus.Counter
}

// NewMetrics creates a registry holding the Go runtime, process and
// service collectors
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sitestock"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "movements_total",
			Help: "Stock movements posted to inventory records.",
		}, []string{"kind", "scope"}),
		movedQty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "moved_quantity_total",
			Help: "Absolute quantity moved, by movement kind.",
		}, []string{"kind"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "documents", Name: "events_total",
			Help: "Document lifecycle events by type.",
		}, []string{"event_type"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "runs_total",
			Help: "Pending-quantity reconciliation sweeps by result.",
		}, []string{"result"}),
		repaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "reconcile", Name: "repaired_records_total",
			Help: "Inventory records whose pending quantity was corrected.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.movements, m.movedQty, m.documents,
		m.sweeps, m.repaired,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDB adds connection pool statistics for db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware counts requests by matched route. Unmatched paths are
// grouped so scanners cannot blow up label cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveReconcile records one reconciliation sweep
func (m *Metrics) ObserveReconcile(repaired int, err error) {
	if err != nil {
		m.sweeps.WithLabelValues("error").Inc()
		return
	}
	m.sweeps.WithLabelValues("ok").Inc()
	m.repaired.Add(float64(repaired))
}

// EventTypes is empty: every event is counted
func (m *Metrics) EventTypes() []string {
	return nil
}

// Handle counts ev
func (m *Metrics) Handle(_ context.Context, ev shared.DomainEvent) error {
	moved, ok := ev.(*inventory.StockMovedEvent)
	if !ok {
		m.documents.WithLabelValues(ev.EventType()).Inc()
		return nil
	}
	m.movements.WithLabelValues(string(moved.Kind), string(moved.Scope)).Inc()
	m.movedQty.WithLabelValues(string(moved.Kind)).Add(moved.Quantity.Abs().InexactFloat64())
	return nil
}

var _ shared.EventHandler = (*Metrics)(nil)
