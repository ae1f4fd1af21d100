package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("")
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/v1/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/items/1", "/api/v1/items/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_CountsEvents(t *testing.T) {
	m := NewMetrics("sitestock")
	ctx := context.Background()

	site := uuid.New()
	record := &inventory.InventoryRecord{ItemID: uuid.New(), Location: inventory.SiteLocation(site)}
	moved := inventory.NewStockMovedEvent(record,
		inventory.Movement{Kind: inventory.MovementIssue, Quantity: decimal.NewFromInt(-4)},
		inventory.Source{Type: "MI", No: "MI-0001"})
	require.NoError(t, m.Handle(ctx, moved))

	doc := shared.NewBaseDomainEvent("GoodsReceiptCreated", "GoodsReceipt", uuid.New())
	require.NoError(t, m.Handle(ctx, &doc))

	assert.Empty(t, m.EventTypes())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("issue", "site")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.movedQty.WithLabelValues("issue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("GoodsReceiptCreated")))
}

func TestMetrics_ReconcileAndExposition(t *testing.T) {
	m := NewMetrics("sitestock")
	m.ObserveReconcile(3, nil)
	m.ObserveReconcile(0, errors.New("db down"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.repaired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweeps.WithLabelValues("error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "sitestock_reconcile_repaired_records_total 3"))
	assert.Contains(t, body, "go_goroutines")
}
