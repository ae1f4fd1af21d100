package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/sitestock/backend/internal/application/inventory"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ReportFormat describes the document produced by report export
type ReportFormat struct {
	ContentType string
	Extension   string
}

// ReportArchiver stores an exported report and returns a download link
type ReportArchiver interface {
	Archive(ctx context.Context, name string, data []byte, contentType string) (string, time.Time, error)
}

// InventoryHandler serves stock records, ledger history and the inventory
// report
type InventoryHandler struct {
	BaseHandler
	ledger   *inventoryapp.LedgerService
	reports  *inventoryapp.ReportService
	format   ReportFormat
	archiver ReportArchiver
	now      func() time.Time
}

// NewInventoryHandler creates a new InventoryHandler. A nil archiver makes
// export stream the file in the response.
func NewInventoryHandler(ledger *inventoryapp.LedgerService, reports *inventoryapp.ReportService, format ReportFormat, archiver ReportArchiver) *InventoryHandler {
	return &InventoryHandler{
		ledger:   ledger,
		reports:  reports,
		format:   format,
		archiver: archiver,
		now:      time.Now,
	}
}

// AddOpeningStock books the first stock of an item at a location
func (h *InventoryHandler) AddOpeningStock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.AddOpeningStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	record, err := h.ledger.AddOpeningStock(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Opening stock added", record)
}

type recordQuery struct {
	Scope  string `form:"scope" binding:"required,oneof=global central site"`
	SiteID string `form:"siteId" binding:"omitempty,uuid"`
}

// GetRecord returns the record of an item at one location. A location that
// never held the item reads as zero.
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	itemID, ok := h.pathID(c)
	if !ok {
		return
	}
	var q recordQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	var loc inventory.Location
	switch inventory.Scope(q.Scope) {
	case inventory.ScopeGlobal:
		loc = inventory.GlobalLocation()
	case inventory.ScopeCentral:
		loc = inventory.CentralLocation()
	default:
		if q.SiteID == "" {
			h.HandleError(c, shared.NewValidationError("siteId", "siteId is required for site scope"))
			return
		}
		loc = inventory.SiteLocation(uuid.MustParse(q.SiteID))
	}
	record, err := h.ledger.GetRecord(c.Request.Context(), itemID, loc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Record retrieved", record)
}

// ItemBalances returns every record held for an item
func (h *InventoryHandler) ItemBalances(c *gin.Context) {
	itemID, ok := h.pathID(c)
	if !ok {
		return
	}
	records, err := h.ledger.ItemBalances(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Balances retrieved", records)
}

// ListRecords returns a page of inventory records
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	var filter inventoryapp.RecordListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	records, total, err := h.ledger.ListRecords(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "Records retrieved", records, total, filter.Page, filter.PageSize)
}

// History returns the ledger entries of an item, newest first
func (h *InventoryHandler) History(c *gin.Context) {
	itemID, ok := h.pathID(c)
	if !ok {
		return
	}
	var filter inventoryapp.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	entries, total, err := h.ledger.History(c.Request.Context(), itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "History retrieved", entries, total, filter.Page, filter.PageSize)
}

// Report returns one page of the item by site inventory matrix
func (h *InventoryHandler) Report(c *gin.Context) {
	var filter inventoryapp.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	report, err := h.reports.Build(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Inventory report", report)
}

type exportQuery struct {
	inventoryapp.ReportFilter
	Archive bool `form:"archive"`
}

// Export renders every report row. With archive=true and storage configured
// the file is uploaded and a signed link returned instead.
func (h *InventoryHandler) Export(c *gin.Context) {
	var q exportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.Export(c.Request.Context(), q.ReportFilter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	name := fmt.Sprintf("inventory-%s%s", h.now().UTC().Format("20060102-150405"), h.format.Extension)

	if q.Archive && h.archiver != nil {
		url, expires, err := h.archiver.Archive(c.Request.Context(), name, buf.Bytes(), h.format.ContentType)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, "Report archived", gin.H{"name": name, "url": url, "expiresAt": expires})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, h.format.ContentType, buf.Bytes())
}
