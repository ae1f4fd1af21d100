package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
)

// InventoryRecordResponse represents the counters of one item at one location
type InventoryRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"itemId"`
	Scope           string          `json:"scope"`
	SiteID          *uuid.UUID      `json:"siteId,omitempty"`
	Open            decimal.Decimal `json:"open"`
	InHand          decimal.Decimal `json:"inHand"`
	RequestQuantity decimal.Decimal `json:"requestQuantity"`
	IssuedQuantity  decimal.Decimal `json:"issuedQuantity"`
	MIP             decimal.Decimal `json:"mip"`
	Pending         decimal.Decimal `json:"pending"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// LedgerEntryResponse represents one audit trail entry
type LedgerEntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"itemId"`
	Scope      string          `json:"scope"`
	SiteID     *uuid.UUID      `json:"siteId,omitempty"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	SourceType string          `json:"sourceType"`
	SourceID   uuid.UUID       `json:"sourceId"`
	SourceNo   string          `json:"sourceNo"`
	ActorID    uuid.UUID       `json:"actorId"`
	CreatedAt  time.Time       `json:"createdAt"`
	ReversedAt *time.Time      `json:"reversedAt,omitempty"`
	ReversalOf *uuid.UUID      `json:"reversalOf,omitempty"`
}

// AddOpeningStockRequest books opening stock; a nil site is the central warehouse
type AddOpeningStockRequest struct {
	ItemID   uuid.UUID       `json:"itemId" binding:"required"`
	SiteID   *uuid.UUID      `json:"siteId"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// RecordListFilter represents filter options for inventory record listings
type RecordListFilter struct {
	Scope    string `form:"scope" binding:"omitempty,oneof=global central site"`
	SiteID   string `form:"siteId" binding:"omitempty,uuid"`
	ItemID   string `form:"itemId" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// HistoryFilter pages through the ledger history of an item
type HistoryFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// ReportFilter represents the query of the composed inventory report
type ReportFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy" binding:"omitempty,oneof=itemCode description category center"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ReportSiteColumn describes one site column of the report
type ReportSiteColumn struct {
	SiteID   uuid.UUID `json:"siteId"`
	SiteName string    `json:"siteName"`
}

// ReportSiteCell holds one site's quantities for an item
type ReportSiteCell struct {
	SiteID uuid.UUID       `json:"siteId"`
	InHand decimal.Decimal `json:"inHand"`
	Issued decimal.Decimal `json:"issued"`
}

// ReportRow is one item of the composed inventory report
type ReportRow struct {
	ItemID      uuid.UUID        `json:"itemId"`
	ItemCode    string           `json:"itemCode"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	SubCategory string           `json:"subCategory"`
	UOM         string           `json:"uom"`
	Center      decimal.Decimal  `json:"center"`
	Sites       []ReportSiteCell `json:"sites"`
	TotalInHand decimal.Decimal  `json:"totalInHand"`
	TotalIssued decimal.Decimal  `json:"totalIssued"`
}

// InventoryReportResponse is one page of the composed inventory report
type InventoryReportResponse struct {
	Sites    []ReportSiteColumn `json:"sites"`
	Rows     []ReportRow        `json:"rows"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ToRecordResponse converts a domain record to a response
func ToRecordResponse(r *inventory.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:              r.ID,
		ItemID:          r.ItemID,
		Scope:           string(r.Location.Scope),
		SiteID:          r.Location.SitePtr(),
		Open:            r.Open,
		InHand:          r.InHand,
		RequestQuantity: r.RequestQuantity,
		IssuedQuantity:  r.IssuedQuantity,
		MIP:             r.MIP,
		Pending:         r.Pending,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ToRecordResponses converts domain records to responses
func ToRecordResponses(records []*inventory.InventoryRecord) []InventoryRecordResponse {
	out := make([]InventoryRecordResponse, len(records))
	for i, r := range records {
		out[i] = ToRecordResponse(r)
	}
	return out
}

// ToLedgerEntryResponse converts a ledger entry to a response
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:         e.ID,
		ItemID:     e.ItemID,
		Scope:      string(e.Location.Scope),
		SiteID:     e.Location.SitePtr(),
		Kind:       string(e.Kind),
		Quantity:   e.Quantity,
		SourceType: string(e.SourceType),
		SourceID:   e.SourceID,
		SourceNo:   e.SourceNo,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
		ReversedAt: e.ReversedAt,
		ReversalOf: e.ReversalOf,
	}
}
