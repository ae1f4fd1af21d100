package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ReportItem is one item row of the composed inventory report
type ReportItem struct {
	ItemID      uuid.UUID
	ItemCode    string
	Description string
	Category    string
	SubCategory string
	UOM         string
	Center      decimal.Decimal // inHand at the central warehouse
}

// IssuedTotal sums material issue quantities of one item delivered to one site
type IssuedTotal struct {
	ItemID   uuid.UUID
	SiteID   uuid.UUID
	Quantity decimal.Decimal
}

// ReportSortFields are the sort keys the report accepts
var ReportSortFields = []string{"itemCode", "description", "category", "center"}

// ReportRepository serves the read side of the inventory report
type ReportRepository interface {
	// ItemPage lists items with their central inHand. Search matches item
	// code, description, category, sub-category and uom.
	ItemPage(ctx context.Context, filter shared.Filter) ([]ReportItem, int64, error)

	// IssuedTotals sums issued quantities per item and destination site
	IssuedTotals(ctx context.Context, itemIDs []uuid.UUID) ([]IssuedTotal, error)
}
