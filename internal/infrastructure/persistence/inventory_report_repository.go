package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInventoryReportRepository implements inventory.ReportRepository using GORM
type GormInventoryReportRepository struct {
	db *gorm.DB
}

// NewGormInventoryReportRepository creates a new GormInventoryReportRepository
func NewGormInventoryReportRepository(db *gorm.DB) *GormInventoryReportRepository {
	return &GormInventoryReportRepository{db: db}
}

type reportItemRow struct {
	ItemID      uuid.UUID
	ItemCode    string
	Description string
	Category    string
	SubCategory string
	UOM         string `gorm:"column:uom"`
	Center      decimal.Decimal
}

// ItemPage lists items with the inHand of the central warehouse record
func (r *GormInventoryReportRepository) ItemPage(ctx context.Context, filter shared.Filter) ([]inventory.ReportItem, int64, error) {
	base := whereSearch(r.db.WithContext(ctx).Table("items"), filter.Search,
		"items.item_code", "items.description", "items.category", "items.sub_category", "items.uom").
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.
		Select(`items.id AS item_id, items.item_code, items.description, items.category,
			items.sub_category, items.uom, COALESCE(ir.in_hand, 0) AS center`).
		Joins("LEFT JOIN inventory_records ir ON ir.item_id = items.id AND ir.scope = ? AND ir.site_id = ?",
			string(inventory.ScopeCentral), uuid.Nil)

	var rows []reportItemRow
	if err := paginate(query, filter, ReportSortFields, "items.item_code ASC").
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]inventory.ReportItem, len(rows))
	for i, row := range rows {
		out[i] = inventory.ReportItem{
			ItemID:      row.ItemID,
			ItemCode:    row.ItemCode,
			Description: row.Description,
			Category:    row.Category,
			SubCategory: row.SubCategory,
			UOM:         row.UOM,
			Center:      row.Center,
		}
	}
	return out, total, nil
}

type issuedTotalRow struct {
	ItemID   uuid.UUID
	SiteID   uuid.UUID
	Quantity decimal.Decimal
}

// IssuedTotals sums issued quantities per item and destination site
func (r *GormInventoryReportRepository) IssuedTotals(ctx context.Context, itemIDs []uuid.UUID) ([]inventory.IssuedTotal, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []issuedTotalRow
	if err := r.db.WithContext(ctx).
		Table("material_issue_items mii").
		Select("mii.item_id AS item_id, mi.issued_to AS site_id, SUM(mii.issue_qty) AS quantity").
		Joins("JOIN material_issues mi ON mi.id = mii.issue_id").
		Where("mii.item_id IN ?", itemIDs).
		Group("mii.item_id, mi.issued_to").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]inventory.IssuedTotal, len(rows))
	for i, row := range rows {
		out[i] = inventory.IssuedTotal{ItemID: row.ItemID, SiteID: row.SiteID, Quantity: row.Quantity}
	}
	return out, nil
}

// Ensure GormInventoryReportRepository implements ReportRepository
var _ inventory.ReportRepository = (*GormInventoryReportRepository)(nil)
