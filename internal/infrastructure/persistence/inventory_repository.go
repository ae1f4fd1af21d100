package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRecordRepository implements inventory.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// Apply posts a movement with one conditional UPDATE so concurrent postings
// to the same record never lose an update and the inHand guard is checked
// against the committed value.
func (r *GormRecordRepository) Apply(ctx context.Context, itemID uuid.UUID, loc inventory.Location, m inventory.Movement) (*inventory.InventoryRecord, error) {
	if err := loc.Validate(); err != nil {
		return nil, shared.NewValidationError("location", err.Error())
	}
	db := r.db.WithContext(ctx)
	now := time.Now()

	seed := models.InventoryRecordModelFromDomain(inventory.NewInventoryRecord(itemID, loc))
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "scope"}, {Name: "site_id"}},
		DoNothing: true,
	}).Create(seed).Error; err != nil {
		return nil, fmt.Errorf("seed inventory record: %w", err)
	}

	stmt, args := applyStatement(itemID, loc, m, now)
	res := db.Exec(stmt, args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if m.RequireInHand {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock at %s to move %s", loc, m.Quantity))
		}
		return nil, fmt.Errorf("inventory record of item %s at %s not found after seeding", itemID, loc)
	}
	return r.FindByItemAndLocation(ctx, itemID, loc)
}

// applyStatement renders the movement as an UPDATE on inventory_records. The
// SET expressions read the pre-update row, so the recomputed columns use the
// old value plus the delta.
func applyStatement(itemID uuid.UUID, loc inventory.Location, m inventory.Movement, now time.Time) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, 16)

	b.WriteString("UPDATE inventory_records SET ")
	b.WriteString("open_qty = open_qty + ?, ")
	b.WriteString("request_quantity = request_quantity + ?, ")
	b.WriteString("issued_quantity = issued_quantity + ?, ")
	b.WriteString("mip = mip + ?, ")
	args = append(args, m.OpenDelta, m.RequestDelta, m.IssuedDelta, m.MIPDelta)

	if m.RecomputeInHand {
		b.WriteString("in_hand = " + clampZero("(open_qty + ?) - (issued_quantity + ?)"))
		args = append(args, m.OpenDelta, m.IssuedDelta, m.OpenDelta, m.IssuedDelta)
	} else {
		b.WriteString("in_hand = " + clampZero("in_hand + ?"))
		args = append(args, m.InHandDelta, m.InHandDelta)
	}
	if m.RecomputePending {
		b.WriteString(", pending = " + clampZero("(request_quantity + ?) - (issued_quantity + ?)"))
		args = append(args, m.RequestDelta, m.IssuedDelta, m.RequestDelta, m.IssuedDelta)
	}
	b.WriteString(", updated_at = ?")
	args = append(args, now)

	b.WriteString(" WHERE item_id = ? AND scope = ? AND site_id = ?")
	args = append(args, itemID, string(loc.Scope), loc.SiteID)
	if m.RequireInHand {
		b.WriteString(" AND in_hand >= ?")
		args = append(args, m.Quantity)
	}
	return b.String(), args
}

func clampZero(expr string) string {
	return "CASE WHEN " + expr + " < 0 THEN 0 ELSE " + expr + " END"
}

// FindByItemAndLocation returns the record or ErrNotFound
func (r *GormRecordRepository) FindByItemAndLocation(ctx context.Context, itemID uuid.UUID, loc inventory.Location) (*inventory.InventoryRecord, error) {
	var model models.InventoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND scope = ? AND site_id = ?", itemID, string(loc.Scope), loc.SiteID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItems returns the records of several items at one location keyed by item
func (r *GormRecordRepository) FindByItems(ctx context.Context, loc inventory.Location, itemIDs []uuid.UUID) (map[uuid.UUID]*inventory.InventoryRecord, error) {
	out := make(map[uuid.UUID]*inventory.InventoryRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []models.InventoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("scope = ? AND site_id = ? AND item_id IN ?", string(loc.Scope), loc.SiteID, itemIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ItemID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByItem returns every record of an item
func (r *GormRecordRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]*inventory.InventoryRecord, error) {
	var rows []models.InventoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("scope ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return recordsToDomain(rows), nil
}

// FindByItemIDs returns every record of the given items
func (r *GormRecordRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*inventory.InventoryRecord, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []models.InventoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return recordsToDomain(rows), nil
}

// FindAll lists records
func (r *GormRecordRepository) FindAll(ctx context.Context, filter inventory.RecordFilter) ([]*inventory.InventoryRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryRecordModel{})
	if filter.Scope != "" {
		query = query.Where("scope = ?", string(filter.Scope))
	}
	if filter.SiteID != nil {
		query = query.Where("site_id = ?", *filter.SiteID)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryRecordModel
	if err := paginate(query, filter.Filter, InventoryRecordSortFields, "updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return recordsToDomain(rows), total, nil
}

// ExistsWithOpening reports whether opening stock was already booked at the location
func (r *GormRecordRepository) ExistsWithOpening(ctx context.Context, itemID uuid.UUID, loc inventory.Location) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryRecordModel{}).
		Where("item_id = ? AND scope = ? AND site_id = ? AND open_qty > 0", itemID, string(loc.Scope), loc.SiteID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RepairPending rewrites pending where it drifted from requestQuantity and issuedQuantity
func (r *GormRecordRepository) RepairPending(ctx context.Context) (int64, error) {
	expected := clampZero("request_quantity - issued_quantity")
	res := r.db.WithContext(ctx).Exec(
		"UPDATE inventory_records SET pending = "+expected+", updated_at = ? WHERE pending <> "+expected,
		time.Now(),
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func recordsToDomain(rows []models.InventoryRecordModel) []*inventory.InventoryRecord {
	out := make([]*inventory.InventoryRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormRecordRepository implements RecordRepository
var _ inventory.RecordRepository = (*GormRecordRepository)(nil)
