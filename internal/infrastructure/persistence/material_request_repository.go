package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMaterialRequestRepository implements requisition.Repository using GORM
type GormMaterialRequestRepository struct {
	db *gorm.DB
}

// NewGormMaterialRequestRepository creates a new GormMaterialRequestRepository
func NewGormMaterialRequestRepository(db *gorm.DB) *GormMaterialRequestRepository {
	return &GormMaterialRequestRepository{db: db}
}

func preloadRequestItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

// Create inserts the request and its lines
func (r *GormMaterialRequestRepository) Create(ctx context.Context, mr *requisition.MaterialRequest) error {
	model := models.MaterialRequestModelFromDomain(mr)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateError(err, "material request")
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock updates the request guarded by its version
func (r *GormMaterialRequestRepository) SaveWithLock(ctx context.Context, mr *requisition.MaterialRequest) error {
	model := models.MaterialRequestModelFromDomain(mr)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.MaterialRequestModel{}, &mr.BaseAggregateRoot, "material request", map[string]any{
			"requested_to":  mr.RequestedTo,
			"approver_role": string(mr.ApproverRole),
			"site_id":       mr.SiteID,
			"status":        string(mr.Status),
			"approved_by":   mr.ApprovedBy,
			"approved_at":   mr.ApprovedAt,
		}); err != nil {
			return err
		}
		ids := lineIDs(model.Items, func(l models.MaterialRequestItemModel) uuid.UUID { return l.ID })
		return replaceLines(tx, model.Items, "request_id", mr.ID, ids)
	})
}

// Delete removes a request and its lines
func (r *GormMaterialRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&models.MaterialRequestItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.MaterialRequestModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a request by its ID
func (r *GormMaterialRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.MaterialRequest, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a request by its number
func (r *GormMaterialRequestRepository) FindByNumber(ctx context.Context, requestNo string) (*requisition.MaterialRequest, error) {
	return r.findOne(ctx, "request_no = ?", strings.ToUpper(strings.TrimSpace(requestNo)))
}

func (r *GormMaterialRequestRepository) findOne(ctx context.Context, cond string, arg any) (*requisition.MaterialRequest, error) {
	var model models.MaterialRequestModel
	if err := preloadRequestItems(r.db.WithContext(ctx)).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForReview lists requests a reviewer may act on
func (r *GormMaterialRequestRepository) FindForReview(ctx context.Context, q requisition.ReviewQuery, filter shared.Filter) ([]*requisition.MaterialRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialRequestModel{}).
		Where("requested_by <> ?", q.ExcludeAuthor)
	if len(q.RequesterRoles) > 0 {
		roles := make([]string, len(q.RequesterRoles))
		for i, role := range q.RequesterRoles {
			roles[i] = string(role)
		}
		query = query.Where("requester_role IN ?", roles)
	}
	if q.SiteID != nil {
		query = query.Where("site_id = ?", *q.SiteID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", string(q.Status))
	}
	return r.list(query, filter)
}

// FindByRequester lists the requests a user raised
func (r *GormMaterialRequestRepository) FindByRequester(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*requisition.MaterialRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialRequestModel{}).Where("requested_by = ?", userID)
	return r.list(query, filter)
}

// FindApprovedWithoutPO lists approved requests no purchase order references yet
func (r *GormMaterialRequestRepository) FindApprovedWithoutPO(ctx context.Context, filter shared.Filter) ([]*requisition.MaterialRequest, int64, error) {
	ordered := r.db.Model(&models.PurchaseOrderModel{}).
		Select("material_request_no").
		Where("material_request_no <> ''")
	query := r.db.WithContext(ctx).Model(&models.MaterialRequestModel{}).
		Where("status = ?", string(requisition.StatusApproved)).
		Where("request_no NOT IN (?)", ordered)
	return r.list(query, filter)
}

func (r *GormMaterialRequestRepository) list(query *gorm.DB, filter shared.Filter) ([]*requisition.MaterialRequest, int64, error) {
	query = whereSearch(query, filter.Search, "request_no")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MaterialRequestModel
	if err := paginate(preloadRequestItems(query), filter, MaterialRequestSortFields, "created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*requisition.MaterialRequest, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

type issueStatusRow struct {
	ItemID       uuid.UUID
	ItemCode     string
	Description  string
	UOM          string `gorm:"column:uom"`
	RequestedQty decimal.Decimal
	IssuedQty    decimal.Decimal
}

// IssueStatus sums approved request lines per item for a site, or the
// central warehouse when siteID is nil, next to the issued quantity of the
// matching inventory record
func (r *GormMaterialRequestRepository) IssueStatus(ctx context.Context, siteID *uuid.UUID) ([]requisition.IssueStatusLine, error) {
	loc := inventory.LocationFor(siteID)

	query := r.db.WithContext(ctx).
		Table("material_request_items mri").
		Select(`i.id AS item_id, i.item_code, i.description, i.uom,
			SUM(mri.requested_qty) AS requested_qty,
			COALESCE(MAX(ir.issued_quantity), 0) AS issued_qty`).
		Joins("JOIN material_requests mr ON mr.id = mri.request_id").
		Joins("JOIN items i ON i.id = mri.item_id").
		Joins("LEFT JOIN inventory_records ir ON ir.item_id = mri.item_id AND ir.scope = ? AND ir.site_id = ?",
			string(loc.Scope), loc.SiteID).
		Where("mr.status = ?", string(requisition.StatusApproved))
	if siteID == nil {
		query = query.Where("mr.site_id IS NULL")
	} else {
		query = query.Where("mr.site_id = ?", *siteID)
	}

	var rows []issueStatusRow
	if err := query.
		Group("i.id, i.item_code, i.description, i.uom").
		Order("i.item_code ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]requisition.IssueStatusLine, len(rows))
	for i, row := range rows {
		pending := row.RequestedQty.Sub(row.IssuedQty)
		if pending.IsNegative() {
			pending = decimal.Zero
		}
		out[i] = requisition.IssueStatusLine{
			ItemID:       row.ItemID,
			ItemCode:     row.ItemCode,
			Description:  row.Description,
			UOM:          row.UOM,
			RequestedQty: row.RequestedQty,
			IssuedQty:    row.IssuedQty,
			PendingQty:   pending,
		}
	}
	return out, nil
}

// Ensure GormMaterialRequestRepository implements Repository
var _ requisition.Repository = (*GormMaterialRequestRepository)(nil)
