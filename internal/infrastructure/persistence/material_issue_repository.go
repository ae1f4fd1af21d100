package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMaterialIssueRepository implements logistics.MaterialIssueRepository using GORM
type GormMaterialIssueRepository struct {
	db *gorm.DB
}

// NewGormMaterialIssueRepository creates a new GormMaterialIssueRepository
func NewGormMaterialIssueRepository(db *gorm.DB) *GormMaterialIssueRepository {
	return &GormMaterialIssueRepository{db: db}
}

func preloadIssueItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

// Create inserts the issue and its lines
func (r *GormMaterialIssueRepository) Create(ctx context.Context, mi *logistics.MaterialIssue) error {
	model := models.MaterialIssueModelFromDomain(mi)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateError(err, "material issue")
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock updates the shipment details and lines guarded by the version
func (r *GormMaterialIssueRepository) SaveWithLock(ctx context.Context, mi *logistics.MaterialIssue) error {
	model := models.MaterialIssueModelFromDomain(mi)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.MaterialIssueModel{}, &mi.BaseAggregateRoot, "material issue", map[string]any{
			"issued_to":              model.IssuedTo,
			"transfer_no":            model.TransferNo,
			"vehicle_no":             model.VehicleNo,
			"exit_date_time":         model.ExitDateTime,
			"destination":            model.Destination,
			"material_inward_status": model.MaterialInwardStatus,
			"transfer_order_id":      model.TransferOrderID,
		}); err != nil {
			return err
		}
		ids := lineIDs(model.Items, func(l models.MaterialIssueItemModel) uuid.UUID { return l.ID })
		return replaceLines(tx, model.Items, "issue_id", mi.ID, ids)
	})
}

// FindByID finds an issue by its ID
func (r *GormMaterialIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*logistics.MaterialIssue, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds an issue by its number
func (r *GormMaterialIssueRepository) FindByNumber(ctx context.Context, issueNumber string) (*logistics.MaterialIssue, error) {
	return r.findOne(ctx, "issue_number = ?", strings.ToUpper(strings.TrimSpace(issueNumber)))
}

func (r *GormMaterialIssueRepository) findOne(ctx context.Context, cond string, arg any) (*logistics.MaterialIssue, error) {
	var model models.MaterialIssueModel
	if err := preloadIssueItems(r.db.WithContext(ctx)).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIssuer lists the issues a user raised
func (r *GormMaterialIssueRepository) FindByIssuer(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*logistics.MaterialIssue, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.MaterialIssueModel{}).Where("issued_by = ?", userID), filter)
}

// FindAll lists every issue
func (r *GormMaterialIssueRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*logistics.MaterialIssue, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialIssueModel{})
	if v, ok := filter.Filters["issued_to"]; ok {
		query = whereUUID(query, "issued_to", v)
	}
	if v, ok := filter.Filters["material_inward_status"]; ok {
		query = query.Where("material_inward_status = ?", v)
	}
	return r.list(query, filter)
}

func (r *GormMaterialIssueRepository) list(query *gorm.DB, filter shared.Filter) ([]*logistics.MaterialIssue, int64, error) {
	query = whereSearch(query, filter.Search, "issue_number", "transfer_no", "vehicle_no", "destination")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MaterialIssueModel
	if err := paginate(preloadIssueItems(query), filter, MaterialIssueSortFields, "created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*logistics.MaterialIssue, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormMaterialIssueRepository implements MaterialIssueRepository
var _ logistics.MaterialIssueRepository = (*GormMaterialIssueRepository)(nil)
