package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransferOrderRepository implements logistics.TransferOrderRepository using GORM
type GormTransferOrderRepository struct {
	db *gorm.DB
}

// NewGormTransferOrderRepository creates a new GormTransferOrderRepository
func NewGormTransferOrderRepository(db *gorm.DB) *GormTransferOrderRepository {
	return &GormTransferOrderRepository{db: db}
}

// Create inserts a transfer order
func (r *GormTransferOrderRepository) Create(ctx context.Context, to *logistics.TransferOrder) error {
	if err := r.db.WithContext(ctx).Create(models.TransferOrderModelFromDomain(to)).Error; err != nil {
		return translateError(err, "transfer order")
	}
	return nil
}

// Save updates a transfer order guarded by its version
func (r *GormTransferOrderRepository) Save(ctx context.Context, to *logistics.TransferOrder) error {
	return updateVersioned(r.db.WithContext(ctx), &models.TransferOrderModel{}, &to.BaseAggregateRoot, "transfer order", map[string]any{
		"from_site_id":   to.From,
		"to_site_id":     to.To,
		"vehicle_number": to.VehicleNumber,
		"exit_date_time": to.ExitDateTime,
		"status":         string(to.Status),
		"approved_at":    to.ApprovedAt,
	})
}

// Delete removes a transfer order
func (r *GormTransferOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransferOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a transfer order by its ID
func (r *GormTransferOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*logistics.TransferOrder, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByReference finds the transfer order raised for a material issue or purchase order number
func (r *GormTransferOrderRepository) FindByReference(ctx context.Context, referenceNo string) (*logistics.TransferOrder, error) {
	return r.findOne(ctx, "reference_no = ?", referenceNo)
}

func (r *GormTransferOrderRepository) findOne(ctx context.Context, cond string, arg any) (*logistics.TransferOrder, error) {
	var model models.TransferOrderModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Order("created_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists transfer orders
func (r *GormTransferOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*logistics.TransferOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransferOrderModel{})
	query = whereSearch(query, filter.Search, "transfer_no", "reference_no", "vehicle_number")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransferOrderModel
	if err := paginate(query, filter, TransferOrderSortFields, "created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*logistics.TransferOrder, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormTransferOrderRepository implements TransferOrderRepository
var _ logistics.TransferOrderRepository = (*GormTransferOrderRepository)(nil)
