package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists suppliers
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Supplier, int64, error) {
	query := whereSearch(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter.Search,
		"supplier_name", "contact_person", "email", "city")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierModel
	if err := paginate(query, filter, SupplierSortFields, "supplier_name ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*partner.Supplier, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a supplier; the email is unique
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	return translateError(r.db.WithContext(ctx).Create(models.SupplierModelFromDomain(supplier)).Error, "supplier email")
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
