package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an item by its code; codes are stored upper-cased
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("item_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several items keyed by ID
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	out := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAll returns items matching the filter
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Item, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ItemModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ItemModel
	if err := paginate(query, filter, ItemSortFields, "item_code ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]*catalog.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, total, nil
}

// Create inserts items in one statement; a duplicate code fails the batch
func (r *GormItemRepository) Create(ctx context.Context, items ...*catalog.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.ItemModel, len(items))
	for i, it := range items {
		rows[i] = models.ItemModelFromDomain(it)
	}
	return translateError(r.db.WithContext(ctx).Create(rows).Error, "item code")
}

// Save updates an existing item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateVersioned(tx, &models.ItemModel{}, &item.BaseAggregateRoot, "item", map[string]any{
			"description":         item.Description,
			"uom":                 item.UOM,
			"category":            item.Category,
			"sub_category":        item.SubCategory,
			"gst_percent":         item.GSTPercent,
			"opening_stock":       item.OpeningStock,
			"last_purchase_price": item.LastPurchasePrice,
		})
	})
}

func (r *GormItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereSearch(query, filter.Search, "item_code", "description", "category", "sub_category")
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "sub_category":
			query = query.Where("sub_category = ?", value)
		}
	}
	return query
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
