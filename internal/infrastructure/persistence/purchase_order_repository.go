package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a purchase order by its order number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, orderNo string) (*procurement.PurchaseOrder, error) {
	return r.findOne(ctx, "purchase_order_no = ?", strings.ToUpper(strings.TrimSpace(orderNo)))
}

func (r *GormPurchaseOrderRepository) findOne(ctx context.Context, cond string, arg any) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := preloadOrderItems(r.db.WithContext(ctx)).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds purchase orders by their IDs; missing IDs are skipped
func (r *GormPurchaseOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*procurement.PurchaseOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.PurchaseOrderModel
	if err := preloadOrderItems(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// FindAll finds purchase orders with filtering
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})
	query = whereSearch(query, filter.Search, "purchase_order_no", "material_request_no")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if v, ok := filter.Filters["ship_to"]; ok {
		query = whereUUID(query, "ship_to", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PurchaseOrderModel
	if err := paginate(preloadOrderItems(query), filter, PurchaseOrderSortFields, "created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return ordersToDomain(rows), total, nil
}

// Create creates a new purchase order with its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateError(err, "purchase order")
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock saves the order and its lines, failing with a conflict when
// another writer bumped the version first
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.PurchaseOrderModel{}, &po.BaseAggregateRoot, "purchase order", map[string]any{
			"bill_to":             model.BillTo,
			"ship_to":             model.ShipTo,
			"delivery_date":       model.DeliveryDate,
			"total_amount":        model.TotalAmount,
			"igst":                model.IGST,
			"sgst":                model.SGST,
			"cgst":                model.CGST,
			"grand_total_inc_gst": model.GrandTotalIncGST,
			"status":              model.Status,
			"approved_by":         model.ApprovedBy,
			"approved_at":         model.ApprovedAt,
			"closed_at":           model.ClosedAt,
			"pdf_link":            model.PDFLink,
		}); err != nil {
			return err
		}
		ids := lineIDs(model.Items, func(l models.PurchaseOrderItemModel) uuid.UUID { return l.ID })
		return replaceLines(tx, model.Items, "order_id", po.ID, ids)
	})
}

// Delete deletes a purchase order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PurchaseOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ItemsStatus lists order lines together with the order that carries them.
// Orders are matched to their originating request: a site lists orders for
// that site's requests, central lists orders raised for warehouse requests.
func (r *GormPurchaseOrderRepository) ItemsStatus(ctx context.Context, siteID *uuid.UUID, centralOnly bool) ([]procurement.ItemStatusLine, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Select("purchase_orders.id")
	switch {
	case siteID != nil:
		query = query.Joins("JOIN material_requests mr ON mr.request_no = purchase_orders.material_request_no").
			Where("mr.site_id = ?", *siteID)
	case centralOnly:
		query = query.Joins("JOIN material_requests mr ON mr.request_no = purchase_orders.material_request_no").
			Where("mr.site_id IS NULL")
	}

	var rows []models.PurchaseOrderModel
	if err := preloadOrderItems(r.db.WithContext(ctx)).
		Where("id IN (?)", query).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var out []procurement.ItemStatusLine
	for i := range rows {
		for j := range rows[i].Items {
			out = append(out, procurement.ItemStatusLine{
				PurchaseOrderNo: rows[i].PurchaseOrderNo,
				ShipTo:          rows[i].ShipTo,
				Item:            rows[i].Items[j].ToDomain(),
			})
		}
	}
	return out, nil
}

func ordersToDomain(rows []models.PurchaseOrderModel) []*procurement.PurchaseOrder {
	out := make([]*procurement.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
