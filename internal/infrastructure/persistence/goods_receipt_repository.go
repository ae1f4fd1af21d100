package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGoodsReceiptRepository implements receiving.GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

func preloadReceiptItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no ASC")
	})
}

// Create inserts the GRN and its lines
func (r *GormGoodsReceiptRepository) Create(ctx context.Context, g *receiving.GoodsReceipt) error {
	model := models.GoodsReceiptModelFromDomain(g)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateError(err, "goods receipt")
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock rewrites the GRN header and lines guarded by the version
func (r *GormGoodsReceiptRepository) SaveWithLock(ctx context.Context, g *receiving.GoodsReceipt) error {
	model := models.GoodsReceiptModelFromDomain(g)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.GoodsReceiptModel{}, &g.BaseAggregateRoot, "goods receipt", map[string]any{
			"type":              model.Type,
			"sub_type":          model.SubType,
			"material_issue_no": model.MaterialIssueNo,
			"purchase_order_no": model.PurchaseOrderNo,
			"transfer_no":       model.TransferNo,
			"vehicle_no":        model.VehicleNo,
			"exit_date_time":    model.ExitDateTime,
			"challan_no":        model.ChallanNo,
			"challan_date":      model.ChallanDate,
			"invoice_no":        model.InvoiceNo,
			"invoice_date":      model.InvoiceDate,
			"supplier_id":       model.SupplierID,
			"supplier_name":     model.SupplierName,
			"received_by":       model.ReceivedBy,
			"receiver_id":       model.ReceiverID,
			"receiver_role":     model.ReceiverRole,
			"receiver_site":     model.ReceiverSite,
			"is_received":       model.IsReceived,
			"pdf_link":          model.PDFLink,
		}); err != nil {
			return err
		}
		ids := lineIDs(model.Items, func(l models.GoodsReceiptItemModel) uuid.UUID { return l.ID })
		return replaceLines(tx, model.Items, "receipt_id", g.ID, ids)
	})
}

// Delete removes a GRN and its lines
func (r *GormGoodsReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&models.GoodsReceiptItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GoodsReceiptModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a GRN by its ID
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.GoodsReceipt, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a GRN by its number
func (r *GormGoodsReceiptRepository) FindByNumber(ctx context.Context, grnNo string) (*receiving.GoodsReceipt, error) {
	return r.findOne(ctx, "grn_no = ?", strings.ToUpper(strings.TrimSpace(grnNo)))
}

func (r *GormGoodsReceiptRepository) findOne(ctx context.Context, cond string, arg any) (*receiving.GoodsReceipt, error) {
	var model models.GoodsReceiptModel
	if err := preloadReceiptItems(r.db.WithContext(ctx)).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists GRNs
func (r *GormGoodsReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*receiving.GoodsReceipt, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GoodsReceiptModel{})
	query = whereSearch(query, filter.Search, "grn_no", "material_issue_no", "purchase_order_no", "supplier_name", "invoice_no")
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}
	if v, ok := filter.Filters["receiver_site"]; ok {
		query = whereUUID(query, "receiver_site", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.GoodsReceiptModel
	if err := paginate(preloadReceiptItems(query), filter, GoodsReceiptSortFields, "created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*receiving.GoodsReceipt, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

type receivedRow struct {
	ItemCode string
	Qty      decimal.Decimal
}

// ReceivedByIssue sums receive quantities per upper-cased item code over
// every GRN raised against a material issue
func (r *GormGoodsReceiptRepository) ReceivedByIssue(ctx context.Context, materialIssueNo string) (map[string]decimal.Decimal, error) {
	var rows []receivedRow
	if err := r.db.WithContext(ctx).
		Table("goods_receipt_items gri").
		Select("UPPER(gri.item_code) AS item_code, SUM(gri.receive_qty) AS qty").
		Joins("JOIN goods_receipts gr ON gr.id = gri.receipt_id").
		Where("gr.material_issue_no = ?", strings.ToUpper(strings.TrimSpace(materialIssueNo))).
		Group("UPPER(gri.item_code)").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ItemCode] = row.Qty
	}
	return out, nil
}

// Ensure GormGoodsReceiptRepository implements GoodsReceiptRepository
var _ receiving.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
