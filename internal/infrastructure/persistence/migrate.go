package persistence

import (
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// Models returns every persistence model in dependency order
func Models() []any {
	return []any{
		&models.UserModel{},
		&models.SiteModel{},
		&models.SupplierModel{},
		&models.ItemModel{},
		&models.DocumentSequenceModel{},
		&models.InventoryRecordModel{},
		&models.LedgerEntryModel{},
		&models.MaterialRequestModel{},
		&models.MaterialRequestItemModel{},
		&models.MaterialIssueModel{},
		&models.MaterialIssueItemModel{},
		&models.TransferOrderModel{},
		&models.PurchaseOrderModel{},
		&models.PurchaseOrderItemModel{},
		&models.GoodsReceiptModel{},
		&models.GoodsReceiptItemModel{},
	}
}

// AutoMigrate creates or updates the tables of every model. Production
// deployments use the SQL migrations; this keeps sqlite tests and local
// runs in step with the models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
