package models

import (
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/catalog"
)

// ItemModel is the persistence model for the Item aggregate root
type ItemModel struct {
	AggregateModel
	ItemCode          string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Description       string          `gorm:"type:varchar(500);not null"`
	UOM               string          `gorm:"column:uom;type:varchar(20);not null"`
	Category          string          `gorm:"type:varchar(100);index"`
	SubCategory       string          `gorm:"type:varchar(100)"`
	GSTPercent        decimal.Decimal `gorm:"column:gst_percent;type:decimal(5,2);not null;default:0"`
	OpeningStock      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ItemCode:          m.ItemCode,
		Description:       m.Description,
		UOM:               m.UOM,
		Category:          m.Category,
		SubCategory:       m.SubCategory,
		GSTPercent:        m.GSTPercent,
		OpeningStock:      m.OpeningStock,
		LastPurchasePrice: m.LastPurchasePrice,
	}
}

// FromDomain populates the persistence model from a domain Item
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.ItemCode = i.ItemCode
	m.Description = i.Description
	m.UOM = i.UOM
	m.Category = i.Category
	m.SubCategory = i.SubCategory
	m.GSTPercent = i.GSTPercent
	m.OpeningStock = i.OpeningStock
	m.LastPurchasePrice = i.LastPurchasePrice
}

// ItemModelFromDomain creates a new persistence model from a domain Item
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}
