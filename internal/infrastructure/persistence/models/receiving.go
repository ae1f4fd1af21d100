package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/receiving"
)

// GoodsReceiptModel is the persistence model for the GoodsReceipt aggregate root
type GoodsReceiptModel struct {
	AggregateModel
	GRNNo           string     `gorm:"column:grn_no;type:varchar(32);not null;uniqueIndex"`
	Type            string     `gorm:"type:varchar(20);not null;index"`
	SubType         string     `gorm:"type:varchar(20)"`
	MaterialIssueNo string     `gorm:"type:varchar(32);index"`
	PurchaseOrderNo string     `gorm:"type:varchar(32);index"`
	TransferNo      string     `gorm:"type:varchar(32)"`
	VehicleNo       string     `gorm:"type:varchar(50)"`
	ExitDateTime    *time.Time `gorm:"column:exit_date_time"`
	ChallanNo       string     `gorm:"type:varchar(50)"`
	ChallanDate     *time.Time `gorm:"type:date"`
	InvoiceNo       string     `gorm:"type:varchar(50)"`
	InvoiceDate     *time.Time `gorm:"type:date"`
	SupplierID      *uuid.UUID `gorm:"type:uuid;index"`
	SupplierName    string     `gorm:"type:varchar(200)"`
	ReceivedBy      string     `gorm:"type:varchar(200)"`
	ReceiverID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceiverRole    string     `gorm:"type:varchar(20);not null"`
	ReceiverSite    *uuid.UUID `gorm:"type:uuid;index"`
	IsReceived      bool       `gorm:"not null;default:false"`
	PDFLink         string     `gorm:"column:pdf_link;type:varchar(500)"`
	Items           []GoodsReceiptItemModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (GoodsReceiptModel) TableName() string {
	return "goods_receipts"
}

// ToDomain converts the persistence model to a domain GoodsReceipt
func (m *GoodsReceiptModel) ToDomain() *receiving.GoodsReceipt {
	g := &receiving.GoodsReceipt{
		BaseAggregateRoot: m.ToAggregateRoot(),
		GRNNo:             m.GRNNo,
		Details: receiving.Details{
			Type:            receiving.ReceiptType(m.Type),
			SubType:         receiving.SubType(m.SubType),
			MaterialIssueNo: m.MaterialIssueNo,
			PurchaseOrderNo: m.PurchaseOrderNo,
			TransferNo:      m.TransferNo,
			VehicleNo:       m.VehicleNo,
			ExitDateTime:    m.ExitDateTime,
			ChallanNo:       m.ChallanNo,
			ChallanDate:     m.ChallanDate,
			InvoiceNo:       m.InvoiceNo,
			InvoiceDate:     m.InvoiceDate,
			SupplierID:      m.SupplierID,
			SupplierName:    m.SupplierName,
			Items:           make([]receiving.ReceiptItem, len(m.Items)),
		},
		ReceivedBy:   m.ReceivedBy,
		ReceiverID:   m.ReceiverID,
		ReceiverRole: identity.Role(m.ReceiverRole),
		ReceiverSite: m.ReceiverSite,
		IsReceived:   m.IsReceived,
		PDFLink:      m.PDFLink,
	}
	for i, item := range m.Items {
		g.Items[i] = receiving.ReceiptItem{
			ID:          item.ID,
			ItemID:      item.ItemID,
			ItemCode:    item.ItemCode,
			Category:    item.Category,
			Description: item.Description,
			UOM:         item.UOM,
			BalanceQty:  item.BalanceQty,
			ReceiveQty:  item.ReceiveQty,
			PendingQty:  item.PendingQty,
			SupplierID:  item.SupplierID,
		}
	}
	return g
}

// FromDomain populates the persistence model from a domain GoodsReceipt
func (m *GoodsReceiptModel) FromDomain(g *receiving.GoodsReceipt) {
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	m.GRNNo = g.GRNNo
	m.Type = string(g.Type)
	m.SubType = string(g.SubType)
	m.MaterialIssueNo = g.MaterialIssueNo
	m.PurchaseOrderNo = g.PurchaseOrderNo
	m.TransferNo = g.TransferNo
	m.VehicleNo = g.VehicleNo
	m.ExitDateTime = g.ExitDateTime
	m.ChallanNo = g.ChallanNo
	m.ChallanDate = g.ChallanDate
	m.InvoiceNo = g.InvoiceNo
	m.InvoiceDate = g.InvoiceDate
	m.SupplierID = g.SupplierID
	m.SupplierName = g.SupplierName
	m.ReceivedBy = g.ReceivedBy
	m.ReceiverID = g.ReceiverID
	m.ReceiverRole = string(g.ReceiverRole)
	m.ReceiverSite = g.ReceiverSite
	m.IsReceived = g.IsReceived
	m.PDFLink = g.PDFLink
	m.Items = make([]GoodsReceiptItemModel, len(g.Items))
	for i, item := range g.Items {
		m.Items[i] = GoodsReceiptItemModel{
			ID:          item.ID,
			ReceiptID:   g.ID,
			LineNo:      i + 1,
			ItemID:      item.ItemID,
			ItemCode:    item.ItemCode,
			Category:    item.Category,
			Description: item.Description,
			UOM:         item.UOM,
			BalanceQty:  item.BalanceQty,
			ReceiveQty:  item.ReceiveQty,
			PendingQty:  item.PendingQty,
			SupplierID:  item.SupplierID,
		}
	}
}

// GoodsReceiptModelFromDomain creates a new persistence model from a domain GoodsReceipt
func GoodsReceiptModelFromDomain(g *receiving.GoodsReceipt) *GoodsReceiptModel {
	m := &GoodsReceiptModel{}
	m.FromDomain(g)
	return m
}

// GoodsReceiptItemModel is one received line
type GoodsReceiptItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode    string          `gorm:"type:varchar(32);not null"`
	Category    string          `gorm:"type:varchar(100)"`
	Description string          `gorm:"type:varchar(500)"`
	UOM         string          `gorm:"column:uom;type:varchar(20)"`
	BalanceQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceiveQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PendingQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (GoodsReceiptItemModel) TableName() string {
	return "goods_receipt_items"
}
