package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/procurement"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	AggregateModel
	PurchaseOrderNo   string                   `gorm:"type:varchar(32);not null;uniqueIndex"`
	MaterialRequestNo string                   `gorm:"type:varchar(32);index"`
	BillTo            *uuid.UUID               `gorm:"type:uuid"`
	ShipTo            *uuid.UUID               `gorm:"type:uuid;index"`
	DeliveryDate      *time.Time               `gorm:"type:date"`
	CreatedBy         uuid.UUID                `gorm:"type:uuid;not null;index"`
	TotalAmount       decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	IGST              decimal.Decimal          `gorm:"column:igst;type:decimal(18,4);not null;default:0"`
	SGST              decimal.Decimal          `gorm:"column:sgst;type:decimal(18,4);not null;default:0"`
	CGST              decimal.Decimal          `gorm:"column:cgst;type:decimal(18,4);not null;default:0"`
	GrandTotalIncGST  decimal.Decimal          `gorm:"column:grand_total_inc_gst;type:decimal(18,4);not null;default:0"`
	Status            string                   `gorm:"type:varchar(20);not null;index"`
	ApprovedBy        *uuid.UUID               `gorm:"type:uuid"`
	ApprovedAt        *time.Time               `gorm:"index"`
	ClosedAt          *time.Time               `gorm:"index"`
	PDFLink           string                   `gorm:"column:pdf_link;type:varchar(500)"`
	Items             []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PurchaseOrderNo:   m.PurchaseOrderNo,
		MaterialRequestNo: m.MaterialRequestNo,
		BillTo:            m.BillTo,
		ShipTo:            m.ShipTo,
		DeliveryDate:      m.DeliveryDate,
		CreatedBy:         m.CreatedBy,
		TotalAmount:       m.TotalAmount,
		IGST:              m.IGST,
		SGST:              m.SGST,
		CGST:              m.CGST,
		GrandTotalIncGST:  m.GrandTotalIncGST,
		Status:            procurement.OrderStatus(m.Status),
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		ClosedAt:          m.ClosedAt,
		PDFLink:           m.PDFLink,
		Items:             make([]procurement.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		po.Items[i] = m.Items[i].ToDomain()
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(po *procurement.PurchaseOrder) {
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	m.PurchaseOrderNo = po.PurchaseOrderNo
	m.MaterialRequestNo = po.MaterialRequestNo
	m.BillTo = po.BillTo
	m.ShipTo = po.ShipTo
	m.DeliveryDate = po.DeliveryDate
	m.CreatedBy = po.CreatedBy
	m.TotalAmount = po.TotalAmount
	m.IGST = po.IGST
	m.SGST = po.SGST
	m.CGST = po.CGST
	m.GrandTotalIncGST = po.GrandTotalIncGST
	m.Status = string(po.Status)
	m.ApprovedBy = po.ApprovedBy
	m.ApprovedAt = po.ApprovedAt
	m.ClosedAt = po.ClosedAt
	m.PDFLink = po.PDFLink
	m.Items = make([]PurchaseOrderItemModel, len(po.Items))
	for i := range po.Items {
		m.Items[i] = PurchaseOrderItemModelFromDomain(po.ID, i+1, &po.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}

// PurchaseOrderItemModel is one order line
type PurchaseOrderItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo       int             `gorm:"not null"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode     string          `gorm:"type:varchar(32);not null"`
	Category     string          `gorm:"type:varchar(100)"`
	Description  string          `gorm:"type:varchar(500)"`
	UOM          string          `gorm:"column:uom;type:varchar(20)"`
	RequestedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PendingQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTPercent   decimal.Decimal `gorm:"column:gst_percent;type:decimal(5,2);not null;default:0"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain order line
func (m *PurchaseOrderItemModel) ToDomain() procurement.PurchaseOrderItem {
	return procurement.PurchaseOrderItem{
		ID:           m.ID,
		ItemID:       m.ItemID,
		ItemCode:     m.ItemCode,
		Category:     m.Category,
		Description:  m.Description,
		UOM:          m.UOM,
		RequestedQty: m.RequestedQty,
		PurchaseQty:  m.PurchaseQty,
		ReceivedQty:  m.ReceivedQty,
		PendingQty:   m.PendingQty,
		Price:        m.Price,
		GSTPercent:   m.GSTPercent,
		Amount:       m.Amount,
		SupplierID:   m.SupplierID,
		Status:       procurement.ItemStatus(m.Status),
	}
}

// PurchaseOrderItemModelFromDomain creates the persistence model of one order line
func PurchaseOrderItemModelFromDomain(orderID uuid.UUID, lineNo int, it *procurement.PurchaseOrderItem) PurchaseOrderItemModel {
	return PurchaseOrderItemModel{
		ID:           it.ID,
		OrderID:      orderID,
		LineNo:       lineNo,
		ItemID:       it.ItemID,
		ItemCode:     it.ItemCode,
		Category:     it.Category,
		Description:  it.Description,
		UOM:          it.UOM,
		RequestedQty: it.RequestedQty,
		PurchaseQty:  it.PurchaseQty,
		ReceivedQty:  it.ReceivedQty,
		PendingQty:   it.PendingQty,
		Price:        it.Price,
		GSTPercent:   it.GSTPercent,
		Amount:       it.Amount,
		SupplierID:   it.SupplierID,
		Status:       string(it.Status),
	}
}
