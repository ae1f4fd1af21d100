package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/logistics"
)

// MaterialIssueModel is the persistence model for the MaterialIssue aggregate root
type MaterialIssueModel struct {
	AggregateModel
	IssueNumber          string                   `gorm:"type:varchar(32);not null;uniqueIndex"`
	IssuedBy             uuid.UUID                `gorm:"type:uuid;not null;index"`
	IssuerRole           string                   `gorm:"type:varchar(20);not null"`
	FromSiteID           *uuid.UUID               `gorm:"type:uuid;index"`
	IssuedTo             uuid.UUID                `gorm:"type:uuid;not null;index"`
	TransferNo           string                   `gorm:"type:varchar(32);index"`
	VehicleNo            string                   `gorm:"type:varchar(50)"`
	ExitDateTime         *time.Time
	Destination          string     `gorm:"type:varchar(200)"`
	MaterialInwardStatus string     `gorm:"type:varchar(20);not null"`
	TransferOrderID      *uuid.UUID `gorm:"type:uuid"`
	Items                []MaterialIssueItemModel `gorm:"foreignKey:IssueID;references:ID"`
}

// TableName returns the table name for GORM
func (MaterialIssueModel) TableName() string {
	return "material_issues"
}

// ToDomain converts the persistence model to a domain MaterialIssue
func (m *MaterialIssueModel) ToDomain() *logistics.MaterialIssue {
	mi := &logistics.MaterialIssue{
		BaseAggregateRoot: m.ToAggregateRoot(),
		IssueNumber:       m.IssueNumber,
		IssuedBy:          m.IssuedBy,
		IssuerRole:        identity.Role(m.IssuerRole),
		FromSiteID:        m.FromSiteID,
		IssuedTo:          m.IssuedTo,
		Shipment: logistics.Shipment{
			TransferNo:           m.TransferNo,
			VehicleNo:            m.VehicleNo,
			ExitDateTime:         m.ExitDateTime,
			Destination:          m.Destination,
			MaterialInwardStatus: logistics.InwardStatus(m.MaterialInwardStatus),
			TransferOrderID:      m.TransferOrderID,
		},
		Items: make([]logistics.IssueItem, len(m.Items)),
	}
	for i, item := range m.Items {
		mi.Items[i] = logistics.IssueItem{
			ID:          item.ID,
			ItemID:      item.ItemID,
			ItemCode:    item.ItemCode,
			Description: item.Description,
			UOM:         item.UOM,
			Category:    item.Category,
			IssueQty:    item.IssueQty,
		}
	}
	return mi
}

// FromDomain populates the persistence model from a domain MaterialIssue
func (m *MaterialIssueModel) FromDomain(mi *logistics.MaterialIssue) {
	m.FromDomainAggregateRoot(mi.BaseAggregateRoot)
	m.IssueNumber = mi.IssueNumber
	m.IssuedBy = mi.IssuedBy
	m.IssuerRole = string(mi.IssuerRole)
	m.FromSiteID = mi.FromSiteID
	m.IssuedTo = mi.IssuedTo
	m.TransferNo = mi.Shipment.TransferNo
	m.VehicleNo = mi.Shipment.VehicleNo
	m.ExitDateTime = mi.Shipment.ExitDateTime
	m.Destination = mi.Shipment.Destination
	m.MaterialInwardStatus = string(mi.Shipment.MaterialInwardStatus)
	m.TransferOrderID = mi.Shipment.TransferOrderID
	m.Items = make([]MaterialIssueItemModel, len(mi.Items))
	for i, item := range mi.Items {
		m.Items[i] = MaterialIssueItemModel{
			ID:          item.ID,
			IssueID:     mi.ID,
			LineNo:      i + 1,
			ItemID:      item.ItemID,
			ItemCode:    item.ItemCode,
			Description: item.Description,
			UOM:         item.UOM,
			Category:    item.Category,
			IssueQty:    item.IssueQty,
		}
	}
}

// MaterialIssueModelFromDomain creates a new persistence model from a domain MaterialIssue
func MaterialIssueModelFromDomain(mi *logistics.MaterialIssue) *MaterialIssueModel {
	m := &MaterialIssueModel{}
	m.FromDomain(mi)
	return m
}

// MaterialIssueItemModel is one issued line
type MaterialIssueItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	IssueID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode    string          `gorm:"type:varchar(32);not null"`
	Description string          `gorm:"type:varchar(500)"`
	UOM         string          `gorm:"column:uom;type:varchar(20)"`
	Category    string          `gorm:"type:varchar(100)"`
	IssueQty    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (MaterialIssueItemModel) TableName() string {
	return "material_issue_items"
}

// TransferOrderModel is the persistence model for the TransferOrder aggregate root
type TransferOrderModel struct {
	AggregateModel
	TransferNo      string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	Type            string     `gorm:"type:varchar(20);not null"`
	ReferenceNo     string     `gorm:"type:varchar(32);not null;index"`
	MaterialIssueID *uuid.UUID `gorm:"type:uuid"`
	PurchaseOrderID *uuid.UUID `gorm:"type:uuid"`
	FromSiteID      *uuid.UUID `gorm:"column:from_site_id;type:uuid"`
	ToSiteID        *uuid.UUID `gorm:"column:to_site_id;type:uuid"`
	VehicleNumber   string     `gorm:"type:varchar(50)"`
	ExitDateTime    *time.Time
	RequestedBy     uuid.UUID `gorm:"type:uuid;not null"`
	Status          string    `gorm:"type:varchar(20);not null;index"`
	ApprovedAt      *time.Time
}

// TableName returns the table name for GORM
func (TransferOrderModel) TableName() string {
	return "transfer_orders"
}

// ToDomain converts the persistence model to a domain TransferOrder
func (m *TransferOrderModel) ToDomain() *logistics.TransferOrder {
	return &logistics.TransferOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		TransferNo:        m.TransferNo,
		Type:              logistics.TransferType(m.Type),
		ReferenceNo:       m.ReferenceNo,
		MaterialIssueID:   m.MaterialIssueID,
		PurchaseOrderID:   m.PurchaseOrderID,
		From:              m.FromSiteID,
		To:                m.ToSiteID,
		VehicleNumber:     m.VehicleNumber,
		ExitDateTime:      m.ExitDateTime,
		RequestedBy:       m.RequestedBy,
		Status:            logistics.TransferStatus(m.Status),
		ApprovedAt:        m.ApprovedAt,
	}
}

// TransferOrderModelFromDomain creates a new persistence model from a domain TransferOrder
func TransferOrderModelFromDomain(to *logistics.TransferOrder) *TransferOrderModel {
	m := &TransferOrderModel{
		TransferNo:      to.TransferNo,
		Type:            string(to.Type),
		ReferenceNo:     to.ReferenceNo,
		MaterialIssueID: to.MaterialIssueID,
		PurchaseOrderID: to.PurchaseOrderID,
		FromSiteID:      to.From,
		ToSiteID:        to.To,
		VehicleNumber:   to.VehicleNumber,
		ExitDateTime:    to.ExitDateTime,
		RequestedBy:     to.RequestedBy,
		Status:          string(to.Status),
		ApprovedAt:      to.ApprovedAt,
	}
	m.FromDomainAggregateRoot(to.BaseAggregateRoot)
	return m
}
