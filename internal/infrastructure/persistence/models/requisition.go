package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/requisition"
)

// MaterialRequestModel is the persistence model for the MaterialRequest aggregate root
type MaterialRequestModel struct {
	AggregateModel
	RequestNo     string                     `gorm:"type:varchar(32);not null;uniqueIndex"`
	RequestedBy   uuid.UUID                  `gorm:"type:uuid;not null;index"`
	RequesterRole string                     `gorm:"type:varchar(20);not null;index"`
	RequestedTo   *uuid.UUID                 `gorm:"type:uuid;index"`
	ApproverRole  string                     `gorm:"type:varchar(20);not null"`
	SiteID        *uuid.UUID                 `gorm:"type:uuid;index"`
	Status        string                     `gorm:"type:varchar(20);not null;index"`
	ApprovedBy    *uuid.UUID                 `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	Items         []MaterialRequestItemModel `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (MaterialRequestModel) TableName() string {
	return "material_requests"
}

// ToDomain converts the persistence model to a domain MaterialRequest
func (m *MaterialRequestModel) ToDomain() *requisition.MaterialRequest {
	mr := &requisition.MaterialRequest{
		BaseAggregateRoot: m.ToAggregateRoot(),
		RequestNo:         m.RequestNo,
		RequestedBy:       m.RequestedBy,
		RequesterRole:     identity.Role(m.RequesterRole),
		RequestedTo:       m.RequestedTo,
		ApproverRole:      identity.Role(m.ApproverRole),
		SiteID:            m.SiteID,
		Status:            requisition.Status(m.Status),
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		Items:             make([]requisition.RequestItem, len(m.Items)),
	}
	for i, item := range m.Items {
		mr.Items[i] = requisition.RequestItem{
			ID:           item.ID,
			ItemID:       item.ItemID,
			RequestedQty: item.RequestedQty,
		}
	}
	return mr
}

// FromDomain populates the persistence model from a domain MaterialRequest
func (m *MaterialRequestModel) FromDomain(mr *requisition.MaterialRequest) {
	m.FromDomainAggregateRoot(mr.BaseAggregateRoot)
	m.RequestNo = mr.RequestNo
	m.RequestedBy = mr.RequestedBy
	m.RequesterRole = string(mr.RequesterRole)
	m.RequestedTo = mr.RequestedTo
	m.ApproverRole = string(mr.ApproverRole)
	m.SiteID = mr.SiteID
	m.Status = string(mr.Status)
	m.ApprovedBy = mr.ApprovedBy
	m.ApprovedAt = mr.ApprovedAt
	m.Items = make([]MaterialRequestItemModel, len(mr.Items))
	for i, item := range mr.Items {
		m.Items[i] = MaterialRequestItemModel{
			ID:           item.ID,
			RequestID:    mr.ID,
			LineNo:       i + 1,
			ItemID:       item.ItemID,
			RequestedQty: item.RequestedQty,
		}
	}
}

// MaterialRequestModelFromDomain creates a new persistence model from a domain MaterialRequest
func MaterialRequestModelFromDomain(mr *requisition.MaterialRequest) *MaterialRequestModel {
	m := &MaterialRequestModel{}
	m.FromDomain(mr)
	return m
}

// MaterialRequestItemModel is one requested line
type MaterialRequestItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo       int             `gorm:"not null"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestedQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (MaterialRequestItemModel) TableName() string {
	return "material_request_items"
}
