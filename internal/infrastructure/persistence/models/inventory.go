package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
)

// InventoryRecordModel is the persistence model for InventoryRecord.
// SiteID holds the zero UUID for the central and global scopes so the
// natural key stays a plain unique index.
type InventoryRecordModel struct {
	BaseModel
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_record_key,priority:1"`
	Scope           string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_inventory_record_key,priority:2"`
	SiteID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_record_key,priority:3"`
	Open            decimal.Decimal `gorm:"column:open_qty;type:decimal(18,4);not null;default:0"`
	InHand          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RequestQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IssuedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MIP             decimal.Decimal `gorm:"column:mip;type:decimal(18,4);not null;default:0"`
	Pending         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryRecordModel) TableName() string {
	return "inventory_records"
}

// ToDomain converts the persistence model to a domain InventoryRecord
func (m *InventoryRecordModel) ToDomain() *inventory.InventoryRecord {
	return &inventory.InventoryRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		ItemID:          m.ItemID,
		Location:        inventory.Location{Scope: inventory.Scope(m.Scope), SiteID: m.SiteID},
		Open:            m.Open,
		InHand:          m.InHand,
		RequestQuantity: m.RequestQuantity,
		IssuedQuantity:  m.IssuedQuantity,
		MIP:             m.MIP,
		Pending:         m.Pending,
	}
}

// FromDomain populates the persistence model from a domain InventoryRecord
func (m *InventoryRecordModel) FromDomain(r *inventory.InventoryRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ItemID = r.ItemID
	m.Scope = string(r.Location.Scope)
	m.SiteID = r.Location.SiteID
	m.Open = r.Open
	m.InHand = r.InHand
	m.RequestQuantity = r.RequestQuantity
	m.IssuedQuantity = r.IssuedQuantity
	m.MIP = r.MIP
	m.Pending = r.Pending
}

// InventoryRecordModelFromDomain creates a new persistence model from a domain record
func InventoryRecordModelFromDomain(r *inventory.InventoryRecord) *InventoryRecordModel {
	m := &InventoryRecordModel{}
	m.FromDomain(r)
	return m
}

// LedgerEntryModel is the persistence model for one ledger line
type LedgerEntryModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Scope      string          `gorm:"type:varchar(16);not null"`
	SiteID     uuid.UUID       `gorm:"type:uuid;not null"`
	Kind       string          `gorm:"type:varchar(32);not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType string          `gorm:"type:varchar(32);not null;index:idx_ledger_source,priority:1"`
	SourceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_source,priority:2"`
	SourceNo   string          `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt  time.Time       `gorm:"not null;index"`
	ReversedAt *time.Time
	ReversalOf *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "inventory_ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *inventory.LedgerEntry {
	return &inventory.LedgerEntry{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Location:   inventory.Location{Scope: inventory.Scope(m.Scope), SiteID: m.SiteID},
		Kind:       inventory.MovementKind(m.Kind),
		Quantity:   m.Quantity,
		SourceType: inventory.SourceType(m.SourceType),
		SourceID:   m.SourceID,
		SourceNo:   m.SourceNo,
		ActorID:    m.ActorID,
		CreatedAt:  m.CreatedAt,
		ReversedAt: m.ReversedAt,
		ReversalOf: m.ReversalOf,
	}
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain entry
func LedgerEntryModelFromDomain(e *inventory.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:         e.ID,
		ItemID:     e.ItemID,
		Scope:      string(e.Location.Scope),
		SiteID:     e.Location.SiteID,
		Kind:       string(e.Kind),
		Quantity:   e.Quantity,
		SourceType: string(e.SourceType),
		SourceID:   e.SourceID,
		SourceNo:   e.SourceNo,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
		ReversedAt: e.ReversedAt,
		ReversalOf: e.ReversalOf,
	}
}

// DocumentSequenceModel holds the last number handed out for one document series
type DocumentSequenceModel struct {
	Kind      string `gorm:"type:varchar(16);primary_key"`
	Seq       int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

