package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryRecord = "InventoryRecord"

// Event type constants
const (
	EventTypeStockMoved = "StockMoved"
)

// StockMovedEvent is published for every movement posted to a location record
type StockMovedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID       `json:"item_id"`
	Scope      Scope           `json:"scope"`
	SiteID     *uuid.UUID      `json:"site_id,omitempty"`
	Kind       MovementKind    `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	SourceType SourceType      `json:"source_type"`
	SourceNo   string          `json:"source_no"`
	InHand     decimal.Decimal `json:"in_hand"`
}

// NewStockMovedEvent creates a new StockMovedEvent
func NewStockMovedEvent(record *InventoryRecord, m Movement, src Source) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeInventoryRecord, record.ID),
		ItemID:          record.ItemID,
		Scope:           record.Location.Scope,
		SiteID:          record.Location.SitePtr(),
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		SourceType:      src.Type,
		SourceNo:        src.No,
		InHand:          record.InHand,
	}
}
