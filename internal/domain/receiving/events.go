package receiving

import "github.com/sitestock/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeGoodsReceipt = "GoodsReceipt"

// Event type constants
const (
	EventTypeGoodsReceiptCreated = "GoodsReceiptCreated"
	EventTypeGoodsReceiptUpdated = "GoodsReceiptUpdated"
	EventTypeGoodsReceiptDeleted = "GoodsReceiptDeleted"
)

// GoodsReceiptRecordedEvent is published when a GRN is created, edited or removed
type GoodsReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	GRNNo    string      `json:"grn_no"`
	Type     ReceiptType `json:"type"`
	SourceNo string      `json:"source_no"`
}

// NewGoodsReceiptRecordedEvent creates a new GoodsReceiptRecordedEvent
func NewGoodsReceiptRecordedEvent(g *GoodsReceipt, eventType string) *GoodsReceiptRecordedEvent {
	return &GoodsReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeGoodsReceipt, g.ID),
		GRNNo:           g.GRNNo,
		Type:            g.Type,
		SourceNo:        g.SourceNo(),
	}
}
