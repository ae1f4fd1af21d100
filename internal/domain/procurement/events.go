package procurement

import (
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
)

// PurchaseOrderCreatedEvent is published when a new order is placed
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderNo   string          `json:"purchase_order_no"`
	MaterialRequestNo string          `json:"material_request_no"`
	GrandTotalIncGST  decimal.Decimal `json:"grand_total_inc_gst"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		PurchaseOrderNo:   o.PurchaseOrderNo,
		MaterialRequestNo: o.MaterialRequestNo,
		GrandTotalIncGST:  o.GrandTotalIncGST,
	}
}

// PurchaseOrderReceivedEvent is published whenever GRN quantities are applied or reverted
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderNo string      `json:"purchase_order_no"`
	Status          OrderStatus `json:"status"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID),
		PurchaseOrderNo: o.PurchaseOrderNo,
		Status:          o.Status,
	}
}

// PurchaseOrderStatusChangedEvent is published when the aggregate status moves
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderNo string      `json:"purchase_order_no"`
	Status          OrderStatus `json:"status"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(o *PurchaseOrder) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, o.ID),
		PurchaseOrderNo: o.PurchaseOrderNo,
		Status:          o.Status,
	}
}
