package logistics

import (
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeMaterialIssue = "MaterialIssue"
)

// Event type constants
const (
	EventTypeMaterialIssueCreated       = "MaterialIssueCreated"
	EventTypeMaterialIssueInwardChanged = "MaterialIssueInwardChanged"
)

// MaterialIssueCreatedEvent is published when goods are dispatched
type MaterialIssueCreatedEvent struct {
	shared.BaseDomainEvent
	IssueNumber string    `json:"issue_number"`
	IssuedTo    uuid.UUID `json:"issued_to"`
}

// NewMaterialIssueCreatedEvent creates a new MaterialIssueCreatedEvent
func NewMaterialIssueCreatedEvent(mi *MaterialIssue) *MaterialIssueCreatedEvent {
	return &MaterialIssueCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialIssueCreated, AggregateTypeMaterialIssue, mi.ID),
		IssueNumber:     mi.IssueNumber,
		IssuedTo:        mi.IssuedTo,
	}
}

// MaterialIssueInwardChangedEvent is published when the inward status moves
type MaterialIssueInwardChangedEvent struct {
	shared.BaseDomainEvent
	IssueNumber string       `json:"issue_number"`
	Status      InwardStatus `json:"status"`
}

// NewMaterialIssueInwardChangedEvent creates a new MaterialIssueInwardChangedEvent
func NewMaterialIssueInwardChangedEvent(mi *MaterialIssue) *MaterialIssueInwardChangedEvent {
	return &MaterialIssueInwardChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialIssueInwardChanged, AggregateTypeMaterialIssue, mi.ID),
		IssueNumber:     mi.IssueNumber,
		Status:          mi.Shipment.MaterialInwardStatus,
	}
}
