package requisition

import (
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMaterialRequest = "MaterialRequest"

// Event type constants
const (
	EventTypeMaterialRequestCreated  = "MaterialRequestCreated"
	EventTypeMaterialRequestApproved = "MaterialRequestApproved"
)

// MaterialRequestCreatedEvent is published when a request is raised
type MaterialRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestNo   string     `json:"request_no"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	RequestedTo *uuid.UUID `json:"requested_to,omitempty"`
}

// NewMaterialRequestCreatedEvent creates a new MaterialRequestCreatedEvent
func NewMaterialRequestCreatedEvent(m *MaterialRequest) *MaterialRequestCreatedEvent {
	return &MaterialRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialRequestCreated, AggregateTypeMaterialRequest, m.ID),
		RequestNo:       m.RequestNo,
		RequestedBy:     m.RequestedBy,
		RequestedTo:     m.RequestedTo,
	}
}

// MaterialRequestApprovedEvent is published when a request is approved
type MaterialRequestApprovedEvent struct {
	shared.BaseDomainEvent
	RequestNo  string    `json:"request_no"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewMaterialRequestApprovedEvent creates a new MaterialRequestApprovedEvent
func NewMaterialRequestApprovedEvent(m *MaterialRequest) *MaterialRequestApprovedEvent {
	return &MaterialRequestApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialRequestApproved, AggregateTypeMaterialRequest, m.ID),
		RequestNo:       m.RequestNo,
		ApprovedBy:      *m.ApprovedBy,
	}
}
