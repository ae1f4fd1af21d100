package requisition

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Status of a material request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// RequestItem is one requested line
type RequestItem struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	RequestedQty decimal.Decimal
}

// MaterialRequest asks the next level of the hierarchy for materials.
// The only transition is pending → approved.
type MaterialRequest struct {
	shared.BaseAggregateRoot
	RequestNo     string
	RequestedBy   uuid.UUID
	RequesterRole identity.Role
	RequestedTo   *uuid.UUID // resolved reviewer; nil when any holder of the approver role may act
	ApproverRole  identity.Role
	SiteID        *uuid.UUID
	Items         []RequestItem
	Status        Status
	ApprovedBy    *uuid.UUID
	ApprovedAt    *time.Time
}

// NewMaterialRequest creates a pending request for a requester
func NewMaterialRequest(requestNo string, requester *identity.User, requestedTo *uuid.UUID, items []RequestItem) (*MaterialRequest, error) {
	rule, ok := identity.HierarchyFor(requester.Role)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeForbidden, "role "+requester.Role.String()+" cannot raise material requests")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	lines := make([]RequestItem, len(items))
	for i, it := range items {
		lines[i] = RequestItem{ID: uuid.New(), ItemID: it.ItemID, RequestedQty: it.RequestedQty}
	}

	mr := &MaterialRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestNo:         requestNo,
		RequestedBy:       requester.ID,
		RequesterRole:     requester.Role,
		RequestedTo:       requestedTo,
		ApproverRole:      rule.Approver,
		SiteID:            requester.SiteID,
		Items:             lines,
		Status:            StatusPending,
	}
	mr.AddDomainEvent(NewMaterialRequestCreatedEvent(mr))
	return mr, nil
}

// IsTopOfChain reports whether the request was booked into the pipeline counter
func (m *MaterialRequest) IsTopOfChain() bool {
	return identity.IsTopOfChain(m.RequesterRole)
}

// Approve moves the request to approved
func (m *MaterialRequest) Approve(approver *identity.User) error {
	if m.Status != StatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, "material request "+m.RequestNo+" is already "+string(m.Status))
	}
	if !identity.CanApprove(approver.Role, approver.SiteID, m.RequesterRole, m.SiteID) {
		return shared.NewDomainError(shared.CodeForbidden, "role "+approver.Role.String()+" cannot approve this request")
	}

	now := time.Now()
	approverID := approver.ID
	m.Status = StatusApproved
	m.ApprovedBy = &approverID
	m.ApprovedAt = &now
	m.Touch()

	m.AddDomainEvent(NewMaterialRequestApprovedEvent(m))
	return nil
}

// CanDelete reports whether the request can still be withdrawn
func (m *MaterialRequest) CanDelete() bool {
	return m.Status == StatusPending
}

// TotalsByItem sums the requested quantity per item
func (m *MaterialRequest) TotalsByItem() map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal, len(m.Items))
	for _, it := range m.Items {
		totals[it.ItemID] = totals[it.ItemID].Add(it.RequestedQty)
	}
	return totals
}

func validateItems(items []RequestItem) error {
	var errs shared.ValidationErrors
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for _, it := range items {
		if it.ItemID == uuid.Nil {
			errs.Add("items.itemId", "itemId is required")
		}
		if !it.RequestedQty.IsPositive() {
			errs.Add("items.requestedQty", "requestedQty must be positive")
		}
	}
	return errs.Err()
}
