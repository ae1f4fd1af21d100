package logistics

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
)

// InwardStatus tracks how much of an issue the destination has received
type InwardStatus string

const (
	InwardPending           InwardStatus = "pending"
	InwardPartiallyReceived InwardStatus = "partially received"
	InwardApproved          InwardStatus = "approved"
)

// IssueItem is one issued line. Item attributes are copied so GRNs can
// match lines by item code.
type IssueItem struct {
	ID          uuid.UUID
	ItemID      uuid.UUID
	ItemCode    string
	Description string
	UOM         string
	Category    string
	IssueQty    decimal.Decimal
}

// Shipment carries transport details of an issue
type Shipment struct {
	TransferNo           string
	VehicleNo            string
	ExitDateTime         *time.Time
	Destination          string
	MaterialInwardStatus InwardStatus
	TransferOrderID      *uuid.UUID
}

// MaterialIssue records goods physically dispatched from a location
type MaterialIssue struct {
	shared.BaseAggregateRoot
	IssueNumber string
	IssuedBy    uuid.UUID
	IssuerRole  identity.Role
	FromSiteID  *uuid.UUID // nil is the central warehouse
	IssuedTo    uuid.UUID  // destination site
	Items       []IssueItem
	Shipment    Shipment
}

// NewMaterialIssue creates an issue in pending inward status
func NewMaterialIssue(issueNumber string, issuer *identity.User, fromSiteID *uuid.UUID, issuedTo uuid.UUID, items []IssueItem, shipment Shipment) (*MaterialIssue, error) {
	var errs shared.ValidationErrors
	if issuedTo == uuid.Nil {
		errs.Add("issuedTo", "issuedTo is required")
	}
	if fromSiteID != nil && *fromSiteID == issuedTo {
		errs.Add("issuedTo", "cannot issue to the issuing site")
	}
	validateIssueItems(&errs, items)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	lines := make([]IssueItem, len(items))
	for i, it := range items {
		it.ID = uuid.New()
		lines[i] = it
	}
	shipment.MaterialInwardStatus = InwardPending
	shipment.TransferOrderID = nil

	mi := &MaterialIssue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IssueNumber:       issueNumber,
		IssuedBy:          issuer.ID,
		IssuerRole:        issuer.Role,
		FromSiteID:        fromSiteID,
		IssuedTo:          issuedTo,
		Items:             lines,
		Shipment:          shipment,
	}
	mi.AddDomainEvent(NewMaterialIssueCreatedEvent(mi))
	return mi, nil
}

// NeedsTransferOrder reports whether a vehicle is involved
func (m *MaterialIssue) NeedsTransferOrder() bool {
	return strings.TrimSpace(m.Shipment.VehicleNo) != ""
}

// LinkTransferOrder records the companion transfer order
func (m *MaterialIssue) LinkTransferOrder(to *TransferOrder) {
	id := to.ID
	m.Shipment.TransferOrderID = &id
	m.Shipment.TransferNo = to.TransferNo
}

// UnlinkTransferOrder drops the reference to a deleted transfer order
func (m *MaterialIssue) UnlinkTransferOrder() {
	m.Shipment.TransferOrderID = nil
	m.Shipment.TransferNo = ""
	m.Touch()
}

// UpdateShipment amends transport metadata; inward status and the linked
// transfer order are owned by the receiving workflow and kept.
func (m *MaterialIssue) UpdateShipment(s Shipment) {
	s.MaterialInwardStatus = m.Shipment.MaterialInwardStatus
	s.TransferOrderID = m.Shipment.TransferOrderID
	if s.TransferNo == "" {
		s.TransferNo = m.Shipment.TransferNo
	}
	m.Shipment = s
	m.Touch()
}

// UpdateQuantities amends issue quantities by item code. Ledger counters
// are not adjusted for the difference.
func (m *MaterialIssue) UpdateQuantities(qty map[string]decimal.Decimal) error {
	var errs shared.ValidationErrors
	for code, q := range qty {
		if m.lineIndex(code) < 0 {
			errs.Add("items.itemCode", "item "+code+" is not on issue "+m.IssueNumber)
		} else if !q.IsPositive() {
			errs.Add("items.issueQty", "issueQty must be positive")
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}
	for code, q := range qty {
		m.Items[m.lineIndex(code)].IssueQty = q
	}
	m.Touch()
	return nil
}

// IssuedQty returns the issued quantity for an item code, summing duplicate lines
func (m *MaterialIssue) IssuedQty(itemCode string) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, it := range m.Items {
		if strings.EqualFold(it.ItemCode, itemCode) {
			total = total.Add(it.IssueQty)
			found = true
		}
	}
	return total, found
}

// ApplyInwardTotals recomputes the inward status from the total received
// per item code across every GRN raised against this issue.
func (m *MaterialIssue) ApplyInwardTotals(received map[string]decimal.Decimal) InwardStatus {
	allReceived := true
	anyReceived := false
	for _, it := range m.Items {
		got := received[strings.ToUpper(it.ItemCode)]
		if got.IsPositive() {
			anyReceived = true
		}
		if got.LessThan(it.IssueQty) {
			allReceived = false
		}
	}

	status := InwardPending
	switch {
	case allReceived && anyReceived:
		status = InwardApproved
	case anyReceived:
		status = InwardPartiallyReceived
	}
	if status != m.Shipment.MaterialInwardStatus {
		m.Shipment.MaterialInwardStatus = status
		m.Touch()
		m.AddDomainEvent(NewMaterialIssueInwardChangedEvent(m))
	}
	return status
}

// IsFullyReceived reports whether the destination received everything
func (m *MaterialIssue) IsFullyReceived() bool {
	return m.Shipment.MaterialInwardStatus == InwardApproved
}

func (m *MaterialIssue) lineIndex(itemCode string) int {
	for i, it := range m.Items {
		if strings.EqualFold(it.ItemCode, itemCode) {
			return i
		}
	}
	return -1
}

func validateIssueItems(errs *shared.ValidationErrors, items []IssueItem) {
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for _, it := range items {
		if it.ItemID == uuid.Nil {
			errs.Add("items.itemId", "itemId is required")
		}
		if !it.IssueQty.IsPositive() {
			errs.Add("items.issueQty", "issueQty must be positive")
		}
	}
}
