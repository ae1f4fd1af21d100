package logistics

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// TransferType tells issued transfers apart from supplier deliveries
type TransferType string

const (
	TransferTypeTransferred TransferType = "Transferred"
	TransferTypeSupplied    TransferType = "Supplied"
)

// TransferStatus of a transfer order
type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferApproved TransferStatus = "approved"
)

// TransferOrder tracks the physical movement of goods between locations
type TransferOrder struct {
	shared.BaseAggregateRoot
	TransferNo      string
	Type            TransferType
	ReferenceNo     string // material issue or purchase order number
	MaterialIssueID *uuid.UUID
	PurchaseOrderID *uuid.UUID
	From            *uuid.UUID // nil is the central warehouse or, for supplies, the supplier
	To              *uuid.UUID
	VehicleNumber   string
	ExitDateTime    *time.Time
	RequestedBy     uuid.UUID
	Status          TransferStatus
	ApprovedAt      *time.Time
}

// NewTransferForIssue creates the companion order of a material issue
func NewTransferForIssue(transferNo string, mi *MaterialIssue) *TransferOrder {
	miID := mi.ID
	to := mi.IssuedTo
	return &TransferOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferNo:        transferNo,
		Type:              TransferTypeTransferred,
		ReferenceNo:       mi.IssueNumber,
		MaterialIssueID:   &miID,
		From:              mi.FromSiteID,
		To:                &to,
		VehicleNumber:     strings.TrimSpace(mi.Shipment.VehicleNo),
		ExitDateTime:      mi.Shipment.ExitDateTime,
		RequestedBy:       mi.IssuedBy,
		Status:            TransferPending,
	}
}

// NewTransferForPurchase creates the Supplied order that accompanies a PO
func NewTransferForPurchase(transferNo, purchaseOrderNo string, purchaseOrderID uuid.UUID, shipTo *uuid.UUID, requestedBy uuid.UUID) *TransferOrder {
	poID := purchaseOrderID
	return &TransferOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferNo:        transferNo,
		Type:              TransferTypeSupplied,
		ReferenceNo:       purchaseOrderNo,
		PurchaseOrderID:   &poID,
		To:                shipTo,
		RequestedBy:       requestedBy,
		Status:            TransferPending,
	}
}

// Approve marks the transfer delivered
func (t *TransferOrder) Approve() error {
	if t.Status == TransferApproved {
		return shared.NewDomainError(shared.CodeInvalidState, "transfer order "+t.TransferNo+" is already approved")
	}
	now := time.Now()
	t.Status = TransferApproved
	t.ApprovedAt = &now
	t.Touch()
	return nil
}

// CanDelete reports whether the order may be removed
func (t *TransferOrder) CanDelete() bool {
	return t.Status == TransferPending
}
