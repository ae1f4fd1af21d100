package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// MovementKind names a ledger operation
type MovementKind string

const (
	MovementOpeningStock    MovementKind = "opening_stock"
	MovementRequest         MovementKind = "request"
	MovementPipelineRequest MovementKind = "pipeline_request"
	MovementRequestTransfer MovementKind = "request_transfer"
	MovementIssue           MovementKind = "issue"
	MovementReceipt         MovementKind = "receipt"
	MovementReceiptReversal MovementKind = "receipt_reversal"
	MovementReversal        MovementKind = "reversal"
)

// Movement is a change to one inventory record expressed as signed
// counter deltas. Derived fields are recomputed after the deltas are added:
//
//	inHand  = max(0, open - issuedQuantity)            when RecomputeInHand
//	pending = max(0, requestQuantity - issuedQuantity) when RecomputePending
//
// RequireInHand makes the movement fail unless inHand >= Quantity.
type Movement struct {
	Kind     MovementKind
	Quantity decimal.Decimal

	OpenDelta    decimal.Decimal
	InHandDelta  decimal.Decimal
	RequestDelta decimal.Decimal
	IssuedDelta  decimal.Decimal
	MIPDelta     decimal.Decimal

	RecomputeInHand  bool
	RecomputePending bool
	RequireInHand    bool
}

// OpeningStock adds opening stock; inHand is recomputed from open and issued
func OpeningStock(q decimal.Decimal) Movement {
	return Movement{
		Kind:            MovementOpeningStock,
		Quantity:        q,
		OpenDelta:       q,
		RecomputeInHand: true,
	}
}

// Request records a new material request. Requests from the top of the
// approval chain wait in the pipeline (mip) until approved upstream.
func Request(q decimal.Decimal, topOfChain bool) Movement {
	if topOfChain {
		return Movement{
			Kind:     MovementPipelineRequest,
			Quantity: q,
			MIPDelta: q,
		}
	}
	return Movement{
		Kind:             MovementRequest,
		Quantity:         q,
		RequestDelta:     q,
		RecomputePending: true,
	}
}

// RequestTransfer turns an approved pipeline quantity into an actionable request
func RequestTransfer(q decimal.Decimal) Movement {
	return Movement{
		Kind:             MovementRequestTransfer,
		Quantity:         q,
		MIPDelta:         q.Neg(),
		RequestDelta:     q,
		RecomputePending: true,
	}
}

// Issue ships stock out of a location
func Issue(q decimal.Decimal) Movement {
	return Movement{
		Kind:             MovementIssue,
		Quantity:         q,
		InHandDelta:      q.Neg(),
		IssuedDelta:      q,
		RecomputePending: true,
		RequireInHand:    true,
	}
}

// Receipt books goods received against the pipeline
func Receipt(q decimal.Decimal) Movement {
	return Movement{
		Kind:        MovementReceipt,
		Quantity:    q,
		InHandDelta: q,
		MIPDelta:    q.Neg(),
	}
}

// ReceiptReversal is the exact inverse of Receipt
func ReceiptReversal(q decimal.Decimal) Movement {
	return Movement{
		Kind:        MovementReceiptReversal,
		Quantity:    q,
		InHandDelta: q.Neg(),
		MIPDelta:    q,
	}
}

// MovementFor rebuilds the movement a ledger entry recorded
func MovementFor(kind MovementKind, q decimal.Decimal) (Movement, error) {
	switch kind {
	case MovementOpeningStock:
		return OpeningStock(q), nil
	case MovementRequest:
		return Request(q, false), nil
	case MovementPipelineRequest:
		return Request(q, true), nil
	case MovementRequestTransfer:
		return RequestTransfer(q), nil
	case MovementIssue:
		return Issue(q), nil
	case MovementReceipt:
		return Receipt(q), nil
	case MovementReceiptReversal:
		return ReceiptReversal(q), nil
	}
	return Movement{}, shared.NewDomainError(shared.CodeInvalidState, "movement kind "+string(kind)+" cannot be replayed")
}

// Inverse returns the movement that undoes m. The guard is dropped since
// undoing an issue only returns stock.
func (m Movement) Inverse() Movement {
	kind := MovementReversal
	switch m.Kind {
	case MovementReceipt:
		kind = MovementReceiptReversal
	case MovementReceiptReversal:
		kind = MovementReceipt
	}
	return Movement{
		Kind:             kind,
		Quantity:         m.Quantity,
		OpenDelta:        m.OpenDelta.Neg(),
		InHandDelta:      m.InHandDelta.Neg(),
		RequestDelta:     m.RequestDelta.Neg(),
		IssuedDelta:      m.IssuedDelta.Neg(),
		MIPDelta:         m.MIPDelta.Neg(),
		RecomputeInHand:  m.RecomputeInHand,
		RecomputePending: m.RecomputePending,
	}
}

// WithoutGuard drops the inHand guard; the global roll-up record tracks
// totals and never blocks a movement.
func (m Movement) WithoutGuard() Movement {
	m.RequireInHand = false
	return m
}

// Validate checks the movement quantity
func (m Movement) Validate() error {
	if !m.Quantity.IsPositive() {
		return shared.NewValidationError("quantity", "quantity must be positive")
	}
	return nil
}
