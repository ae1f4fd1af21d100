package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// InventoryRecord holds the quantity counters of one item at one location
type InventoryRecord struct {
	shared.BaseEntity
	ItemID          uuid.UUID
	Location        Location
	Open            decimal.Decimal // cumulative opening stock
	InHand          decimal.Decimal // physically available now, never negative
	RequestQuantity decimal.Decimal // requested upward and actionable
	IssuedQuantity  decimal.Decimal // cumulative issued out
	MIP             decimal.Decimal // material in pipeline
	Pending         decimal.Decimal // derived, never negative
}

// NewInventoryRecord returns a zero-initialized record
func NewInventoryRecord(itemID uuid.UUID, loc Location) *InventoryRecord {
	return &InventoryRecord{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     itemID,
		Location:   loc,
	}
}

// CanIssue reports whether q can be issued from this record
func (r *InventoryRecord) CanIssue(q decimal.Decimal) bool {
	return r.InHand.GreaterThanOrEqual(q)
}

// Apply applies a movement in memory. The persistence layer performs the
// same arithmetic in a single statement; this method is the reference.
func (r *InventoryRecord) Apply(m Movement) error {
	if m.RequireInHand && !r.CanIssue(m.Quantity) {
		return shared.ErrInsufficientStock
	}

	r.Open = r.Open.Add(m.OpenDelta)
	r.RequestQuantity = r.RequestQuantity.Add(m.RequestDelta)
	r.IssuedQuantity = r.IssuedQuantity.Add(m.IssuedDelta)
	r.MIP = r.MIP.Add(m.MIPDelta)

	if m.RecomputeInHand {
		r.InHand = clampZero(r.Open.Sub(r.IssuedQuantity))
	} else {
		r.InHand = clampZero(r.InHand.Add(m.InHandDelta))
	}
	if m.RecomputePending {
		r.Pending = clampZero(r.RequestQuantity.Sub(r.IssuedQuantity))
	}
	r.UpdatedAt = time.Now()
	return nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
