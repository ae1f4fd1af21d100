package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// SourceType names the document that caused a ledger movement
type SourceType string

const (
	SourceOpeningStock    SourceType = "opening_stock"
	SourceMaterialRequest SourceType = "material_request"
	SourceMaterialIssue   SourceType = "material_issue"
	SourceGoodsReceipt    SourceType = "goods_receipt"
)

// Source identifies the originating document of a movement
type Source struct {
	Type SourceType
	ID   uuid.UUID
	No   string
}

// LedgerEntry is an append-only audit record of one movement applied to one
// inventory record. Reversals append a new entry pointing at the original
// and stamp the original's ReversedAt, so undoing a document replays its
// own history rather than recomputing from current state.
type LedgerEntry struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	Location   Location
	Kind       MovementKind
	Quantity   decimal.Decimal
	SourceType SourceType
	SourceID   uuid.UUID
	SourceNo   string
	ActorID    uuid.UUID
	CreatedAt  time.Time
	ReversedAt *time.Time
	ReversalOf *uuid.UUID
}

// NewLedgerEntry records a movement applied at a location
func NewLedgerEntry(itemID uuid.UUID, loc Location, m Movement, src Source, actorID uuid.UUID) *LedgerEntry {
	return &LedgerEntry{
		ID:         uuid.New(),
		ItemID:     itemID,
		Location:   loc,
		Kind:       m.Kind,
		Quantity:   m.Quantity,
		SourceType: src.Type,
		SourceID:   src.ID,
		SourceNo:   src.No,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}
}

// Movement rebuilds the movement this entry recorded
func (e *LedgerEntry) Movement() (Movement, error) {
	return MovementFor(e.Kind, e.Quantity)
}

// IsReversed reports whether the entry was already undone
func (e *LedgerEntry) IsReversed() bool {
	return e.ReversedAt != nil
}

// Reverse returns the compensating entry and marks this entry reversed
func (e *LedgerEntry) Reverse(actorID uuid.UUID) (*LedgerEntry, Movement, error) {
	if e.IsReversed() {
		return nil, Movement{}, shared.NewDomainError(shared.CodeInvalidState, "ledger entry already reversed")
	}
	if e.ReversalOf != nil {
		return nil, Movement{}, shared.NewDomainError(shared.CodeInvalidState, "a reversal entry cannot be reversed")
	}
	m, err := e.Movement()
	if err != nil {
		return nil, Movement{}, err
	}
	inverse := m.Inverse()

	now := time.Now()
	e.ReversedAt = &now

	origID := e.ID
	rev := NewLedgerEntry(e.ItemID, e.Location, inverse, Source{Type: e.SourceType, ID: e.SourceID, No: e.SourceNo}, actorID)
	rev.ReversalOf = &origID
	return rev, inverse, nil
}
