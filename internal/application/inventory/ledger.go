package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
)

// Ledger posts movements to inventory records and keeps the audit trail.
// Every movement lands on the location record and on the item's global
// roll-up record, and each application appends one ledger entry.
//
// A Ledger is bound to the repositories of one transaction; build a new one
// inside every TransactionScope.Execute.
type Ledger struct {
	records inventory.RecordRepository
	entries inventory.LedgerEntryRepository
	actorID uuid.UUID
	events  []shared.DomainEvent
}

// NewLedger creates a Ledger acting on behalf of actorID
func NewLedger(records inventory.RecordRepository, entries inventory.LedgerEntryRepository, actorID uuid.UUID) *Ledger {
	return &Ledger{records: records, entries: entries, actorID: actorID}
}

// ApplyOpeningStock books opening stock at a location
func (l *Ledger) ApplyOpeningStock(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.OpeningStock(q), src)
}

// ApplyRequest books a new material request line at the requesting location
func (l *Ledger) ApplyRequest(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, topOfChain bool, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.Request(q, topOfChain), src)
}

// ApproveRequestTransfer moves an approved pipeline quantity into requestQuantity
func (l *Ledger) ApproveRequestTransfer(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.RequestTransfer(q), src)
}

// ApplyIssue ships stock out of a location; fails with ErrInsufficientStock
func (l *Ledger) ApplyIssue(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.Issue(q), src)
}

// ApplyReceipt books received goods at a location
func (l *Ledger) ApplyReceipt(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.Receipt(q), src)
}

// RevertReceipt undoes ApplyReceipt for the same quantity
func (l *Ledger) RevertReceipt(ctx context.Context, itemID uuid.UUID, loc inventory.Location, q decimal.Decimal, src inventory.Source) (*inventory.InventoryRecord, error) {
	return l.Post(ctx, itemID, loc, inventory.ReceiptReversal(q), src)
}

// Post applies a movement to the location record and the global record
func (l *Ledger) Post(ctx context.Context, itemID uuid.UUID, loc inventory.Location, m inventory.Movement, src inventory.Source) (*inventory.InventoryRecord, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, shared.NewValidationError("location", err.Error())
	}
	if loc.IsGlobal() {
		return nil, shared.NewValidationError("location", "movements are posted to a site or the central warehouse")
	}

	record, err := l.records.Apply(ctx, itemID, loc, m)
	if err != nil {
		return nil, err
	}
	if _, err := l.records.Apply(ctx, itemID, inventory.GlobalLocation(), m.WithoutGuard()); err != nil {
		return nil, fmt.Errorf("post %s to global record of item %s: %w", m.Kind, itemID, err)
	}

	if err := l.entries.Append(ctx,
		inventory.NewLedgerEntry(itemID, loc, m, src, l.actorID),
		inventory.NewLedgerEntry(itemID, inventory.GlobalLocation(), m.WithoutGuard(), src, l.actorID),
	); err != nil {
		return nil, fmt.Errorf("append ledger entries: %w", err)
	}

	l.events = append(l.events, inventory.NewStockMovedEvent(record, m, src))
	return record, nil
}

// RevertSource replays the inverse of every active entry a document
// produced, at the location each entry was posted to. It returns the number
// of entries reversed.
func (l *Ledger) RevertSource(ctx context.Context, sourceType inventory.SourceType, sourceID uuid.UUID) (int, error) {
	active, err := l.entries.FindActiveBySource(ctx, sourceType, sourceID)
	if err != nil {
		return 0, fmt.Errorf("load ledger entries: %w", err)
	}
	if len(active) == 0 {
		return 0, nil
	}

	reversals := make([]*inventory.LedgerEntry, 0, len(active))
	ids := make([]uuid.UUID, 0, len(active))
	for _, entry := range active {
		rev, inverse, err := entry.Reverse(l.actorID)
		if err != nil {
			return 0, err
		}
		record, err := l.records.Apply(ctx, entry.ItemID, entry.Location, inverse)
		if err != nil {
			return 0, fmt.Errorf("revert %s of item %s at %s: %w", entry.Kind, entry.ItemID, entry.Location, err)
		}
		if !entry.Location.IsGlobal() {
			l.events = append(l.events, inventory.NewStockMovedEvent(record, inverse, inventory.Source{
				Type: entry.SourceType, ID: entry.SourceID, No: entry.SourceNo,
			}))
		}
		reversals = append(reversals, rev)
		ids = append(ids, entry.ID)
	}

	if err := l.entries.MarkReversed(ctx, ids, time.Now()); err != nil {
		return 0, fmt.Errorf("mark ledger entries reversed: %w", err)
	}
	if err := l.entries.Append(ctx, reversals...); err != nil {
		return 0, fmt.Errorf("append reversal entries: %w", err)
	}
	return len(active), nil
}

// Events returns the stock movement events raised so far
func (l *Ledger) Events() []shared.DomainEvent {
	return l.events
}
