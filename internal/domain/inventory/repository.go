package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// RecordFilter narrows record listings
type RecordFilter struct {
	shared.Filter
	Scope  Scope
	SiteID *uuid.UUID
	ItemID *uuid.UUID
}

// RecordRepository persists inventory records
type RecordRepository interface {
	// Apply applies a movement to the record keyed by (itemID, loc) as a
	// single atomic statement, creating a zero record first if none exists.
	// It returns ErrInsufficientStock when the inHand guard fails.
	Apply(ctx context.Context, itemID uuid.UUID, loc Location, m Movement) (*InventoryRecord, error)

	// FindByItemAndLocation returns the record or ErrNotFound
	FindByItemAndLocation(ctx context.Context, itemID uuid.UUID, loc Location) (*InventoryRecord, error)

	// FindByItems returns the records of several items at one location keyed by item
	FindByItems(ctx context.Context, loc Location, itemIDs []uuid.UUID) (map[uuid.UUID]*InventoryRecord, error)

	// FindByItem returns every record of an item
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]*InventoryRecord, error)

	// FindByItemIDs returns every record of the given items at any location
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*InventoryRecord, error)

	// FindAll lists records
	FindAll(ctx context.Context, filter RecordFilter) ([]*InventoryRecord, int64, error)

	// ExistsWithOpening reports whether opening stock was already booked at the location
	ExistsWithOpening(ctx context.Context, itemID uuid.UUID, loc Location) (bool, error)

	// RepairPending rewrites pending from requestQuantity and issuedQuantity
	// where it drifted and returns the number of repaired records
	RepairPending(ctx context.Context) (int64, error)
}

// LedgerEntryRepository persists the movement audit trail
type LedgerEntryRepository interface {
	// Append inserts new entries
	Append(ctx context.Context, entries ...*LedgerEntry) error

	// FindActiveBySource returns the unreversed, non-reversal entries of a document
	FindActiveBySource(ctx context.Context, sourceType SourceType, sourceID uuid.UUID) ([]*LedgerEntry, error)

	// MarkReversed stamps ReversedAt on the given entries
	MarkReversed(ctx context.Context, ids []uuid.UUID, at time.Time) error

	// FindByItem lists the history of an item, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]*LedgerEntry, int64, error)
}
