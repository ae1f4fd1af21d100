package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerService handles opening stock and inventory record queries
type LedgerService struct {
	txScope        appshared.TransactionScope
	records        inventory.RecordRepository
	entries        inventory.LedgerEntryRepository
	sites          partner.SiteRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	txScope appshared.TransactionScope,
	records inventory.RecordRepository,
	entries inventory.LedgerEntryRepository,
	sites partner.SiteRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		txScope: txScope,
		records: records,
		entries: entries,
		sites:   sites,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddOpeningStock books opening stock for an item at a site or the central
// warehouse. A second opening for the same item and location is rejected.
func (s *LedgerService) AddOpeningStock(ctx context.Context, actorID uuid.UUID, req AddOpeningStockRequest) (*InventoryRecordResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity", "quantity must be positive")
	}
	if req.SiteID != nil {
		if _, err := s.sites.FindByID(ctx, *req.SiteID); err != nil {
			return nil, err
		}
	}
	loc := inventory.LocationFor(req.SiteID)

	var record *inventory.InventoryRecord
	var events appshared.EventCollector
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		item, err := repos.Items().FindByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		exists, err := repos.Records().ExistsWithOpening(ctx, item.ID, loc)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Opening stock for %s at %s already exists", item.ItemCode, loc))
		}

		ledger := NewLedger(repos.Records(), repos.LedgerEntries(), actorID)
		record, err = ledger.ApplyOpeningStock(ctx, item.ID, loc, req.Quantity, inventory.Source{
			Type: inventory.SourceOpeningStock,
			ID:   item.ID,
			No:   item.ItemCode,
		})
		if err != nil {
			return err
		}
		events.Add(ledger.Events()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	resp := ToRecordResponse(record)
	return &resp, nil
}

// GetRecord returns the record of an item at a location. A missing record
// reads as all zero counters.
func (s *LedgerService) GetRecord(ctx context.Context, itemID uuid.UUID, loc inventory.Location) (*InventoryRecordResponse, error) {
	if err := loc.Validate(); err != nil {
		return nil, shared.NewValidationError("location", err.Error())
	}
	record, err := s.records.FindByItemAndLocation(ctx, itemID, loc)
	if errors.Is(err, shared.ErrNotFound) {
		record = inventory.NewInventoryRecord(itemID, loc)
	} else if err != nil {
		return nil, err
	}
	resp := ToRecordResponse(record)
	return &resp, nil
}

// ItemBalances returns every record of an item
func (s *LedgerService) ItemBalances(ctx context.Context, itemID uuid.UUID) ([]InventoryRecordResponse, error) {
	records, err := s.records.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return ToRecordResponses(records), nil
}

// ListRecords lists inventory records
func (s *LedgerService) ListRecords(ctx context.Context, filter RecordListFilter) ([]InventoryRecordResponse, int64, error) {
	f := inventory.RecordFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		Scope:  inventory.Scope(filter.Scope),
		SiteID: parseOptionalID(filter.SiteID),
		ItemID: parseOptionalID(filter.ItemID),
	}
	records, total, err := s.records.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToRecordResponses(records), total, nil
}

// History lists the ledger entries of an item, newest first
func (s *LedgerService) History(ctx context.Context, itemID uuid.UUID, filter HistoryFilter) ([]LedgerEntryResponse, int64, error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	entries, total, err := s.entries.FindByItem(ctx, itemID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToLedgerEntryResponse(e)
	}
	return out, total, nil
}

// RepairPending rewrites drifted pending counters. Used by the scheduled
// reconciliation sweep.
func (s *LedgerService) RepairPending(ctx context.Context) (int64, error) {
	n, err := s.records.RepairPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("repair pending: %w", err)
	}
	if n > 0 {
		s.logger.Warn("Repaired drifted pending counters", zap.Int64("records", n))
	}
	return n, nil
}

func parseOptionalID(s string) *uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
