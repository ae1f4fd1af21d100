package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements inventory.LedgerEntryRepository using GORM.
// Entries are append-only apart from the reversal stamp.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append inserts new entries
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entries ...*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.LedgerEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.LedgerEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// FindActiveBySource returns the unreversed original entries of a document
func (r *GormLedgerEntryRepository) FindActiveBySource(ctx context.Context, sourceType inventory.SourceType, sourceID uuid.UUID) ([]*inventory.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", string(sourceType), sourceID).
		Where("reversed_at IS NULL AND reversal_of IS NULL").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

// MarkReversed stamps ReversedAt on the given entries
func (r *GormLedgerEntryRepository) MarkReversed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("id IN ? AND reversed_at IS NULL", ids).
		Update("reversed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "ledger entries were reversed concurrently")
	}
	return nil
}

// FindByItem lists the history of an item, newest first
func (r *GormLedgerEntryRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]*inventory.LedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("item_id = ?", itemID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LedgerEntryModel
	q := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		q = q.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return entriesToDomain(rows), total, nil
}

func entriesToDomain(rows []models.LedgerEntryModel) []*inventory.LedgerEntry {
	out := make([]*inventory.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ inventory.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
