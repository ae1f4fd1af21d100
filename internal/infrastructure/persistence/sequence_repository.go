package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceGenerator hands out document numbers from the
// document_sequences counter table. The upsert takes the row lock, so the
// counter read back inside the same transaction belongs to this caller.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next number of a series
func (g *GormSequenceGenerator) Next(ctx context.Context, kind shared.DocumentKind) (string, error) {
	numbers, err := g.NextN(ctx, kind, 1)
	if err != nil {
		return "", err
	}
	return numbers[0], nil
}

// NextN reserves n consecutive numbers of a series
func (g *GormSequenceGenerator) NextN(ctx context.Context, kind shared.DocumentKind, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unknown document series %q", kind))
	}

	var last int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]any{
				"seq":        gorm.Expr("document_sequences.seq + ?", n),
				"updated_at": now,
			}),
		}).Create(&models.DocumentSequenceModel{Kind: string(kind), Seq: int64(n), UpdatedAt: now}).Error; err != nil {
			return err
		}
		return tx.Model(&models.DocumentSequenceModel{}).
			Where("kind = ?", string(kind)).
			Select("seq").
			Scan(&last).Error
	})
	if err != nil {
		return nil, fmt.Errorf("advance %s sequence: %w", kind, err)
	}

	numbers := make([]string, n)
	first := last - int64(n) + 1
	for i := range numbers {
		numbers[i] = shared.FormatDocumentNumber(kind, first+int64(i))
	}
	return numbers, nil
}

// Ensure GormSequenceGenerator implements SequenceGenerator
var _ shared.SequenceGenerator = (*GormSequenceGenerator)(nil)
