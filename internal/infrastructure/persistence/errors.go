package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps driver errors onto domain errors
func translateError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.CodeNotFound, resource+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeAlreadyExists, resource+" already exists")
	}
	return err
}

// updateVersioned writes fields to the aggregate row only while the stored
// version still equals agg.Version, then bumps the in-memory version.
func updateVersioned(tx *gorm.DB, model any, agg *shared.BaseAggregateRoot, resource string, fields map[string]any) error {
	var current int
	res := tx.Model(model).Where("id = ?", agg.ID).Select("version").Scan(&current)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(resource, agg.ID.String())
	}
	if current != agg.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("%s was modified by another user", resource))
	}

	next := current + 1
	now := time.Now()
	fields["version"] = next
	fields["updated_at"] = now

	res = tx.Model(model).Where("id = ? AND version = ?", agg.ID, current).Updates(fields)
	if res.Error != nil {
		return translateError(res.Error, resource)
	}
	if res.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("%s was modified by another user", resource))
	}
	agg.Version = next
	agg.UpdatedAt = now
	return nil
}

// lineIDs returns the ids of document lines
func lineIDs[T any](lines []T, id func(T) uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = id(l)
	}
	return ids
}

// replaceLines makes the stored lines of a document equal to lines: rows no
// longer present are deleted and the rest are upserted by id.
func replaceLines[T any](tx *gorm.DB, lines []T, foreignKey string, parentID uuid.UUID, ids []uuid.UUID) error {
	var zero T
	del := tx.Where(foreignKey+" = ?", parentID)
	if len(ids) > 0 {
		del = del.Where("id NOT IN ?", ids)
	}
	if err := del.Delete(&zero).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&lines).Error
}
