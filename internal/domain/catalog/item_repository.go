package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByCode finds an item by its code
	FindByCode(ctx context.Context, code string) (*Item, error)

	// FindByIDs loads several items keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Item, error)

	// FindAll returns items matching the filter; Search matches code or description
	FindAll(ctx context.Context, filter shared.Filter) ([]*Item, int64, error)

	// Create inserts items; a duplicate code fails the whole batch
	Create(ctx context.Context, items ...*Item) error

	// Save updates an existing item
	Save(ctx context.Context, item *Item) error
}
