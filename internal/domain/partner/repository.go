package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// SiteRepository defines the interface for site persistence
type SiteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Site, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Site, int64, error)
	// FindAllSites returns every site ordered by name; used by the inventory report
	FindAllSites(ctx context.Context) ([]*Site, error)
	Create(ctx context.Context, site *Site) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Supplier, int64, error)
	Create(ctx context.Context, supplier *Supplier) error
}
