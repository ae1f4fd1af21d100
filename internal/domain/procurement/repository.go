package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ItemStatusLine is one order line in the items-status view
type ItemStatusLine struct {
	PurchaseOrderNo string
	ShipTo          *uuid.UUID
	Item            PurchaseOrderItem
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock updates the order and its lines guarded by the version
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*PurchaseOrder, error)
	FindByNumber(ctx context.Context, orderNo string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*PurchaseOrder, int64, error)

	// ItemsStatus lists order lines; a nil siteID lists every order, a
	// central flag lists orders shipped to the warehouse
	ItemsStatus(ctx context.Context, shipTo *uuid.UUID, centralOnly bool) ([]ItemStatusLine, error)
}
