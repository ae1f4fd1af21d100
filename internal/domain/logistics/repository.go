package logistics

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// MaterialIssueRepository persists material issues
type MaterialIssueRepository interface {
	Create(ctx context.Context, mi *MaterialIssue) error

	// SaveWithLock updates the issue guarded by its version
	SaveWithLock(ctx context.Context, mi *MaterialIssue) error

	FindByID(ctx context.Context, id uuid.UUID) (*MaterialIssue, error)
	FindByNumber(ctx context.Context, issueNumber string) (*MaterialIssue, error)
	FindByIssuer(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*MaterialIssue, int64, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*MaterialIssue, int64, error)
}

// TransferOrderRepository persists transfer orders
type TransferOrderRepository interface {
	Create(ctx context.Context, to *TransferOrder) error
	Save(ctx context.Context, to *TransferOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*TransferOrder, error)
	FindByReference(ctx context.Context, referenceNo string) (*TransferOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*TransferOrder, int64, error)
}
