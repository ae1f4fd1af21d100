package receiving

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
)

// GoodsReceiptRepository persists GRNs
type GoodsReceiptRepository interface {
	Create(ctx context.Context, g *GoodsReceipt) error

	// SaveWithLock updates the GRN and its lines guarded by the version
	SaveWithLock(ctx context.Context, g *GoodsReceipt) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	FindByNumber(ctx context.Context, grnNo string) (*GoodsReceipt, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*GoodsReceipt, int64, error)

	// ReceivedByIssue sums receive quantities per upper-cased item code over
	// every GRN raised against a material issue
	ReceivedByIssue(ctx context.Context, materialIssueNo string) (map[string]decimal.Decimal, error)
}
