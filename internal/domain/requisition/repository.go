package requisition

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ReviewQuery selects requests visible to a reviewer
type ReviewQuery struct {
	RequesterRoles []identity.Role // empty means any role
	SiteID         *uuid.UUID      // limit to one site when set
	ExcludeAuthor  uuid.UUID       // never list the reviewer's own requests
	Status         Status          // empty means any status
}

// IssueStatusLine aggregates approved requests and issues for one item
type IssueStatusLine struct {
	ItemID       uuid.UUID
	ItemCode     string
	Description  string
	UOM          string
	RequestedQty decimal.Decimal
	IssuedQty    decimal.Decimal
	PendingQty   decimal.Decimal
}

// Repository persists material requests
type Repository interface {
	Create(ctx context.Context, mr *MaterialRequest) error

	// SaveWithLock updates the request guarded by its version
	SaveWithLock(ctx context.Context, mr *MaterialRequest) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialRequest, error)
	FindByNumber(ctx context.Context, requestNo string) (*MaterialRequest, error)
	FindForReview(ctx context.Context, q ReviewQuery, filter shared.Filter) ([]*MaterialRequest, int64, error)
	FindByRequester(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*MaterialRequest, int64, error)

	// FindApprovedWithoutPO lists approved requests whose number no purchase order references
	FindApprovedWithoutPO(ctx context.Context, filter shared.Filter) ([]*MaterialRequest, int64, error)

	// IssueStatus aggregates approved request quantities and issued quantities
	// per item for a site; nil site means the central warehouse
	IssueStatus(ctx context.Context, siteID *uuid.UUID) ([]IssueStatusLine, error)
}
