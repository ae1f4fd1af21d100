package shared

import (
	"context"

	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/requisition"
	domainshared "github.com/sitestock/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the document and ledger
// repositories. Everything done through the repositories handed to fn is
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same transaction.
type TransactionalRepositories interface {
	Records() inventory.RecordRepository
	LedgerEntries() inventory.LedgerEntryRepository
	Items() catalog.ItemRepository
	MaterialRequests() requisition.Repository
	MaterialIssues() logistics.MaterialIssueRepository
	TransferOrders() logistics.TransferOrderRepository
	PurchaseOrders() procurement.PurchaseOrderRepository
	GoodsReceipts() receiving.GoodsReceiptRepository
	Sequences() domainshared.SequenceGenerator
}

// NoOpTransactionScope runs the function against fixed repositories
// without a transaction. Useful for tests with in-memory fakes.
type NoOpTransactionScope struct {
	repos TransactionalRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos TransactionalRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
