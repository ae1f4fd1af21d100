package logistics

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/shared"
)

// TransferOrderService handles transfer order queries and administration
type TransferOrderService struct {
	txScope   appshared.TransactionScope
	transfers logistics.TransferOrderRepository
}

// NewTransferOrderService creates a new TransferOrderService
func NewTransferOrderService(txScope appshared.TransactionScope, transfers logistics.TransferOrderRepository) *TransferOrderService {
	return &TransferOrderService{txScope: txScope, transfers: transfers}
}

// GetByID retrieves a transfer order by ID
func (s *TransferOrderService) GetByID(ctx context.Context, id uuid.UUID) (*TransferOrderResponse, error) {
	to, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransferOrderResponse(to)
	return &resp, nil
}

// GetByReference retrieves the transfer order of a material issue or purchase order number
func (s *TransferOrderService) GetByReference(ctx context.Context, referenceNo string) (*TransferOrderResponse, error) {
	to, err := s.transfers.FindByReference(ctx, strings.ToUpper(strings.TrimSpace(referenceNo)))
	if err != nil {
		return nil, err
	}
	resp := ToTransferOrderResponse(to)
	return &resp, nil
}

// List lists transfer orders
func (s *TransferOrderService) List(ctx context.Context, filter ListFilter) ([]TransferOrderResponse, int64, error) {
	list, total, err := s.transfers.FindAll(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out := make([]TransferOrderResponse, len(list))
	for i, to := range list {
		out[i] = ToTransferOrderResponse(to)
	}
	return out, total, nil
}

// Approve marks a transfer order delivered
func (s *TransferOrderService) Approve(ctx context.Context, id uuid.UUID) (*TransferOrderResponse, error) {
	var to *logistics.TransferOrder
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		to, err = repos.TransferOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := to.Approve(); err != nil {
			return err
		}
		return repos.TransferOrders().Save(ctx, to)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransferOrderResponse(to)
	return &resp, nil
}

// Delete removes a pending transfer order and unlinks it from its material issue
func (s *TransferOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		to, err := repos.TransferOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !to.CanDelete() {
			return shared.NewDomainError(shared.CodeInvalidState, "transfer order "+to.TransferNo+" is approved and cannot be deleted")
		}
		if to.MaterialIssueID != nil {
			mi, err := repos.MaterialIssues().FindByID(ctx, *to.MaterialIssueID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if mi != nil {
				mi.UnlinkTransferOrder()
				if err := repos.MaterialIssues().SaveWithLock(ctx, mi); err != nil {
					return err
				}
			}
		}
		return repos.TransferOrders().Delete(ctx, to.ID)
	})
}
