package requisition

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles the material request workflow
type Service struct {
	txScope        appshared.TransactionScope
	requests       requisition.Repository
	users          identity.UserRepository
	items          catalog.ItemRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new material request Service
func NewService(
	txScope appshared.TransactionScope,
	requests requisition.Repository,
	users identity.UserRepository,
	items catalog.ItemRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:  txScope,
		requests: requests,
		users:    users,
		items:    items,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create raises a material request addressed to the requester's approver and
// books every line into the requester's inventory record
func (s *Service) Create(ctx context.Context, requesterID uuid.UUID, req CreateMaterialRequestRequest) (*MaterialRequestResponse, error) {
	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	rule, ok := identity.HierarchyFor(requester.Role)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeForbidden, "role "+requester.Role.String()+" cannot raise material requests")
	}
	reviewer, err := s.resolveReviewer(ctx, rule, requester)
	if err != nil {
		return nil, err
	}

	lines := make([]requisition.RequestItem, len(req.Items))
	for i, in := range req.Items {
		lines[i] = requisition.RequestItem{ItemID: in.ItemID, RequestedQty: in.RequestedQty}
	}

	var mr *requisition.MaterialRequest
	var items map[uuid.UUID]*catalog.Item
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		items, err = loadItems(ctx, repos.Items(), lines)
		if err != nil {
			return err
		}
		requestNo, err := repos.Sequences().Next(ctx, shared.KindMaterialRequest)
		if err != nil {
			return err
		}
		mr, err = requisition.NewMaterialRequest(requestNo, requester, reviewer, lines)
		if err != nil {
			return err
		}
		if err := repos.MaterialRequests().Create(ctx, mr); err != nil {
			return err
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), requester.ID)
		loc := inventory.LocationFor(mr.SiteID)
		src := source(mr)
		for itemID, qty := range mr.TotalsByItem() {
			if _, err := ledger.ApplyRequest(ctx, itemID, loc, qty, mr.IsTopOfChain(), src); err != nil {
				return fmt.Errorf("book request %s: %w", mr.RequestNo, err)
			}
		}
		events.Collect(mr)
		events.Add(ledger.Events()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	resp := ToMaterialRequestResponse(mr, items)
	return &resp, nil
}

// Approve approves a pending request. Approving a top-of-chain request moves
// its pipeline quantities into the actionable request counter.
func (s *Service) Approve(ctx context.Context, approverID, requestID uuid.UUID) (*MaterialRequestResponse, error) {
	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return nil, err
	}

	var mr *requisition.MaterialRequest
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		mr, err = repos.MaterialRequests().FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := mr.Approve(approver); err != nil {
			return err
		}
		if err := repos.MaterialRequests().SaveWithLock(ctx, mr); err != nil {
			return err
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), approver.ID)
		if mr.IsTopOfChain() {
			loc := inventory.LocationFor(mr.SiteID)
			src := source(mr)
			for itemID, qty := range mr.TotalsByItem() {
				if _, err := ledger.ApproveRequestTransfer(ctx, itemID, loc, qty, src); err != nil {
					return fmt.Errorf("transfer request %s: %w", mr.RequestNo, err)
				}
			}
		}
		events.Collect(mr)
		events.Add(ledger.Events()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	return s.toResponse(ctx, mr)
}

// Delete withdraws a pending request and reverses its ledger effect. Only
// the author or an admin may delete.
func (s *Service) Delete(ctx context.Context, actorID, requestID uuid.UUID) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}

	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		mr, err := repos.MaterialRequests().FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if mr.RequestedBy != actor.ID && actor.Role != identity.RoleAdmin {
			return shared.NewDomainError(shared.CodeForbidden, "only the author can delete material request "+mr.RequestNo)
		}
		if !mr.CanDelete() {
			return shared.NewDomainError(shared.CodeInvalidState, "material request "+mr.RequestNo+" is "+string(mr.Status)+" and cannot be deleted")
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), actor.ID)
		if _, err := ledger.RevertSource(ctx, inventory.SourceMaterialRequest, mr.ID); err != nil {
			return err
		}
		events.Add(ledger.Events()...)
		return repos.MaterialRequests().Delete(ctx, mr.ID)
	})
	if err != nil {
		return err
	}
	events.Publish(ctx, s.eventPublisher)
	return nil
}

// GetByID retrieves a request by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*MaterialRequestResponse, error) {
	mr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, mr)
}

// GetByNumber retrieves a request by its MR number
func (s *Service) GetByNumber(ctx context.Context, requestNo string) (*MaterialRequestResponse, error) {
	mr, err := s.requests.FindByNumber(ctx, requestNo)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, mr)
}

// ListForReviewer lists the requests addressed to a reviewer's role, never
// including the reviewer's own. Admins see every request.
func (s *Service) ListForReviewer(ctx context.Context, reviewerID uuid.UUID, filter MaterialRequestListFilter) ([]MaterialRequestResponse, int64, error) {
	reviewer, err := s.users.FindByID(ctx, reviewerID)
	if err != nil {
		return nil, 0, err
	}

	q := requisition.ReviewQuery{
		ExcludeAuthor: reviewer.ID,
		Status:        requisition.Status(filter.Status),
	}
	if reviewer.Role != identity.RoleAdmin {
		q.RequesterRoles = identity.ReviewerOf(reviewer.Role)
		if len(q.RequesterRoles) == 0 {
			return []MaterialRequestResponse{}, 0, nil
		}
		for _, role := range q.RequesterRoles {
			if rule, _ := identity.HierarchyFor(role); rule.Scope == identity.ScopeSameSite {
				if reviewer.SiteID == nil {
					return []MaterialRequestResponse{}, 0, nil
				}
				q.SiteID = reviewer.SiteID
			}
		}
	}

	list, total, err := s.requests.FindForReview(ctx, q, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, list, total)
}

// ListApproved lists approved requests visible to a reviewer
func (s *Service) ListApproved(ctx context.Context, reviewerID uuid.UUID, filter MaterialRequestListFilter) ([]MaterialRequestResponse, int64, error) {
	filter.Status = string(requisition.StatusApproved)
	return s.ListForReviewer(ctx, reviewerID, filter)
}

// ListMine lists the requests a user raised
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, filter MaterialRequestListFilter) ([]MaterialRequestResponse, int64, error) {
	list, total, err := s.requests.FindByRequester(ctx, userID, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, list, total)
}

// ApprovedWithoutPO lists approved requests no purchase order was raised for yet
func (s *Service) ApprovedWithoutPO(ctx context.Context, filter MaterialRequestListFilter) ([]MaterialRequestResponse, int64, error) {
	list, total, err := s.requests.FindApprovedWithoutPO(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return s.toResponses(ctx, list, total)
}

// IssueStatus aggregates approved requests raised at a site (nil for the
// central warehouse) against what was issued, per item
func (s *Service) IssueStatus(ctx context.Context, siteID *uuid.UUID) ([]IssueStatusResponse, error) {
	lines, err := s.requests.IssueStatus(ctx, siteID)
	if err != nil {
		return nil, err
	}
	out := make([]IssueStatusResponse, len(lines))
	for i, l := range lines {
		pending := l.RequestedQty.Sub(l.IssuedQty)
		if pending.IsNegative() {
			pending = decimal.Zero
		}
		out[i] = IssueStatusResponse{
			ItemID:       l.ItemID,
			ItemCode:     l.ItemCode,
			Description:  l.Description,
			UOM:          l.UOM,
			RequestedQty: l.RequestedQty,
			IssuedQty:    l.IssuedQty,
			PendingQty:   pending,
		}
	}
	return out, nil
}

// resolveReviewer picks the user a new request is addressed to. When no
// holder of the approver role exists the request is left unaddressed and any
// future holder may act on it.
func (s *Service) resolveReviewer(ctx context.Context, rule identity.HierarchyRule, requester *identity.User) (*uuid.UUID, error) {
	var site *uuid.UUID
	if rule.Scope == identity.ScopeSameSite {
		if requester.SiteID == nil {
			return nil, shared.NewValidationError("siteId", "requester is not assigned to a site")
		}
		site = requester.SiteID
	}
	candidates, err := s.users.FindByRole(ctx, rule.Approver, site)
	if err != nil {
		return nil, fmt.Errorf("resolve reviewer: %w", err)
	}
	for _, u := range candidates {
		if u.IsActive() && u.ID != requester.ID {
			id := u.ID
			return &id, nil
		}
	}
	s.logger.Warn("No reviewer found for material request",
		zap.String("approver_role", rule.Approver.String()),
		zap.String("requester_id", requester.ID.String()))
	return nil, nil
}

func (s *Service) toResponse(ctx context.Context, mr *requisition.MaterialRequest) (*MaterialRequestResponse, error) {
	items, err := s.items.FindByIDs(ctx, itemIDs(mr))
	if err != nil {
		return nil, err
	}
	resp := ToMaterialRequestResponse(mr, items)
	return &resp, nil
}

func (s *Service) toResponses(ctx context.Context, list []*requisition.MaterialRequest, total int64) ([]MaterialRequestResponse, int64, error) {
	ids := itemIDs(list...)
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MaterialRequestResponse, len(list))
	for i, mr := range list {
		out[i] = ToMaterialRequestResponse(mr, items)
	}
	return out, total, nil
}

func loadItems(ctx context.Context, repo catalog.ItemRepository, lines []requisition.RequestItem) (map[uuid.UUID]*catalog.Item, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	items, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := items[id]; !ok {
			return nil, shared.NewNotFoundError("item", id.String())
		}
	}
	return items, nil
}

func itemIDs(list ...*requisition.MaterialRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, mr := range list {
		for _, it := range mr.Items {
			if !seen[it.ItemID] {
				seen[it.ItemID] = true
				ids = append(ids, it.ItemID)
			}
		}
	}
	return ids
}

func source(mr *requisition.MaterialRequest) inventory.Source {
	return inventory.Source{Type: inventory.SourceMaterialRequest, ID: mr.ID, No: mr.RequestNo}
}

func toFilter(f MaterialRequestListFilter) shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}.Normalize()
}
