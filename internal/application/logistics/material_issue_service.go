package logistics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaterialIssueService handles dispatching materials to sites
type MaterialIssueService struct {
	txScope        appshared.TransactionScope
	issues         logistics.MaterialIssueRepository
	users          identity.UserRepository
	sites          partner.SiteRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewMaterialIssueService creates a new MaterialIssueService
func NewMaterialIssueService(
	txScope appshared.TransactionScope,
	issues logistics.MaterialIssueRepository,
	users identity.UserRepository,
	sites partner.SiteRepository,
	logger *zap.Logger,
) *MaterialIssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialIssueService{
		txScope: txScope,
		issues:  issues,
		users:   users,
		sites:   sites,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MaterialIssueService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create issues materials from the issuer's location. Every line is checked
// against inHand first and the whole issue fails if any line is short. When
// a vehicle is given a companion transfer order is created with it.
func (s *MaterialIssueService) Create(ctx context.Context, issuerID uuid.UUID, req CreateMaterialIssueRequest) (*CreateMaterialIssueResponse, error) {
	issuer, err := s.users.FindByID(ctx, issuerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sites.FindByID(ctx, req.IssuedTo); err != nil {
		return nil, err
	}
	from := inventory.LocationFor(issuer.SiteID)

	var mi *logistics.MaterialIssue
	var to *logistics.TransferOrder
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		to = nil

		ids := make([]uuid.UUID, len(req.Items))
		for i, in := range req.Items {
			ids[i] = in.ItemID
		}
		items, err := repos.Items().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		lines := make([]logistics.IssueItem, len(req.Items))
		for i, in := range req.Items {
			item, ok := items[in.ItemID]
			if !ok {
				return shared.NewNotFoundError("item", in.ItemID.String())
			}
			lines[i] = logistics.IssueItem{
				ItemID:      item.ID,
				ItemCode:    item.ItemCode,
				Description: item.Description,
				UOM:         item.UOM,
				Category:    item.Category,
				IssueQty:    in.IssueQty,
			}
		}

		issueNo, err := repos.Sequences().Next(ctx, shared.KindMaterialIssue)
		if err != nil {
			return err
		}
		mi, err = logistics.NewMaterialIssue(issueNo, issuer, issuer.SiteID, req.IssuedTo, lines, logistics.Shipment{
			VehicleNo:    strings.TrimSpace(req.VehicleNo),
			ExitDateTime: req.ExitDateTime,
			Destination:  req.Destination,
		})
		if err != nil {
			return err
		}

		totals := issueTotals(mi)
		if err := checkStock(ctx, repos.Records(), from, totals, items); err != nil {
			return err
		}

		if mi.NeedsTransferOrder() {
			transferNo, err := repos.Sequences().Next(ctx, shared.KindTransferOrder)
			if err != nil {
				return err
			}
			to = logistics.NewTransferForIssue(transferNo, mi)
			mi.LinkTransferOrder(to)
		}
		if err := repos.MaterialIssues().Create(ctx, mi); err != nil {
			return err
		}
		if to != nil {
			if err := repos.TransferOrders().Create(ctx, to); err != nil {
				return fmt.Errorf("create transfer order for %s: %w", mi.IssueNumber, err)
			}
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), issuer.ID)
		src := inventory.Source{Type: inventory.SourceMaterialIssue, ID: mi.ID, No: mi.IssueNumber}
		for _, itemID := range sortedKeys(totals) {
			if _, err := ledger.ApplyIssue(ctx, itemID, from, totals[itemID], src); err != nil {
				return fmt.Errorf("issue %s: %w", mi.IssueNumber, err)
			}
		}
		events.Collect(mi)
		events.Add(ledger.Events()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	resp := &CreateMaterialIssueResponse{MaterialIssue: ToMaterialIssueResponse(mi)}
	if to != nil {
		t := ToTransferOrderResponse(to)
		resp.TransferOrder = &t
	}
	return resp, nil
}

// Update amends shipment details and line quantities. Ledger counters are
// not adjusted for quantity changes.
func (s *MaterialIssueService) Update(ctx context.Context, actorID, issueID uuid.UUID, req UpdateMaterialIssueRequest) (*MaterialIssueResponse, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var mi *logistics.MaterialIssue
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		mi, err = repos.MaterialIssues().FindByID(ctx, issueID)
		if err != nil {
			return err
		}
		if mi.IssuedBy != actor.ID && actor.Role != identity.RoleAdmin {
			return shared.NewDomainError(shared.CodeForbidden, "only the issuer can edit material issue "+mi.IssueNumber)
		}

		mi.UpdateShipment(logistics.Shipment{
			VehicleNo:    strings.TrimSpace(req.VehicleNo),
			ExitDateTime: req.ExitDateTime,
			Destination:  req.Destination,
		})
		if len(req.Items) > 0 {
			qty := make(map[string]decimal.Decimal, len(req.Items))
			for _, in := range req.Items {
				qty[strings.ToUpper(strings.TrimSpace(in.ItemCode))] = in.IssueQty
			}
			if err := mi.UpdateQuantities(qty); err != nil {
				return err
			}
		}

		var to *logistics.TransferOrder
		if mi.NeedsTransferOrder() && mi.Shipment.TransferOrderID == nil {
			transferNo, err := repos.Sequences().Next(ctx, shared.KindTransferOrder)
			if err != nil {
				return err
			}
			to = logistics.NewTransferForIssue(transferNo, mi)
			mi.LinkTransferOrder(to)
		}
		if err := repos.MaterialIssues().SaveWithLock(ctx, mi); err != nil {
			return err
		}
		if to != nil {
			if err := repos.TransferOrders().Create(ctx, to); err != nil {
				return fmt.Errorf("create transfer order for %s: %w", mi.IssueNumber, err)
			}
		}
		events.Collect(mi)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	resp := ToMaterialIssueResponse(mi)
	return &resp, nil
}

// GetByID retrieves an issue by ID
func (s *MaterialIssueService) GetByID(ctx context.Context, id uuid.UUID) (*MaterialIssueResponse, error) {
	mi, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMaterialIssueResponse(mi)
	return &resp, nil
}

// GetByNumber retrieves an issue by its MI number
func (s *MaterialIssueService) GetByNumber(ctx context.Context, issueNumber string) (*MaterialIssueResponse, error) {
	mi, err := s.issues.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(issueNumber)))
	if err != nil {
		return nil, err
	}
	resp := ToMaterialIssueResponse(mi)
	return &resp, nil
}

// ListMine lists the issues a user created
func (s *MaterialIssueService) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]MaterialIssueResponse, int64, error) {
	list, total, err := s.issues.FindByIssuer(ctx, userID, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return toIssueResponses(list), total, nil
}

// List lists every issue
func (s *MaterialIssueService) List(ctx context.Context, filter ListFilter) ([]MaterialIssueResponse, int64, error) {
	list, total, err := s.issues.FindAll(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return toIssueResponses(list), total, nil
}

// checkStock verifies every line before any ledger write so a short line
// leaves every record untouched
func checkStock(ctx context.Context, records inventory.RecordRepository, from inventory.Location, totals map[uuid.UUID]decimal.Decimal, items map[uuid.UUID]*catalog.Item) error {
	ids := sortedKeys(totals)
	current, err := records.FindByItems(ctx, from, ids)
	if err != nil {
		return err
	}
	short := make([]string, 0)
	for _, id := range ids {
		inHand := decimal.Zero
		if r, ok := current[id]; ok {
			inHand = r.InHand
		}
		if inHand.LessThan(totals[id]) {
			short = append(short, fmt.Sprintf("%s (in hand %s, requested %s)", items[id].ItemCode, inHand.String(), totals[id].String()))
		}
	}
	if len(short) > 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock, "Insufficient stock for "+strings.Join(short, ", "))
	}
	return nil
}

func issueTotals(mi *logistics.MaterialIssue) map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal, len(mi.Items))
	for _, it := range mi.Items {
		totals[it.ItemID] = totals[it.ItemID].Add(it.IssueQty)
	}
	return totals
}

// sortedKeys fixes the order records are touched in so concurrent issues
// lock rows in the same order
func sortedKeys(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func toIssueResponses(list []*logistics.MaterialIssue) []MaterialIssueResponse {
	out := make([]MaterialIssueResponse, len(list))
	for i, mi := range list {
		out[i] = ToMaterialIssueResponse(mi)
	}
	return out
}

func toFilter(f ListFilter) shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}
