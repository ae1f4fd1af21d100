package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PurchaseOrderService handles the purchase order lifecycle
type PurchaseOrderService struct {
	txScope        appshared.TransactionScope
	orders         procurement.PurchaseOrderRepository
	users          identity.UserRepository
	sites          partner.SiteRepository
	suppliers      partner.SupplierRepository
	linker         appshared.DocumentLinker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	txScope appshared.TransactionScope,
	orders procurement.PurchaseOrderRepository,
	users identity.UserRepository,
	sites partner.SiteRepository,
	suppliers partner.SupplierRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		txScope:   txScope,
		orders:    orders,
		users:     users,
		sites:     sites,
		suppliers: suppliers,
		linker:    appshared.PathLinker{},
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDocumentLinker sets how pdfLink values are produced
func (s *PurchaseOrderService) SetDocumentLinker(linker appshared.DocumentLinker) {
	if linker != nil {
		s.linker = linker
	}
}

// Create raises a purchase order against an approved material request,
// together with the Supplied transfer order that tracks the delivery
func (s *PurchaseOrderService) Create(ctx context.Context, actorID uuid.UUID, req PurchaseOrderRequest) (*CreatePurchaseOrderResponse, error) {
	interState, err := s.interStateFunc(ctx, req)
	if err != nil {
		return nil, err
	}

	var po *procurement.PurchaseOrder
	var to *logistics.TransferOrder
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		if err := checkMaterialRequest(ctx, repos.MaterialRequests(), req.MaterialRequestNo); err != nil {
			return err
		}
		inputs, err := s.resolveItems(ctx, repos, req.Items)
		if err != nil {
			return err
		}

		orderNo, err := repos.Sequences().Next(ctx, shared.KindPurchaseOrder)
		if err != nil {
			return err
		}
		po, err = procurement.NewPurchaseOrder(orderNo, toHeader(req), actorID, inputs, interState)
		if err != nil {
			return err
		}
		link, err := s.linker.Link(ctx, string(shared.KindPurchaseOrder), po.PurchaseOrderNo)
		if err != nil {
			return fmt.Errorf("document link for %s: %w", po.PurchaseOrderNo, err)
		}
		po.SetPDFLink(link)
		if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}

		transferNo, err := repos.Sequences().Next(ctx, shared.KindTransferOrder)
		if err != nil {
			return err
		}
		to = logistics.NewTransferForPurchase(transferNo, po.PurchaseOrderNo, po.ID, po.ShipTo, actorID)
		if err := repos.TransferOrders().Create(ctx, to); err != nil {
			return fmt.Errorf("create transfer order for %s: %w", po.PurchaseOrderNo, err)
		}

		if err := recordPrices(ctx, repos, po); err != nil {
			return err
		}
		events.Collect(po)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	return &CreatePurchaseOrderResponse{
		PurchaseOrder:   ToPurchaseOrderResponse(po),
		TransferOrderID: to.ID,
		TransferNo:      to.TransferNo,
	}, nil
}

// Update replaces header and lines of an order that is not yet approved
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	interState, err := s.interStateFunc(ctx, req)
	if err != nil {
		return nil, err
	}

	var po *procurement.PurchaseOrder
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !po.CanModify() {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Purchase order %s can no longer be edited (status %s)", po.PurchaseOrderNo, po.Status))
		}
		inputs, err := s.resolveItems(ctx, repos, req.Items)
		if err != nil {
			return err
		}
		if err := po.Update(toHeader(req), inputs, interState); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		return recordPrices(ctx, repos, po)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Approve locks an order against edits
func (s *PurchaseOrderService) Approve(ctx context.Context, actorID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Approve(actorID)
	})
}

// Close ends an order; only admins may close
func (s *PurchaseOrderService) Close(ctx context.Context, actorID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, func(po *procurement.PurchaseOrder) error {
		return po.Close(actor.Role)
	})
}

// Delete removes several orders and their pending transfer orders. The batch
// is all or nothing: one approved, closed or received order fails it.
func (s *PurchaseOrderService) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return shared.NewValidationError("ids", "at least one id is required")
	}
	return s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		orders, err := repos.PurchaseOrders().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(orders) != len(uniqueIDs(ids)) {
			return shared.NewNotFoundError("purchase order", missingID(ids, orders).String())
		}
		for _, po := range orders {
			if !po.CanDelete() {
				return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Purchase order %s cannot be deleted (status %s)", po.PurchaseOrderNo, po.Status))
			}
		}
		for _, po := range orders {
			to, err := repos.TransferOrders().FindByReference(ctx, po.PurchaseOrderNo)
			switch {
			case err == nil && to.CanDelete():
				if err := repos.TransferOrders().Delete(ctx, to.ID); err != nil {
					return err
				}
			case err != nil && !errors.Is(err, shared.ErrNotFound):
				return err
			}
			if err := repos.PurchaseOrders().Delete(ctx, po.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves an order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetByNumber retrieves an order by its PO number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, orderNo string) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(orderNo)))
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// List lists orders
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	list, total, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseOrderResponse, len(list))
	for i, po := range list {
		out[i] = ToPurchaseOrderResponse(po)
	}
	return out, total, nil
}

// ItemsStatus lists order lines with their receipt progress. A site limits
// the view to orders shipped there; central lists warehouse orders.
func (s *PurchaseOrderService) ItemsStatus(ctx context.Context, siteID *uuid.UUID, central bool) ([]ItemStatusResponse, error) {
	lines, err := s.orders.ItemsStatus(ctx, siteID, central)
	if err != nil {
		return nil, err
	}
	out := make([]ItemStatusResponse, len(lines))
	for i, l := range lines {
		out[i] = ItemStatusResponse{
			PurchaseOrderNo: l.PurchaseOrderNo,
			ShipTo:          l.ShipTo,
			Item:            toItemResponse(l.Item),
		}
	}
	return out, nil
}

func (s *PurchaseOrderService) transition(ctx context.Context, orderID uuid.UUID, fn func(po *procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	var events appshared.EventCollector
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(po); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		events.Collect(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher)
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// interStateFunc loads the bill-to site and every supplier of the request.
// A supplier is inter-state when its state differs from the bill-to site's.
func (s *PurchaseOrderService) interStateFunc(ctx context.Context, req PurchaseOrderRequest) (procurement.InterStateFunc, error) {
	var billTo *partner.Site
	if req.BillTo != nil {
		site, err := s.sites.FindByID(ctx, *req.BillTo)
		if err != nil {
			return nil, err
		}
		billTo = site
	}
	if req.ShipTo != nil {
		if _, err := s.sites.FindByID(ctx, *req.ShipTo); err != nil {
			return nil, err
		}
	}

	suppliers := make(map[uuid.UUID]*partner.Supplier)
	for _, it := range req.Items {
		if _, ok := suppliers[it.Supplier]; ok || it.Supplier == uuid.Nil {
			continue
		}
		sup, err := s.suppliers.FindByID(ctx, it.Supplier)
		if err != nil {
			return nil, err
		}
		suppliers[it.Supplier] = sup
	}
	return func(supplierID uuid.UUID) bool {
		sup, ok := suppliers[supplierID]
		return ok && !sup.SameStateAs(billTo)
	}, nil
}

// resolveItems fills item attributes from the catalog by item code
func (s *PurchaseOrderService) resolveItems(ctx context.Context, repos appshared.TransactionalRepositories, in []PurchaseOrderItemInput) ([]procurement.ItemInput, error) {
	out := make([]procurement.ItemInput, len(in))
	for i, it := range in {
		code := strings.ToUpper(strings.TrimSpace(it.ItemCode))
		item, err := repos.Items().FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		out[i] = procurement.ItemInput{
			ItemID:       item.ID,
			ItemCode:     item.ItemCode,
			Category:     item.Category,
			Description:  item.Description,
			UOM:          item.UOM,
			RequestedQty: it.RequestedQty,
			PurchaseQty:  it.PurchaseQty,
			Price:        it.Price,
			GSTPercent:   it.GST,
			SupplierID:   it.Supplier,
		}
	}
	return out, nil
}

// checkMaterialRequest requires the referenced request to exist and be approved
func checkMaterialRequest(ctx context.Context, repo requisition.Repository, requestNo string) error {
	requestNo = strings.ToUpper(strings.TrimSpace(requestNo))
	if requestNo == "" {
		return shared.NewValidationError("materialRequestNo", "materialRequestNo is required")
	}
	mr, err := repo.FindByNumber(ctx, requestNo)
	if err != nil {
		return err
	}
	if mr.Status != requisition.StatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState, "material request "+mr.RequestNo+" is not approved")
	}
	return nil
}

// recordPrices remembers the latest price paid per item
func recordPrices(ctx context.Context, repos appshared.TransactionalRepositories, po *procurement.PurchaseOrder) error {
	for _, line := range po.Items {
		if !line.Price.IsPositive() {
			continue
		}
		item, err := repos.Items().FindByID(ctx, line.ItemID)
		if err != nil {
			return err
		}
		item.RecordPurchasePrice(line.Price)
		if err := repos.Items().Save(ctx, item); err != nil {
			return fmt.Errorf("record price of %s: %w", item.ItemCode, err)
		}
	}
	return nil
}

func toHeader(req PurchaseOrderRequest) procurement.Header {
	return procurement.Header{
		MaterialRequestNo: strings.ToUpper(strings.TrimSpace(req.MaterialRequestNo)),
		BillTo:            req.BillTo,
		ShipTo:            req.ShipTo,
		DeliveryDate:      req.DeliveryDate,
	}
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func missingID(ids []uuid.UUID, found []*procurement.PurchaseOrder) uuid.UUID {
	have := make(map[uuid.UUID]bool, len(found))
	for _, po := range found {
		have[po.ID] = true
	}
	for _, id := range ids {
		if !have[id] {
			return id
		}
	}
	return uuid.Nil
}
