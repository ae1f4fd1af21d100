package receiving

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSourceLockTTL bounds how long one GRN write may hold its source lock
const DefaultSourceLockTTL = 30 * time.Second

// GoodsReceiptService books goods receipts against purchase orders and
// material issues. Every write reverts the receipt's previous effects and
// applies the new ones inside one transaction, so repeated edits never
// double count.
type GoodsReceiptService struct {
	txScope        appshared.TransactionScope
	receipts       receiving.GoodsReceiptRepository
	users          identity.UserRepository
	suppliers      partner.SupplierRepository
	locker         appshared.Locker
	lockTTL        time.Duration
	linker         appshared.DocumentLinker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewGoodsReceiptService creates a new GoodsReceiptService
func NewGoodsReceiptService(
	txScope appshared.TransactionScope,
	receipts receiving.GoodsReceiptRepository,
	users identity.UserRepository,
	suppliers partner.SupplierRepository,
	logger *zap.Logger,
) *GoodsReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoodsReceiptService{
		txScope:   txScope,
		receipts:  receipts,
		users:     users,
		suppliers: suppliers,
		locker:    appshared.NoopLocker{},
		lockTTL:   DefaultSourceLockTTL,
		linker:    appshared.PathLinker{},
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *GoodsReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLocker serializes writes per source document across instances
func (s *GoodsReceiptService) SetLocker(locker appshared.Locker, ttl time.Duration) {
	if locker == nil {
		return
	}
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// SetDocumentLinker sets how pdfLink values are produced
func (s *GoodsReceiptService) SetDocumentLinker(linker appshared.DocumentLinker) {
	if linker != nil {
		s.linker = linker
	}
}

// Create books a new goods receipt
func (s *GoodsReceiptService) Create(ctx context.Context, actorID uuid.UUID, req GoodsReceiptRequest) (*ReceiptResult, error) {
	by, details, err := s.prepare(ctx, actorID, req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockSources(ctx, sourceKey(details.Type, details.PurchaseOrderNo, details.MaterialIssueNo))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *ReceiptResult
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		result = &ReceiptResult{}

		if err := resolveItemIDs(ctx, repos, &details); err != nil {
			return err
		}
		grnNo, err := repos.Sequences().Next(ctx, shared.KindGoodsReceipt)
		if err != nil {
			return err
		}
		g, err := receiving.NewGoodsReceipt(grnNo, details, by)
		if err != nil {
			return err
		}

		if g.Type == receiving.TypeSupplied {
			po, err := repos.PurchaseOrders().FindByNumber(ctx, g.PurchaseOrderNo)
			if err != nil {
				return err
			}
			if err := po.ApplyReceipt(g.Quantities()); err != nil {
				return err
			}
			if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
				return err
			}
			result.PurchaseOrderStatus = string(po.Status)
			events.Collect(po)
		}

		link, err := s.linker.Link(ctx, string(shared.KindGoodsReceipt), g.GRNNo)
		if err != nil {
			return fmt.Errorf("document link for %s: %w", g.GRNNo, err)
		}
		g.SetPDFLink(link)
		if err := repos.GoodsReceipts().Create(ctx, g); err != nil {
			return err
		}

		if g.Type == receiving.TypeTransferred {
			if err := s.refreshIssue(ctx, repos, g.MaterialIssueNo, true, result, &events); err != nil {
				return err
			}
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), actorID)
		if err := applyLedger(ctx, ledger, g); err != nil {
			s.logger.Error("Goods receipt ledger posting failed",
				zap.String("grn_no", g.GRNNo), zap.String("source_no", g.SourceNo()), zap.Error(err))
			return err
		}

		events.Collect(g)
		events.Add(ledger.Events()...)
		result.GoodsReceipt = ToGoodsReceiptResponse(g)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	return result, nil
}

// Update replaces a receipt under the same GRN number. The previous effects
// on the purchase order and the ledger are reverted before the new ones are
// applied; over-receipt checks use the net change so resubmitting the same
// quantities always succeeds.
func (s *GoodsReceiptService) Update(ctx context.Context, actorID, receiptID uuid.UUID, req GoodsReceiptRequest) (*ReceiptResult, error) {
	by, details, err := s.prepare(ctx, actorID, req)
	if err != nil {
		return nil, err
	}
	current, err := s.receipts.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockSources(ctx,
		sourceKey(current.Type, current.PurchaseOrderNo, current.MaterialIssueNo),
		sourceKey(details.Type, details.PurchaseOrderNo, details.MaterialIssueNo))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *ReceiptResult
	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		result = &ReceiptResult{}

		g, err := repos.GoodsReceipts().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		oldType := g.Type
		oldPONo := g.PurchaseOrderNo
		oldMINo := g.MaterialIssueNo
		oldQty := g.Quantities()

		if err := resolveItemIDs(ctx, repos, &details); err != nil {
			return err
		}
		if err := g.Replace(details, by); err != nil {
			return err
		}

		if err := s.reconcileOrders(ctx, repos, oldType, oldPONo, oldQty, g, result, &events); err != nil {
			return err
		}

		if err := repos.GoodsReceipts().SaveWithLock(ctx, g); err != nil {
			return err
		}

		if oldType == receiving.TypeTransferred && (g.Type != receiving.TypeTransferred || oldMINo != g.MaterialIssueNo) {
			if err := s.refreshIssue(ctx, repos, oldMINo, false, nil, &events); err != nil {
				return err
			}
		}
		if g.Type == receiving.TypeTransferred {
			if err := s.refreshIssue(ctx, repos, g.MaterialIssueNo, true, result, &events); err != nil {
				return err
			}
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), actorID)
		if _, err := ledger.RevertSource(ctx, inventory.SourceGoodsReceipt, g.ID); err != nil {
			s.logger.Error("Goods receipt ledger revert failed", zap.String("grn_no", g.GRNNo), zap.Error(err))
			return err
		}
		if err := applyLedger(ctx, ledger, g); err != nil {
			s.logger.Error("Goods receipt ledger posting failed", zap.String("grn_no", g.GRNNo), zap.Error(err))
			return err
		}

		events.Collect(g)
		events.Add(ledger.Events()...)
		result.GoodsReceipt = ToGoodsReceiptResponse(g)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	return result, nil
}

// Delete reverts every effect of a receipt and removes it
func (s *GoodsReceiptService) Delete(ctx context.Context, actorID, receiptID uuid.UUID) error {
	current, err := s.receipts.FindByID(ctx, receiptID)
	if err != nil {
		return err
	}
	unlock, err := s.lockSources(ctx, sourceKey(current.Type, current.PurchaseOrderNo, current.MaterialIssueNo))
	if err != nil {
		return err
	}
	defer unlock()

	var events appshared.EventCollector
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		g, err := repos.GoodsReceipts().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}

		if g.Type == receiving.TypeSupplied {
			po, err := repos.PurchaseOrders().FindByNumber(ctx, g.PurchaseOrderNo)
			switch {
			case err == nil:
				po.RevertReceipt(g.Quantities())
				if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
					return err
				}
				events.Collect(po)
			case errors.Is(err, shared.ErrNotFound):
				s.logger.Warn("Purchase order of deleted goods receipt is gone",
					zap.String("grn_no", g.GRNNo), zap.String("purchase_order_no", g.PurchaseOrderNo))
			default:
				return err
			}
		}

		ledger := appinventory.NewLedger(repos.Records(), repos.LedgerEntries(), actorID)
		if _, err := ledger.RevertSource(ctx, inventory.SourceGoodsReceipt, g.ID); err != nil {
			s.logger.Error("Goods receipt ledger revert failed", zap.String("grn_no", g.GRNNo), zap.Error(err))
			return err
		}

		if err := repos.GoodsReceipts().Delete(ctx, g.ID); err != nil {
			return err
		}
		if g.Type == receiving.TypeTransferred {
			if err := s.refreshIssue(ctx, repos, g.MaterialIssueNo, false, nil, &events); err != nil {
				return err
			}
		}

		events.Add(receiving.NewGoodsReceiptRecordedEvent(g, receiving.EventTypeGoodsReceiptDeleted))
		events.Add(ledger.Events()...)
		return nil
	})
	if err != nil {
		return err
	}
	events.Publish(ctx, s.eventPublisher)
	return nil
}

// GetByID retrieves a receipt by ID
func (s *GoodsReceiptService) GetByID(ctx context.Context, id uuid.UUID) (*GoodsReceiptResponse, error) {
	g, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToGoodsReceiptResponse(g)
	return &resp, nil
}

// GetByNumber retrieves a receipt by its GRN number
func (s *GoodsReceiptService) GetByNumber(ctx context.Context, grnNo string) (*GoodsReceiptResponse, error) {
	g, err := s.receipts.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(grnNo)))
	if err != nil {
		return nil, err
	}
	resp := ToGoodsReceiptResponse(g)
	return &resp, nil
}

// List lists receipts
func (s *GoodsReceiptService) List(ctx context.Context, filter GoodsReceiptListFilter) ([]GoodsReceiptResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Type != "" {
		f.Filters["type"] = filter.Type
	}
	list, total, err := s.receipts.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]GoodsReceiptResponse, len(list))
	for i, g := range list {
		out[i] = ToGoodsReceiptResponse(g)
	}
	return out, total, nil
}

// prepare loads the receiver and supplier and validates the request before
// any lock or write
func (s *GoodsReceiptService) prepare(ctx context.Context, actorID uuid.UUID, req GoodsReceiptRequest) (receiving.Receiver, receiving.Details, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return receiving.Receiver{}, receiving.Details{}, err
	}
	by := receiving.Receiver{
		Name:   strings.TrimSpace(req.ReceivedBy),
		UserID: actor.ID,
		Role:   actor.Role,
		SiteID: actor.SiteID,
	}
	if by.Name == "" {
		by.Name = actor.Name
	}

	details := toDetails(req, "")
	if err := receiving.Validate(details); err != nil {
		return by, details, err
	}
	supplier, err := s.suppliers.FindByID(ctx, *details.SupplierID)
	if err != nil {
		return by, details, err
	}
	details.SupplierName = supplier.SupplierName
	details.MaterialIssueNo = strings.ToUpper(strings.TrimSpace(details.MaterialIssueNo))
	details.PurchaseOrderNo = strings.ToUpper(strings.TrimSpace(details.PurchaseOrderNo))
	return by, details, nil
}

// reconcileOrders moves the receipt's purchase order effect from the old
// order and quantities to the new ones
func (s *GoodsReceiptService) reconcileOrders(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	oldType receiving.ReceiptType,
	oldPONo string,
	oldQty map[string]decimal.Decimal,
	g *receiving.GoodsReceipt,
	result *ReceiptResult,
	events *appshared.EventCollector,
) error {
	oldSupplied := oldType == receiving.TypeSupplied
	newSupplied := g.Type == receiving.TypeSupplied
	samePO := oldSupplied && newSupplied && oldPONo == g.PurchaseOrderNo

	if oldSupplied && !samePO {
		old, err := repos.PurchaseOrders().FindByNumber(ctx, oldPONo)
		switch {
		case err == nil:
			old.RevertReceipt(oldQty)
			if err := repos.PurchaseOrders().SaveWithLock(ctx, old); err != nil {
				return err
			}
			events.Collect(old)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}
	}
	if !newSupplied {
		return nil
	}

	po, err := repos.PurchaseOrders().FindByNumber(ctx, g.PurchaseOrderNo)
	if err != nil {
		return err
	}
	var previous map[string]decimal.Decimal
	if samePO {
		previous = oldQty
	}
	newQty := g.Quantities()
	if err := po.ValidateReceipt(newQty, previous); err != nil {
		return err
	}
	if previous != nil {
		po.RevertReceipt(previous)
	}
	if err := po.ApplyReceipt(newQty); err != nil {
		return err
	}
	if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
		return err
	}
	result.PurchaseOrderStatus = string(po.Status)
	events.Collect(po)
	return nil
}

// refreshIssue recomputes the inward status of a material issue from every
// receipt stored against it. With check set, totals above the issued
// quantity are rejected. Once the issue is fully received its pending
// transfer order is approved.
func (s *GoodsReceiptService) refreshIssue(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	issueNo string,
	check bool,
	result *ReceiptResult,
	events *appshared.EventCollector,
) error {
	mi, err := repos.MaterialIssues().FindByNumber(ctx, issueNo)
	if err != nil {
		if !check && errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	received, err := repos.GoodsReceipts().ReceivedByIssue(ctx, mi.IssueNumber)
	if err != nil {
		return err
	}
	if check {
		if err := checkIssueTotals(mi, received); err != nil {
			return err
		}
	}

	before := mi.Shipment.MaterialInwardStatus
	status := mi.ApplyInwardTotals(received)
	if status != before {
		if err := repos.MaterialIssues().SaveWithLock(ctx, mi); err != nil {
			return err
		}
		events.Collect(mi)
	}
	if result != nil {
		result.MaterialInwardStatus = string(status)
	}

	if mi.IsFullyReceived() && mi.Shipment.TransferOrderID != nil {
		to, err := repos.TransferOrders().FindByID(ctx, *mi.Shipment.TransferOrderID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if to != nil && to.Status == logistics.TransferPending {
			if err := to.Approve(); err != nil {
				return err
			}
			if err := repos.TransferOrders().Save(ctx, to); err != nil {
				return err
			}
		}
		if to != nil && result != nil {
			result.TransferOrderStatus = string(to.Status)
		}
	}
	return nil
}

func checkIssueTotals(mi *logistics.MaterialIssue, received map[string]decimal.Decimal) error {
	codes := make([]string, 0, len(received))
	for code := range received {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		issued, ok := mi.IssuedQty(code)
		if !ok {
			return shared.NewValidationError("items.itemCode", fmt.Sprintf("Item %s is not on material issue %s", code, mi.IssueNumber))
		}
		if received[code].GreaterThan(issued) {
			return shared.NewDomainError(shared.CodeOverReceipt, fmt.Sprintf(
				"Received quantity for %s exceeds the issued quantity on %s (issued %s, received %s)",
				code, mi.IssueNumber, issued.String(), received[code].String()))
		}
	}
	return nil
}

// applyLedger books the receipt at the receiver's location. Receivers other
// than store incharges do not move inventory.
func applyLedger(ctx context.Context, ledger *appinventory.Ledger, g *receiving.GoodsReceipt) error {
	loc, ok := g.LedgerLocation()
	if !ok {
		return nil
	}
	totals := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0, len(g.Items))
	for _, it := range g.Items {
		if _, seen := totals[it.ItemID]; !seen {
			order = append(order, it.ItemID)
		}
		totals[it.ItemID] = totals[it.ItemID].Add(it.ReceiveQty)
	}
	src := inventory.Source{Type: inventory.SourceGoodsReceipt, ID: g.ID, No: g.GRNNo}
	for _, itemID := range order {
		q := totals[itemID]
		if !q.IsPositive() {
			continue
		}
		if _, err := ledger.ApplyReceipt(ctx, itemID, loc, q, src); err != nil {
			return fmt.Errorf("receipt %s: %w", g.GRNNo, err)
		}
	}
	return nil
}

// resolveItemIDs fills missing item IDs from the source document lines,
// falling back to the catalog
func resolveItemIDs(ctx context.Context, repos appshared.TransactionalRepositories, d *receiving.Details) error {
	var po *procurement.PurchaseOrder
	var mi *logistics.MaterialIssue
	var err error
	switch d.Type {
	case receiving.TypeSupplied:
		if po, err = repos.PurchaseOrders().FindByNumber(ctx, d.PurchaseOrderNo); err != nil {
			return err
		}
	case receiving.TypeTransferred:
		if mi, err = repos.MaterialIssues().FindByNumber(ctx, d.MaterialIssueNo); err != nil {
			return err
		}
	}

	for i := range d.Items {
		it := &d.Items[i]
		if it.ItemID != uuid.Nil {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(it.ItemCode))
		if po != nil {
			if line := po.Line(code); line != nil {
				it.ItemID = line.ItemID
				continue
			}
		}
		if mi != nil {
			for _, line := range mi.Items {
				if strings.EqualFold(line.ItemCode, code) {
					it.ItemID = line.ItemID
					break
				}
			}
			if it.ItemID != uuid.Nil {
				continue
			}
		}
		item, err := repos.Items().FindByCode(ctx, code)
		if err != nil {
			return err
		}
		it.ItemID = item.ID
	}
	return nil
}

// lockSources obtains the source locks in a fixed order and returns the release func
func (s *GoodsReceiptService) lockSources(ctx context.Context, keys ...string) (func(), error) {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" && !seen[k] {
			seen[k] = true
			uniq = append(uniq, k)
		}
	}
	sort.Strings(uniq)

	held := make([]appshared.Lock, 0, len(uniq))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release source lock", zap.Error(err))
			}
		}
	}
	for _, key := range uniq {
		lock, err := s.locker.Obtain(ctx, key, s.lockTTL)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, lock)
	}
	return release, nil
}

func sourceKey(t receiving.ReceiptType, poNo, miNo string) string {
	switch t {
	case receiving.TypeSupplied:
		return "grn:source:po:" + strings.ToUpper(strings.TrimSpace(poNo))
	case receiving.TypeTransferred:
		return "grn:source:mi:" + strings.ToUpper(strings.TrimSpace(miNo))
	}
	return ""
}
