package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "Pending"
	OrderStatusApproved          OrderStatus = "Approved"
	OrderStatusClosed            OrderStatus = "Closed"
	OrderStatusPartiallyReceived OrderStatus = "partially received"
	OrderStatusCompleted         OrderStatus = "Completed"
)

// ItemStatus represents the receipt status of one order line
type ItemStatus string

const (
	ItemStatusPending           ItemStatus = "Pending"
	ItemStatusPartiallyReceived ItemStatus = "partially received"
	ItemStatusCompleted         ItemStatus = "Completed"
)

var hundred = decimal.NewFromInt(100)

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	ItemCode     string
	Category     string
	Description  string
	UOM          string
	RequestedQty decimal.Decimal
	PurchaseQty  decimal.Decimal
	ReceivedQty  decimal.Decimal
	PendingQty   decimal.Decimal // always PurchaseQty - ReceivedQty
	Price        decimal.Decimal
	GSTPercent   decimal.Decimal
	Amount       decimal.Decimal // PurchaseQty * Price
	SupplierID   uuid.UUID
	Status       ItemStatus
}

// Available returns the quantity that can still be received
func (i *PurchaseOrderItem) Available() decimal.Decimal {
	return i.PurchaseQty.Sub(i.ReceivedQty)
}

// IsFullyReceived checks whether nothing is left to receive
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQty.GreaterThanOrEqual(i.PurchaseQty)
}

func (i *PurchaseOrderItem) recompute() {
	i.PendingQty = i.PurchaseQty.Sub(i.ReceivedQty)
	switch {
	case i.IsFullyReceived():
		i.Status = ItemStatusCompleted
	case i.ReceivedQty.IsPositive():
		i.Status = ItemStatusPartiallyReceived
	default:
		i.Status = ItemStatusPending
	}
}

// ItemInput describes an order line when creating or editing an order
type ItemInput struct {
	ItemID       uuid.UUID
	ItemCode     string
	Category     string
	Description  string
	UOM          string
	RequestedQty decimal.Decimal
	PurchaseQty  decimal.Decimal
	Price        decimal.Decimal
	GSTPercent   decimal.Decimal
	SupplierID   uuid.UUID
}

// Header carries the order-level fields
type Header struct {
	MaterialRequestNo string
	BillTo            *uuid.UUID
	ShipTo            *uuid.UUID
	DeliveryDate      *time.Time
}

// PurchaseOrder represents an order placed with one or more suppliers
// It is the aggregate root for the procurement context
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PurchaseOrderNo   string
	MaterialRequestNo string
	BillTo            *uuid.UUID
	ShipTo            *uuid.UUID
	DeliveryDate      *time.Time
	CreatedBy         uuid.UUID
	Items             []PurchaseOrderItem
	TotalAmount       decimal.Decimal
	IGST              decimal.Decimal
	SGST              decimal.Decimal
	CGST              decimal.Decimal
	GrandTotalIncGST  decimal.Decimal
	Status            OrderStatus
	ApprovedBy        *uuid.UUID
	ApprovedAt        *time.Time
	ClosedAt          *time.Time
	PDFLink           string
}

// InterStateFunc reports whether a supplier ships from another state than
// the bill-to site, which selects IGST over CGST+SGST
type InterStateFunc func(supplierID uuid.UUID) bool

// NewPurchaseOrder creates a pending order
func NewPurchaseOrder(orderNo string, header Header, createdBy uuid.UUID, items []ItemInput, interState InterStateFunc) (*PurchaseOrder, error) {
	if err := validateOrder(header, items); err != nil {
		return nil, err
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseOrderNo:   orderNo,
		CreatedBy:         createdBy,
		Status:            OrderStatusPending,
	}
	po.setHeader(header)
	po.setItems(items)
	po.recalculateTotals(interState)

	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// CanModify reports whether header and lines may still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.ApprovedAt == nil && o.Status != OrderStatusClosed && !o.HasReceipts()
}

// Update replaces the header and lines of an unapproved order
func (o *PurchaseOrder) Update(header Header, items []ItemInput, interState InterStateFunc) error {
	if !o.CanModify() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Purchase order %s can no longer be edited (status %s)", o.PurchaseOrderNo, o.Status))
	}
	if err := validateOrder(header, items); err != nil {
		return err
	}
	o.setHeader(header)
	o.setItems(items)
	o.recalculateTotals(interState)
	o.Touch()
	return nil
}

// Approve locks the order against editing
func (o *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if o.Status == OrderStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot approve a closed purchase order")
	}
	if o.ApprovedAt != nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase order "+o.PurchaseOrderNo+" is already approved")
	}
	now := time.Now()
	o.ApprovedAt = &now
	o.ApprovedBy = &approverID
	o.recomputeStatus()
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o))
	return nil
}

// Close ends the order. Only admins may close and a closed order is terminal.
func (o *PurchaseOrder) Close(actorRole identity.Role) error {
	if actorRole != identity.RoleAdmin {
		return shared.NewDomainError(shared.CodeForbidden, "Only admin can close a purchase order")
	}
	if o.Status == OrderStatusClosed {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase order "+o.PurchaseOrderNo+" is already closed")
	}
	now := time.Now()
	o.Status = OrderStatusClosed
	o.ClosedAt = &now
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o))
	return nil
}

// CanDelete reports whether the order may be deleted
func (o *PurchaseOrder) CanDelete() bool {
	return o.ApprovedAt == nil && o.Status != OrderStatusClosed && !o.HasReceipts()
}

// CanReceive reports whether GRNs may be booked against the order
func (o *PurchaseOrder) CanReceive() bool {
	return o.Status != OrderStatusClosed
}

// Line returns the order line for an item code
func (o *PurchaseOrder) Line(itemCode string) *PurchaseOrderItem {
	for i := range o.Items {
		if strings.EqualFold(o.Items[i].ItemCode, itemCode) {
			return &o.Items[i]
		}
	}
	return nil
}

// Available returns the receivable quantity of an item code
func (o *PurchaseOrder) Available(itemCode string) (decimal.Decimal, error) {
	line := o.Line(itemCode)
	if line == nil {
		return decimal.Zero, shared.NewValidationError("items.itemCode", fmt.Sprintf("Item %s is not on purchase order %s", itemCode, o.PurchaseOrderNo))
	}
	return line.Available(), nil
}

// ValidateReceipt checks receive quantities per item code against what is
// still available. previous holds the quantities an edited GRN had already
// booked; only the net change must fit, so resubmitting a GRN unchanged
// always passes.
func (o *PurchaseOrder) ValidateReceipt(quantities, previous map[string]decimal.Decimal) error {
	if !o.CanReceive() {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase order "+o.PurchaseOrderNo+" is closed")
	}
	for code, q := range quantities {
		available, err := o.Available(code)
		if err != nil {
			return err
		}
		net := q.Sub(previous[code])
		if net.GreaterThan(available) {
			return shared.NewDomainError(shared.CodeOverReceipt, fmt.Sprintf(
				"Receive quantity for %s exceeds the pending quantity on %s (available %s, requested %s)",
				code, o.PurchaseOrderNo, available.String(), net.String()))
		}
	}
	return nil
}

// ApplyReceipt books received quantities keyed by item code
func (o *PurchaseOrder) ApplyReceipt(quantities map[string]decimal.Decimal) error {
	if err := o.ValidateReceipt(quantities, nil); err != nil {
		return err
	}
	for code, q := range quantities {
		line := o.Line(code)
		line.ReceivedQty = line.ReceivedQty.Add(q)
		line.recompute()
	}
	o.afterReceiptChange()
	return nil
}

// RevertReceipt removes previously booked quantities; receivedQty is clamped at zero
func (o *PurchaseOrder) RevertReceipt(quantities map[string]decimal.Decimal) {
	for code, q := range quantities {
		line := o.Line(code)
		if line == nil {
			continue
		}
		line.ReceivedQty = line.ReceivedQty.Sub(q)
		if line.ReceivedQty.IsNegative() {
			line.ReceivedQty = decimal.Zero
		}
		line.recompute()
	}
	o.afterReceiptChange()
}

// HasReceipts reports whether any goods were received
func (o *PurchaseOrder) HasReceipts() bool {
	for _, it := range o.Items {
		if it.ReceivedQty.IsPositive() {
			return true
		}
	}
	return false
}

// SetPDFLink records where the rendered order document lives
func (o *PurchaseOrder) SetPDFLink(link string) {
	o.PDFLink = link
}

func (o *PurchaseOrder) afterReceiptChange() {
	before := o.Status
	o.recomputeStatus()
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o))
	if before != o.Status {
		o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o))
	}
}

// recomputeStatus derives the aggregate status: Completed when every line
// is complete, partially received when anything arrived, else Approved or
// Pending. Closed is terminal and never recomputed.
func (o *PurchaseOrder) recomputeStatus() {
	if o.Status == OrderStatusClosed {
		return
	}
	allComplete := len(o.Items) > 0
	for _, it := range o.Items {
		if it.Status != ItemStatusCompleted {
			allComplete = false
		}
	}
	switch {
	case o.HasReceipts() && allComplete:
		o.Status = OrderStatusCompleted
	case o.HasReceipts():
		o.Status = OrderStatusPartiallyReceived
	case o.ApprovedAt != nil:
		o.Status = OrderStatusApproved
	default:
		o.Status = OrderStatusPending
	}
}

func (o *PurchaseOrder) setHeader(h Header) {
	o.MaterialRequestNo = strings.TrimSpace(h.MaterialRequestNo)
	o.BillTo = h.BillTo
	o.ShipTo = h.ShipTo
	o.DeliveryDate = h.DeliveryDate
}

func (o *PurchaseOrder) setItems(items []ItemInput) {
	lines := make([]PurchaseOrderItem, len(items))
	for i, in := range items {
		lines[i] = PurchaseOrderItem{
			ID:           uuid.New(),
			ItemID:       in.ItemID,
			ItemCode:     strings.ToUpper(strings.TrimSpace(in.ItemCode)),
			Category:     in.Category,
			Description:  in.Description,
			UOM:          in.UOM,
			RequestedQty: in.RequestedQty,
			PurchaseQty:  in.PurchaseQty,
			Price:        in.Price,
			GSTPercent:   in.GSTPercent,
			Amount:       in.PurchaseQty.Mul(in.Price).Round(2),
			SupplierID:   in.SupplierID,
		}
		lines[i].recompute()
	}
	o.Items = lines
}

// recalculateTotals splits GST per line: intra-state lines pay CGST and
// SGST halves, inter-state lines pay IGST
func (o *PurchaseOrder) recalculateTotals(interState InterStateFunc) {
	total := decimal.Zero
	igst := decimal.Zero
	local := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Amount)
		tax := it.Amount.Mul(it.GSTPercent).Div(hundred)
		if interState != nil && interState(it.SupplierID) {
			igst = igst.Add(tax)
		} else {
			local = local.Add(tax)
		}
	}
	o.TotalAmount = total.Round(2)
	o.IGST = igst.Round(2)
	o.CGST = local.Div(decimal.NewFromInt(2)).Round(2)
	o.SGST = o.CGST
	o.GrandTotalIncGST = o.TotalAmount.Add(o.IGST).Add(o.CGST).Add(o.SGST)
}

func validateOrder(h Header, items []ItemInput) error {
	var errs shared.ValidationErrors
	if strings.TrimSpace(h.MaterialRequestNo) == "" {
		errs.Add("materialRequestNo", "materialRequestNo is required")
	}
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		code := strings.ToUpper(strings.TrimSpace(it.ItemCode))
		if code == "" {
			errs.Add("items.itemCode", "itemCode is required")
		} else if seen[code] {
			errs.Add("items.itemCode", "item "+code+" appears twice")
		}
		seen[code] = true
		if !it.PurchaseQty.IsPositive() {
			errs.Add("items.purchaseQty", "purchaseQty must be positive")
		}
		if it.Price.IsNegative() {
			errs.Add("items.price", "price cannot be negative")
		}
		if it.GSTPercent.IsNegative() || it.GSTPercent.GreaterThan(hundred) {
			errs.Add("items.gst", "gst must be between 0 and 100")
		}
		if it.SupplierID == uuid.Nil {
			errs.Add("items.supplier", "supplier is required")
		}
	}
	return errs.Err()
}
