package receiving

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
)

// ReceiptType selects the source document of a GRN
type ReceiptType string

const (
	// TypeTransferred receipts close out a material issue
	TypeTransferred ReceiptType = "Transferred"
	// TypeSupplied receipts close out a purchase order
	TypeSupplied ReceiptType = "Supplied"
)

// SubType distinguishes delivery challans from invoices
type SubType string

const (
	SubTypeNone    SubType = ""
	SubTypeChallan SubType = "Challan"
	SubTypeInvoice SubType = "Invoice"
)

// ReceiptItem is one received line
type ReceiptItem struct {
	ID          uuid.UUID
	ItemID      uuid.UUID
	ItemCode    string
	Category    string
	Description string
	UOM         string
	BalanceQty  decimal.Decimal
	ReceiveQty  decimal.Decimal
	PendingQty  decimal.Decimal
	SupplierID  *uuid.UUID
}

// Receiver identifies who booked the receipt; role and site decide which
// inventory record moves
type Receiver struct {
	Name   string
	UserID uuid.UUID
	Role   identity.Role
	SiteID *uuid.UUID
}

// Details carries the user-supplied fields of a GRN
type Details struct {
	Type            ReceiptType
	SubType         SubType
	MaterialIssueNo string
	PurchaseOrderNo string
	TransferNo      string
	VehicleNo       string
	ExitDateTime    *time.Time
	ChallanNo       string
	ChallanDate     *time.Time
	InvoiceNo       string
	InvoiceDate     *time.Time
	SupplierID      *uuid.UUID
	SupplierName    string
	Items           []ReceiptItem
}

// GoodsReceipt is a goods-received note. It has no lifecycle of its own;
// its effects live on the source document and the inventory ledger.
type GoodsReceipt struct {
	shared.BaseAggregateRoot
	GRNNo string
	Details
	ReceivedBy   string
	ReceiverID   uuid.UUID
	ReceiverRole identity.Role
	ReceiverSite *uuid.UUID
	IsReceived   bool
	PDFLink      string
}

// NewGoodsReceipt validates and creates a GRN
func NewGoodsReceipt(grnNo string, d Details, by Receiver) (*GoodsReceipt, error) {
	d = normalize(d)
	if err := Validate(d); err != nil {
		return nil, err
	}
	g := &GoodsReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GRNNo:             grnNo,
	}
	g.set(d, by)
	g.AddDomainEvent(NewGoodsReceiptRecordedEvent(g, EventTypeGoodsReceiptCreated))
	return g, nil
}

// Replace swaps in edited details, keeping the GRN number and identity
func (g *GoodsReceipt) Replace(d Details, by Receiver) error {
	d = normalize(d)
	if err := Validate(d); err != nil {
		return err
	}
	g.set(d, by)
	g.Touch()
	g.AddDomainEvent(NewGoodsReceiptRecordedEvent(g, EventTypeGoodsReceiptUpdated))
	return nil
}

// SourceNo returns the number of the document this GRN receives against
func (g *GoodsReceipt) SourceNo() string {
	if g.Type == TypeSupplied {
		return g.PurchaseOrderNo
	}
	return g.MaterialIssueNo
}

// Quantities sums receive quantities per upper-cased item code
func (g *GoodsReceipt) Quantities() map[string]decimal.Decimal {
	return Quantities(g.Items)
}

// LedgerLocation returns the inventory record a receipt by this receiver
// moves. Only store incharges move inventory.
func (g *GoodsReceipt) LedgerLocation() (inventory.Location, bool) {
	return LedgerLocationFor(g.ReceiverRole, g.ReceiverSite)
}

// LedgerLocationFor maps a receiver to the record it books into
func LedgerLocationFor(role identity.Role, siteID *uuid.UUID) (inventory.Location, bool) {
	switch role {
	case identity.RoleCenterStoreIncharge:
		return inventory.CentralLocation(), true
	case identity.RoleSiteStoreIncharge:
		if siteID == nil {
			return inventory.Location{}, false
		}
		return inventory.SiteLocation(*siteID), true
	}
	return inventory.Location{}, false
}

// SetPDFLink records the document link
func (g *GoodsReceipt) SetPDFLink(link string) {
	g.PDFLink = link
}

// Quantities sums receive quantities per upper-cased item code
func Quantities(items []ReceiptItem) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		code := strings.ToUpper(it.ItemCode)
		out[code] = out[code].Add(it.ReceiveQty)
	}
	return out
}

// Validate checks required fields per type and subtype and every line.
// All problems are reported together.
func Validate(d Details) error {
	var errs shared.ValidationErrors

	switch d.Type {
	case TypeTransferred:
		if d.MaterialIssueNo == "" {
			errs.Add("materialIssueNo", "materialIssueNo is required for Transferred receipts")
		}
		if d.PurchaseOrderNo != "" {
			errs.Add("purchaseOrderNo", "purchaseOrderNo must be empty for Transferred receipts")
		}
	case TypeSupplied:
		if d.PurchaseOrderNo == "" {
			errs.Add("purchaseOrderNo", "purchaseOrderNo is required for Supplied receipts")
		}
		if d.MaterialIssueNo != "" {
			errs.Add("materialIssueNo", "materialIssueNo must be empty for Supplied receipts")
		}
	default:
		errs.Add("type", "type must be Transferred or Supplied")
	}
	if d.SupplierID == nil || *d.SupplierID == uuid.Nil {
		errs.Add("supplierId", "supplierId is required")
	}

	switch d.SubType {
	case SubTypeChallan:
		if d.ChallanNo == "" {
			errs.Add("challanNo", "challanNo is required for Challan receipts")
		}
		if d.ChallanDate == nil {
			errs.Add("challanDate", "challanDate is required for Challan receipts")
		}
	case SubTypeInvoice:
		if d.InvoiceNo == "" {
			errs.Add("invoiceNo", "invoiceNo is required for Invoice receipts")
		}
		if d.InvoiceDate == nil {
			errs.Add("invoiceDate", "invoiceDate is required for Invoice receipts")
		}
	case SubTypeNone:
	default:
		errs.Add("subType", "subType must be Challan, Invoice or empty")
	}

	if len(d.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for _, it := range d.Items {
		if it.ItemCode == "" || it.Category == "" || it.Description == "" || it.UOM == "" {
			errs.Add("items", "itemCode, category, description and uom are required on every item")
		}
		if it.ReceiveQty.IsNegative() {
			errs.Add("items.receiveQty", "receiveQty cannot be negative for "+it.ItemCode)
		}
		if it.ReceiveQty.GreaterThan(it.BalanceQty) {
			errs.Add("items.receiveQty", "receiveQty exceeds balanceQty for "+it.ItemCode)
		}
	}
	return errs.Err()
}

func (g *GoodsReceipt) set(d Details, by Receiver) {
	items := make([]ReceiptItem, len(d.Items))
	for i, it := range d.Items {
		it.ID = uuid.New()
		it.PendingQty = it.BalanceQty.Sub(it.ReceiveQty)
		items[i] = it
	}
	d.Items = items
	g.Details = d
	g.ReceivedBy = by.Name
	g.ReceiverID = by.UserID
	g.ReceiverRole = by.Role
	g.ReceiverSite = by.SiteID
	g.IsReceived = d.SubType == SubTypeInvoice
}

func normalize(d Details) Details {
	d.MaterialIssueNo = strings.ToUpper(strings.TrimSpace(d.MaterialIssueNo))
	d.PurchaseOrderNo = strings.ToUpper(strings.TrimSpace(d.PurchaseOrderNo))
	d.ChallanNo = strings.TrimSpace(d.ChallanNo)
	d.InvoiceNo = strings.TrimSpace(d.InvoiceNo)
	for i := range d.Items {
		d.Items[i].ItemCode = strings.ToUpper(strings.TrimSpace(d.Items[i].ItemCode))
		d.Items[i].Category = strings.TrimSpace(d.Items[i].Category)
		d.Items[i].Description = strings.TrimSpace(d.Items[i].Description)
		d.Items[i].UOM = strings.TrimSpace(d.Items[i].UOM)
	}
	return d
}
