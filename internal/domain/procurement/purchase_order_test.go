package procurement

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newOrder(t *testing.T, qty ...string) *PurchaseOrder {
	t.Helper()
	supplier := uuid.New()
	items := make([]ItemInput, len(qty))
	for i, q := range qty {
		items[i] = ItemInput{
			ItemID:      uuid.New(),
			ItemCode:    []string{"ITEM-0001", "ITEM-0002", "ITEM-0003"}[i],
			Description: "line",
			UOM:         "bag",
			PurchaseQty: dec(q),
			Price:       dec("10"),
			GSTPercent:  dec("18"),
			SupplierID:  supplier,
		}
	}
	po, err := NewPurchaseOrder("PO-00001", Header{MaterialRequestNo: "MR-0001"}, uuid.New(), items, nil)
	require.NoError(t, err)
	return po
}

func assertPendingInvariant(t *testing.T, po *PurchaseOrder) {
	t.Helper()
	for _, it := range po.Items {
		assert.True(t, it.PendingQty.Equal(it.PurchaseQty.Sub(it.ReceivedQty)), "pending drift on %s", it.ItemCode)
	}
}

func TestNewPurchaseOrder(t *testing.T) {
	po := newOrder(t, "100")
	assert.Equal(t, OrderStatusPending, po.Status)
	assert.Equal(t, ItemStatusPending, po.Items[0].Status)
	assert.True(t, dec("100").Equal(po.Items[0].PendingQty))
	assert.True(t, dec("1000").Equal(po.TotalAmount))
	assert.True(t, dec("90").Equal(po.CGST))
	assert.True(t, dec("90").Equal(po.SGST))
	assert.True(t, po.IGST.IsZero())
	assert.True(t, dec("1180").Equal(po.GrandTotalIncGST))
}

func TestNewPurchaseOrder_InterState(t *testing.T) {
	supplier := uuid.New()
	items := []ItemInput{{ItemCode: "ITEM-0001", PurchaseQty: dec("10"), Price: dec("50"), GSTPercent: dec("12"), SupplierID: supplier}}
	po, err := NewPurchaseOrder("PO-00002", Header{MaterialRequestNo: "MR-0001"}, uuid.New(), items, func(uuid.UUID) bool { return true })
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(po.IGST))
	assert.True(t, po.CGST.IsZero())
	assert.True(t, dec("560").Equal(po.GrandTotalIncGST))
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	_, err := NewPurchaseOrder("PO-00001", Header{}, uuid.New(), []ItemInput{
		{ItemCode: "A", PurchaseQty: dec("1")},
		{ItemCode: "a", PurchaseQty: dec("0")},
	}, nil)
	require.Error(t, err)
	var failure *shared.ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.GreaterOrEqual(t, len(failure.Errors), 4)
}

// Scenario: two GRNs complete a single-line order
func TestPurchaseOrder_PartialThenFullReceipt(t *testing.T) {
	po := newOrder(t, "100")

	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("40")}))
	line := po.Line("ITEM-0001")
	assert.True(t, dec("40").Equal(line.ReceivedQty))
	assert.True(t, dec("60").Equal(line.PendingQty))
	assert.Equal(t, ItemStatusPartiallyReceived, line.Status)
	assert.Equal(t, OrderStatusPartiallyReceived, po.Status)
	assertPendingInvariant(t, po)

	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("60")}))
	assert.True(t, dec("100").Equal(line.ReceivedQty))
	assert.True(t, line.PendingQty.IsZero())
	assert.Equal(t, ItemStatusCompleted, line.Status)
	assert.Equal(t, OrderStatusCompleted, po.Status)
	assertPendingInvariant(t, po)
}

// Scenario: over-receipt is rejected without touching the order
func TestPurchaseOrder_OverReceipt(t *testing.T) {
	po := newOrder(t, "100")
	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("40")}))
	version := po.Version

	err := po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("70")})
	assert.True(t, errors.Is(err, shared.ErrOverReceipt))
	assert.True(t, dec("40").Equal(po.Line("ITEM-0001").ReceivedQty))
	assert.Equal(t, version, po.Version)
}

func TestPurchaseOrder_ValidateReceiptNetChange(t *testing.T) {
	po := newOrder(t, "100")
	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("100")}))

	// resubmitting the same quantity is a zero net change
	assert.NoError(t, po.ValidateReceipt(
		map[string]decimal.Decimal{"ITEM-0001": dec("100")},
		map[string]decimal.Decimal{"ITEM-0001": dec("100")}))

	err := po.ValidateReceipt(
		map[string]decimal.Decimal{"ITEM-0001": dec("101")},
		map[string]decimal.Decimal{"ITEM-0001": dec("100")})
	assert.True(t, errors.Is(err, shared.ErrOverReceipt))

	err = po.ValidateReceipt(map[string]decimal.Decimal{"ITEM-0404": dec("1")}, nil)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPurchaseOrder_RevertReceipt(t *testing.T) {
	po := newOrder(t, "100", "20")
	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("25"), "ITEM-0002": dec("20")}))

	po.RevertReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("25")})
	assert.True(t, po.Line("ITEM-0001").ReceivedQty.IsZero())
	assert.Equal(t, ItemStatusPending, po.Line("ITEM-0001").Status)
	assert.Equal(t, OrderStatusPartiallyReceived, po.Status)
	assertPendingInvariant(t, po)

	po.RevertReceipt(map[string]decimal.Decimal{"ITEM-0002": dec("50")})
	assert.True(t, po.Line("ITEM-0002").ReceivedQty.IsZero())
	assert.Equal(t, OrderStatusPending, po.Status)
	assertPendingInvariant(t, po)
}

func TestPurchaseOrder_ApproveAndClose(t *testing.T) {
	po := newOrder(t, "10")
	assert.True(t, po.CanDelete())

	require.NoError(t, po.Approve(uuid.New()))
	assert.Equal(t, OrderStatusApproved, po.Status)
	assert.False(t, po.CanModify())
	assert.False(t, po.CanDelete())
	assert.True(t, errors.Is(po.Approve(uuid.New()), shared.ErrInvalidState))

	err := po.Update(Header{MaterialRequestNo: "MR-0002"}, []ItemInput{{ItemCode: "X", PurchaseQty: dec("1"), SupplierID: uuid.New()}}, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("4")}))
	po.RevertReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("4")})
	assert.Equal(t, OrderStatusApproved, po.Status)

	assert.True(t, errors.Is(po.Close(identity.RolePurchaseManager), shared.ErrForbidden))
	require.NoError(t, po.Close(identity.RoleAdmin))
	assert.Equal(t, OrderStatusClosed, po.Status)
	assert.False(t, po.CanReceive())

	err = po.ApplyReceipt(map[string]decimal.Decimal{"ITEM-0001": dec("1")})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.True(t, errors.Is(po.Close(identity.RoleAdmin), shared.ErrInvalidState))
}

func TestPurchaseOrder_Update(t *testing.T) {
	po := newOrder(t, "10")
	supplier := uuid.New()
	err := po.Update(Header{MaterialRequestNo: "MR-0009"}, []ItemInput{
		{ItemCode: "item-0005", PurchaseQty: dec("3"), Price: dec("100"), SupplierID: supplier},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "MR-0009", po.MaterialRequestNo)
	require.Len(t, po.Items, 1)
	assert.Equal(t, "ITEM-0005", po.Items[0].ItemCode)
	assert.True(t, dec("300").Equal(po.GrandTotalIncGST))
}
