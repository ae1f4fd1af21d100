//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	applogistics "github.com/sitestock/backend/internal/application/logistics"
	appprocurement "github.com/sitestock/backend/internal/application/procurement"
	appreceiving "github.com/sitestock/backend/internal/application/receiving"
	apprequisition "github.com/sitestock/backend/internal/application/requisition"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	fx        *testutil.Fixture
	ledger    *appinventory.LedgerService
	reports   *appinventory.ReportService
	requests  *apprequisition.Service
	issues    *applogistics.MaterialIssueService
	transfers *applogistics.TransferOrderService
	orders    *appprocurement.PurchaseOrderService
	receipts  *appreceiving.GoodsReceiptService
}

func newServices(t *testing.T) *services {
	t.Helper()
	fx := testutil.NewFixtureOn(NewTestDB(t).DB)
	log := zap.NewNop()
	return &services{
		fx:        fx,
		ledger:    appinventory.NewLedgerService(fx.TxScope, fx.Records, fx.Entries, fx.Sites, log),
		reports:   appinventory.NewReportService(fx.Reports, fx.Records, fx.Sites, log),
		requests:  apprequisition.NewService(fx.TxScope, fx.Requests, fx.Users, fx.Items, log),
		issues:    applogistics.NewMaterialIssueService(fx.TxScope, fx.Issues, fx.Users, fx.Sites, log),
		transfers: applogistics.NewTransferOrderService(fx.TxScope, fx.Transfers),
		orders:    appprocurement.NewPurchaseOrderService(fx.TxScope, fx.Orders, fx.Users, fx.Sites, fx.Suppliers, log),
		receipts:  appreceiving.NewGoodsReceiptService(fx.TxScope, fx.Receipts, fx.Users, fx.Suppliers, log),
	}
}

func (s *services) inHand(t *testing.T, itemID uuid.UUID, loc inventory.Location) decimal.Decimal {
	t.Helper()
	r, err := s.fx.Records.FindByItemAndLocation(context.Background(), itemID, loc)
	require.NoError(t, err)
	return r.InHand
}

func cementLine(balance, receive int64) []appreceiving.GoodsReceiptItemInput {
	return []appreceiving.GoodsReceiptItemInput{{
		ItemCode:    "CEM-01",
		Category:    "Civil",
		Description: "OPC cement 53 grade",
		UOM:         "BAG",
		BalanceQty:  decimal.NewFromInt(balance),
		ReceiveQty:  decimal.NewFromInt(receive),
	}}
}

// TestMaterialFlow_Postgres walks one bag of cement from request to site
// stock and checks the ledger and report at each hand-off.
func TestMaterialFlow_Postgres(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	site := s.fx.Site(t, "Tower A", "Karnataka")
	center := s.fx.User(t, identity.RoleCenterStoreIncharge, nil)
	buyer := s.fx.User(t, identity.RolePurchaseManager, nil)
	store := s.fx.User(t, identity.RoleSiteStoreIncharge, &site.ID)
	supplier := s.fx.Supplier(t, "Bangalore Cements", "Karnataka")
	cement := s.fx.Item(t, "CEM-01", "OPC cement 53 grade")

	// material request raised by the central store goes to purchasing
	mr, err := s.requests.Create(ctx, center.ID, apprequisition.CreateMaterialRequestRequest{
		Items: []apprequisition.MaterialRequestItemInput{{ItemID: cement.ID, RequestedQty: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MR-0001", mr.RequestNo)
	require.NotNil(t, mr.RequestedTo)
	assert.Equal(t, buyer.ID, *mr.RequestedTo)

	approved, err := s.requests.Approve(ctx, buyer.ID, mr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(requisition.StatusApproved), approved.Status)

	withoutPO, total, err := s.requests.ApprovedWithoutPO(ctx, apprequisition.MaterialRequestListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, mr.RequestNo, withoutPO[0].RequestNo)

	// purchase order against the request
	po, err := s.orders.Create(ctx, buyer.ID, appprocurement.PurchaseOrderRequest{
		MaterialRequestNo: mr.RequestNo,
		Items: []appprocurement.PurchaseOrderItemInput{{
			ItemCode:     "CEM-01",
			RequestedQty: decimal.NewFromInt(100),
			PurchaseQty:  decimal.NewFromInt(100),
			Supplier:     supplier.ID,
			Price:        decimal.NewFromInt(400),
			GST:          decimal.NewFromInt(18),
		}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, po.TransferNo)
	orderNo := po.PurchaseOrder.PurchaseOrderNo

	_, err = s.orders.Approve(ctx, buyer.ID, po.PurchaseOrder.ID)
	require.NoError(t, err)

	_, total, err = s.requests.ApprovedWithoutPO(ctx, apprequisition.MaterialRequestListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	// supplier delivery into the central warehouse
	invoiceDate := time.Now().UTC().Truncate(time.Second)
	supplied := func(receive int64) appreceiving.GoodsReceiptRequest {
		return appreceiving.GoodsReceiptRequest{
			Type:            string(receiving.TypeSupplied),
			SubType:         string(receiving.SubTypeInvoice),
			PurchaseOrderNo: orderNo,
			InvoiceNo:       "INV-881",
			InvoiceDate:     &invoiceDate,
			SupplierID:      &supplier.ID,
			Items:           cementLine(100, receive),
		}
	}
	grn, err := s.receipts.Create(ctx, center.ID, supplied(100))
	require.NoError(t, err)
	assert.Equal(t, string(procurement.OrderStatusCompleted), grn.PurchaseOrderStatus)
	assert.True(t, s.inHand(t, cement.ID, inventory.CentralLocation()).Equal(decimal.NewFromInt(100)))

	// central store ships part of it to the site
	issued, err := s.issues.Create(ctx, center.ID, applogistics.CreateMaterialIssueRequest{
		IssuedTo:  site.ID,
		Items:     []applogistics.MaterialIssueItemInput{{ItemID: cement.ID, IssueQty: decimal.NewFromInt(40)}},
		VehicleNo: "KA01AB1234",
	})
	require.NoError(t, err)
	require.NotNil(t, issued.TransferOrder)
	assert.True(t, s.inHand(t, cement.ID, inventory.CentralLocation()).Equal(decimal.NewFromInt(60)))

	inward, err := s.receipts.Create(ctx, store.ID, appreceiving.GoodsReceiptRequest{
		Type:            string(receiving.TypeTransferred),
		MaterialIssueNo: issued.MaterialIssue.IssueNumber,
		SupplierID:      &supplier.ID,
		Items:           cementLine(40, 40),
	})
	require.NoError(t, err)
	assert.Equal(t, string(logistics.InwardApproved), inward.MaterialInwardStatus)
	assert.Equal(t, string(logistics.TransferApproved), inward.TransferOrderStatus)
	assert.True(t, s.inHand(t, cement.ID, inventory.SiteLocation(site.ID)).Equal(decimal.NewFromInt(40)))

	to, err := s.transfers.GetByReference(ctx, issued.MaterialIssue.IssueNumber)
	require.NoError(t, err)
	assert.Equal(t, string(logistics.TransferApproved), to.Status)

	// correcting the supplier receipt reverts it before applying the new count
	corrected, err := s.receipts.Update(ctx, center.ID, grn.GoodsReceipt.ID, supplied(90))
	require.NoError(t, err)
	assert.Equal(t, grn.GoodsReceipt.GRNNo, corrected.GoodsReceipt.GRNNo)
	assert.Equal(t, string(procurement.OrderStatusPartiallyReceived), corrected.PurchaseOrderStatus)
	assert.True(t, s.inHand(t, cement.ID, inventory.CentralLocation()).Equal(decimal.NewFromInt(50)))
	assert.True(t, s.inHand(t, cement.ID, inventory.GlobalLocation()).Equal(decimal.NewFromInt(90)))

	report, err := s.reports.Build(ctx, appinventory.ReportFilter{Search: "CEM"})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.True(t, row.Center.Equal(decimal.NewFromInt(50)))
	assert.True(t, row.TotalInHand.Equal(decimal.NewFromInt(90)))
	assert.True(t, row.TotalIssued.Equal(decimal.NewFromInt(40)))

	history, total, err := s.ledger.History(ctx, cement.ID, appinventory.HistoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, len(history), total)
	assert.NotEmpty(t, history)
}

func TestConcurrentIssues_NeverOverdraw(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	site := s.fx.Site(t, "Tower B", "Karnataka")
	center := s.fx.User(t, identity.RoleCenterStoreIncharge, nil)
	cement := s.fx.Item(t, "CEM-01", "OPC cement 53 grade")

	_, err := s.ledger.AddOpeningStock(ctx, center.ID, appinventory.AddOpeningStockRequest{
		ItemID: cement.ID, Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.issues.Create(ctx, center.ID, applogistics.CreateMaterialIssueRequest{
				IssuedTo: site.ID,
				Items:    []applogistics.MaterialIssueItemInput{{ItemID: cement.ID, IssueQty: decimal.NewFromInt(1)}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	for _, err := range failures {
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	}
	assert.True(t, s.inHand(t, cement.ID, inventory.CentralLocation()).IsZero())

	_, total, err := s.issues.List(ctx, applogistics.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
}
