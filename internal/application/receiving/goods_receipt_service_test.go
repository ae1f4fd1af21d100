package receiving

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/sitestock/backend/internal/application/inventory"
	applogistics "github.com/sitestock/backend/internal/application/logistics"
	appprocurement "github.com/sitestock/backend/internal/application/procurement"
	appshared "github.com/sitestock/backend/internal/application/shared"
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

type receiptSetup struct {
	fx        *testutil.Fixture
	svc       *GoodsReceiptService
	orders    *appprocurement.PurchaseOrderService
	published *testutil.RecordingPublisher
	siteID    uuid.UUID
	center    *identity.User
	store     *identity.User
	buyer     *identity.User
	admin     *identity.User
	supplier  uuid.UUID
	cement    uuid.UUID
}

func newReceiptSetup(t *testing.T) *receiptSetup {
	t.Helper()
	fx := testutil.NewFixture(t)
	site := fx.Site(t, "Tower A", "Karnataka")
	s := &receiptSetup{
		fx:        fx,
		svc:       NewGoodsReceiptService(fx.TxScope, fx.Receipts, fx.Users, fx.Suppliers, zap.NewNop()),
		orders:    appprocurement.NewPurchaseOrderService(fx.TxScope, fx.Orders, fx.Users, fx.Sites, fx.Suppliers, zap.NewNop()),
		published: &testutil.RecordingPublisher{},
		siteID:    site.ID,
		center:    fx.User(t, identity.RoleCenterStoreIncharge, nil),
		store:     fx.User(t, identity.RoleSiteStoreIncharge, &site.ID),
		buyer:     fx.User(t, identity.RolePurchaseManager, nil),
		admin:     fx.User(t, identity.RoleAdmin, nil),
		supplier:  fx.Supplier(t, "Bangalore Cements", "Karnataka").ID,
		cement:    fx.Item(t, "CEM-01", "OPC cement 53 grade").ID,
	}
	s.svc.SetEventPublisher(s.published)
	return s
}

// approvedOrder raises and approves a purchase order for qty bags of cement
func (s *receiptSetup) approvedOrder(t *testing.T, qty int64) string {
	t.Helper()
	ctx := context.Background()

	var requestNo string
	require.NoError(t, s.fx.TxScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		n, err := repos.Sequences().Next(ctx, shared.KindMaterialRequest)
		if err != nil {
			return err
		}
		mr, err := requisition.NewMaterialRequest(n, s.center, &s.buyer.ID, []requisition.RequestItem{
			{ItemID: s.cement, RequestedQty: decimal.NewFromInt(qty)},
		})
		if err != nil {
			return err
		}
		if err := mr.Approve(s.buyer); err != nil {
			return err
		}
		requestNo = mr.RequestNo
		return repos.MaterialRequests().Create(ctx, mr)
	}))

	created, err := s.orders.Create(ctx, s.buyer.ID, appprocurement.PurchaseOrderRequest{
		MaterialRequestNo: requestNo,
		Items: []appprocurement.PurchaseOrderItemInput{{
			ItemCode:     "CEM-01",
			RequestedQty: decimal.NewFromInt(qty),
			PurchaseQty:  decimal.NewFromInt(qty),
			Supplier:     s.supplier,
			Price:        decimal.NewFromInt(400),
			GST:          decimal.NewFromInt(18),
		}},
	})
	require.NoError(t, err)
	_, err = s.orders.Approve(ctx, s.buyer.ID, created.PurchaseOrder.ID)
	require.NoError(t, err)
	return created.PurchaseOrder.PurchaseOrderNo
}

func (s *receiptSetup) supplied(orderNo string, balance, receive int64) GoodsReceiptRequest {
	invoiceDate := time.Now().Truncate(time.Second)
	return GoodsReceiptRequest{
		Type:            string(receiving.TypeSupplied),
		SubType:         string(receiving.SubTypeInvoice),
		PurchaseOrderNo: orderNo,
		InvoiceNo:       "INV-881",
		InvoiceDate:     &invoiceDate,
		SupplierID:      &s.supplier,
		Items: []GoodsReceiptItemInput{{
			ItemCode:    "CEM-01",
			Category:    "Civil",
			Description: "OPC cement 53 grade",
			UOM:         "BAG",
			BalanceQty:  decimal.NewFromInt(balance),
			ReceiveQty:  decimal.NewFromInt(receive),
		}},
	}
}

func (s *receiptSetup) record(t *testing.T, loc inventory.Location) *inventory.InventoryRecord {
	t.Helper()
	r, err := s.fx.Records.FindByItemAndLocation(context.Background(), s.cement, loc)
	require.NoError(t, err)
	return r
}

func (s *receiptSetup) received(t *testing.T, orderNo string) decimal.Decimal {
	t.Helper()
	po, err := s.fx.Orders.FindByNumber(context.Background(), orderNo)
	require.NoError(t, err)
	return po.Items[0].ReceivedQty
}

func TestGoodsReceiptService_Supplied_BooksCentralStock(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	first, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 100, 40))
	require.NoError(t, err)
	assert.Equal(t, "GRN-0001", first.GoodsReceipt.GRNNo)
	assert.Equal(t, string(procurement.OrderStatusPartiallyReceived), first.PurchaseOrderStatus)
	assert.True(t, first.GoodsReceipt.IsReceived)
	assert.Equal(t, "Bangalore Cements", first.GoodsReceipt.SupplierName)
	require.Len(t, first.GoodsReceipt.Items, 1)
	assert.Equal(t, s.cement, first.GoodsReceipt.Items[0].ItemID)
	assert.True(t, first.GoodsReceipt.Items[0].PendingQty.Equal(decimal.NewFromInt(60)))

	assert.True(t, s.record(t, inventory.CentralLocation()).InHand.Equal(decimal.NewFromInt(40)))
	assert.True(t, s.record(t, inventory.GlobalLocation()).InHand.Equal(decimal.NewFromInt(40)))

	second, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 60, 60))
	require.NoError(t, err)
	assert.Equal(t, string(procurement.OrderStatusCompleted), second.PurchaseOrderStatus)
	assert.True(t, s.record(t, inventory.CentralLocation()).InHand.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, 2, s.published.Count(receiving.EventTypeGoodsReceiptCreated))
}

func TestGoodsReceiptService_Supplied_OverReceipt(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	_, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 120, 120))
	assert.ErrorIs(t, err, shared.ErrOverReceipt)

	_, total, err := s.svc.List(ctx, GoodsReceiptListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.True(t, s.received(t, orderNo).IsZero())

	_, err = s.fx.Records.FindByItemAndLocation(ctx, s.cement, inventory.CentralLocation())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGoodsReceiptService_Update_RevertsBeforeReapplying(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	first, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 100, 40))
	require.NoError(t, err)
	_, err = s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 60, 60))
	require.NoError(t, err)
	id := first.GoodsReceipt.ID

	t.Run("resubmitting the same quantities", func(t *testing.T) {
		res, err := s.svc.Update(ctx, s.center.ID, id, s.supplied(orderNo, 100, 40))
		require.NoError(t, err)
		assert.Equal(t, first.GoodsReceipt.GRNNo, res.GoodsReceipt.GRNNo)
		assert.Equal(t, string(procurement.OrderStatusCompleted), res.PurchaseOrderStatus)
		assert.True(t, s.received(t, orderNo).Equal(decimal.NewFromInt(100)))
		assert.True(t, s.record(t, inventory.CentralLocation()).InHand.Equal(decimal.NewFromInt(100)))
	})

	t.Run("net increase beyond the order", func(t *testing.T) {
		_, err := s.svc.Update(ctx, s.center.ID, id, s.supplied(orderNo, 100, 41))
		assert.ErrorIs(t, err, shared.ErrOverReceipt)
		assert.True(t, s.received(t, orderNo).Equal(decimal.NewFromInt(100)))
	})

	t.Run("reduction", func(t *testing.T) {
		res, err := s.svc.Update(ctx, s.center.ID, id, s.supplied(orderNo, 100, 25))
		require.NoError(t, err)
		assert.Equal(t, string(procurement.OrderStatusPartiallyReceived), res.PurchaseOrderStatus)
		assert.True(t, s.received(t, orderNo).Equal(decimal.NewFromInt(85)))
		assert.True(t, s.record(t, inventory.CentralLocation()).InHand.Equal(decimal.NewFromInt(85)))
		assert.True(t, s.record(t, inventory.GlobalLocation()).InHand.Equal(decimal.NewFromInt(85)))
	})

	assert.Equal(t, 2, s.published.Count(receiving.EventTypeGoodsReceiptUpdated))
}

func TestGoodsReceiptService_Delete_RevertsEverything(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	res, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 100, 30))
	require.NoError(t, err)

	require.NoError(t, s.svc.Delete(ctx, s.center.ID, res.GoodsReceipt.ID))

	po, err := s.fx.Orders.FindByNumber(ctx, orderNo)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderStatusApproved, po.Status)
	assert.True(t, po.Items[0].ReceivedQty.IsZero())
	assert.True(t, s.record(t, inventory.CentralLocation()).InHand.IsZero())

	_, err = s.svc.GetByID(ctx, res.GoodsReceipt.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 1, s.published.Count(receiving.EventTypeGoodsReceiptDeleted))

	assert.ErrorIs(t, s.svc.Delete(ctx, s.center.ID, res.GoodsReceipt.ID), shared.ErrNotFound)
}

func TestGoodsReceiptService_ClosedOrderRejectsReceipts(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	po, err := s.orders.GetByNumber(ctx, orderNo)
	require.NoError(t, err)
	_, err = s.orders.Close(ctx, s.admin.ID, po.ID)
	require.NoError(t, err)

	_, err = s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 100, 10))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestGoodsReceiptService_ReceiverWithoutStore(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	res, err := s.svc.Create(ctx, s.buyer.ID, s.supplied(orderNo, 100, 10))
	require.NoError(t, err)
	assert.Equal(t, identity.RolePurchaseManager.String(), res.GoodsReceipt.ReceiverRole)
	assert.True(t, s.received(t, orderNo).Equal(decimal.NewFromInt(10)))

	_, err = s.fx.Records.FindByItemAndLocation(ctx, s.cement, inventory.CentralLocation())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGoodsReceiptService_Validation(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)

	req := s.supplied(orderNo, 100, 10)
	req.InvoiceNo = ""
	req.SupplierID = nil
	_, err := s.svc.Create(ctx, s.center.ID, req)
	assert.ErrorIs(t, err, shared.ErrValidation)

	req = s.supplied(orderNo, 5, 10)
	_, err = s.svc.Create(ctx, s.center.ID, req)
	assert.ErrorIs(t, err, shared.ErrValidation)

	req = s.supplied("PO-99999", 100, 10)
	_, err = s.svc.Create(ctx, s.center.ID, req)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGoodsReceiptService_Transferred_CompletesIssue(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()

	ledger := appinventory.NewLedgerService(s.fx.TxScope, s.fx.Records, s.fx.Entries, s.fx.Sites, zap.NewNop())
	_, err := ledger.AddOpeningStock(ctx, s.center.ID, appinventory.AddOpeningStockRequest{
		ItemID: s.cement, Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	issues := applogistics.NewMaterialIssueService(s.fx.TxScope, s.fx.Issues, s.fx.Users, s.fx.Sites, zap.NewNop())
	issued, err := issues.Create(ctx, s.center.ID, applogistics.CreateMaterialIssueRequest{
		IssuedTo:  s.siteID,
		Items:     []applogistics.MaterialIssueItemInput{{ItemID: s.cement, IssueQty: decimal.NewFromInt(4)}},
		VehicleNo: "KA01AB1234",
	})
	require.NoError(t, err)
	require.NotNil(t, issued.TransferOrder)
	issueNo := issued.MaterialIssue.IssueNumber

	transferred := func(receive int64) GoodsReceiptRequest {
		return GoodsReceiptRequest{
			Type:            string(receiving.TypeTransferred),
			MaterialIssueNo: issueNo,
			SupplierID:      &s.supplier,
			Items: []GoodsReceiptItemInput{{
				ItemCode:    "CEM-01",
				Category:    "Civil",
				Description: "OPC cement 53 grade",
				UOM:         "BAG",
				BalanceQty:  decimal.NewFromInt(4),
				ReceiveQty:  decimal.NewFromInt(receive),
			}},
		}
	}

	partial, err := s.svc.Create(ctx, s.store.ID, transferred(1))
	require.NoError(t, err)
	assert.Equal(t, string(logistics.InwardPartiallyReceived), partial.MaterialInwardStatus)
	assert.Empty(t, partial.TransferOrderStatus)

	done, err := s.svc.Create(ctx, s.store.ID, transferred(3))
	require.NoError(t, err)
	assert.Equal(t, string(logistics.InwardApproved), done.MaterialInwardStatus)
	assert.Equal(t, string(logistics.TransferApproved), done.TransferOrderStatus)

	to, err := s.fx.Transfers.FindByID(ctx, issued.TransferOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, logistics.TransferApproved, to.Status)

	site := s.record(t, inventory.SiteLocation(s.siteID))
	assert.True(t, site.InHand.Equal(decimal.NewFromInt(4)))

	_, err = s.svc.Create(ctx, s.store.ID, transferred(1))
	assert.ErrorIs(t, err, shared.ErrOverReceipt)

	// removing a receipt drops the issue back to partially received
	require.NoError(t, s.svc.Delete(ctx, s.store.ID, partial.GoodsReceipt.ID))
	mi, err := s.fx.Issues.FindByNumber(ctx, issueNo)
	require.NoError(t, err)
	assert.Equal(t, logistics.InwardPartiallyReceived, mi.Shipment.MaterialInwardStatus)
	assert.True(t, s.record(t, inventory.SiteLocation(s.siteID)).InHand.Equal(decimal.NewFromInt(3)))
}

type countingLocker struct {
	obtained []string
}

type countingLock struct{}

func (countingLock) Release(context.Context) error { return nil }

func (l *countingLocker) Obtain(_ context.Context, key string, _ time.Duration) (appshared.Lock, error) {
	l.obtained = append(l.obtained, key)
	return countingLock{}, nil
}

func TestGoodsReceiptService_LocksSourceDocument(t *testing.T) {
	s := newReceiptSetup(t)
	ctx := context.Background()
	orderNo := s.approvedOrder(t, 100)
	locker := &countingLocker{}
	s.svc.SetLocker(locker, time.Second)

	_, err := s.svc.Create(ctx, s.center.ID, s.supplied(orderNo, 100, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"grn:source:po:" + orderNo}, locker.obtained)
}
