package procurement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderSetup struct {
	fx        *testutil.Fixture
	svc       *PurchaseOrderService
	published *testutil.RecordingPublisher
	billTo    uuid.UUID
	buyer     *identity.User
	admin     *identity.User
	local     uuid.UUID
	remote    uuid.UUID
	cement    uuid.UUID
	requestNo string
}

func newOrderSetup(t *testing.T) *orderSetup {
	t.Helper()
	fx := testutil.NewFixture(t)
	warehouse := fx.Warehouse(t, "Karnataka")
	s := &orderSetup{
		fx:        fx,
		svc:       NewPurchaseOrderService(fx.TxScope, fx.Orders, fx.Users, fx.Sites, fx.Suppliers, zap.NewNop()),
		published: &testutil.RecordingPublisher{},
		billTo:    warehouse.ID,
		buyer:     fx.User(t, identity.RolePurchaseManager, nil),
		admin:     fx.User(t, identity.RoleAdmin, nil),
		local:     fx.Supplier(t, "Bangalore Cements", "Karnataka").ID,
		remote:    fx.Supplier(t, "Pune Steel", "Maharashtra").ID,
		cement:    fx.Item(t, "CEM-01", "OPC cement 53 grade").ID,
	}
	fx.Item(t, "TMT-12", "TMT bar 12mm")
	s.svc.SetEventPublisher(s.published)
	s.requestNo = s.seedRequest(t, true)
	return s
}

// seedRequest stores a warehouse request, approved or still pending
func (s *orderSetup) seedRequest(t *testing.T, approve bool) string {
	t.Helper()
	ctx := context.Background()
	center := s.fx.User(t, identity.RoleCenterStoreIncharge, nil)

	var requestNo string
	require.NoError(t, s.fx.TxScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		n, err := repos.Sequences().Next(ctx, shared.KindMaterialRequest)
		if err != nil {
			return err
		}
		mr, err := requisition.NewMaterialRequest(n, center, nil, []requisition.RequestItem{
			{ItemID: s.cement, RequestedQty: decimal.NewFromInt(100)},
		})
		if err != nil {
			return err
		}
		if approve {
			if err := mr.Approve(s.buyer); err != nil {
				return err
			}
		}
		requestNo = mr.RequestNo
		return repos.MaterialRequests().Create(ctx, mr)
	}))
	return requestNo
}

func (s *orderSetup) request() PurchaseOrderRequest {
	return PurchaseOrderRequest{
		MaterialRequestNo: s.requestNo,
		BillTo:            &s.billTo,
		Items: []PurchaseOrderItemInput{
			{
				ItemCode:     "cem-01",
				RequestedQty: decimal.NewFromInt(100),
				PurchaseQty:  decimal.NewFromInt(100),
				Supplier:     s.local,
				Price:        decimal.NewFromInt(400),
				GST:          decimal.NewFromInt(18),
			},
			{
				ItemCode:    "TMT-12",
				PurchaseQty: decimal.NewFromInt(10),
				Supplier:    s.remote,
				Price:       decimal.NewFromInt(60),
				GST:         decimal.NewFromInt(18),
			},
		},
	}
}

func TestPurchaseOrderService_Create(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	resp, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)

	po := resp.PurchaseOrder
	assert.Equal(t, "PO-00001", po.PurchaseOrderNo)
	assert.Equal(t, string(procurement.OrderStatusPending), po.Status)
	assert.Equal(t, "/documents/po/PO-00001.pdf", po.PDFLink)
	require.Len(t, po.Items, 2)
	assert.Equal(t, "CEM-01", po.Items[0].ItemCode)
	assert.Equal(t, "Civil", po.Items[0].Category)

	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(40600)), po.TotalAmount.String())
	assert.True(t, po.CGST.Equal(decimal.NewFromInt(3600)), po.CGST.String())
	assert.True(t, po.SGST.Equal(decimal.NewFromInt(3600)), po.SGST.String())
	assert.True(t, po.IGST.Equal(decimal.NewFromInt(108)), po.IGST.String())
	assert.True(t, po.GrandTotalIncGST.Equal(decimal.NewFromInt(47908)), po.GrandTotalIncGST.String())

	to, err := s.fx.Transfers.FindByReference(ctx, po.PurchaseOrderNo)
	require.NoError(t, err)
	assert.Equal(t, resp.TransferOrderID, to.ID)
	assert.Equal(t, logistics.TransferTypeSupplied, to.Type)
	assert.Equal(t, logistics.TransferPending, to.Status)

	item, err := s.fx.Items.FindByID(ctx, s.cement)
	require.NoError(t, err)
	assert.True(t, item.LastPurchasePrice.Equal(decimal.NewFromInt(400)))

	assert.Equal(t, 1, s.published.Count(procurement.EventTypePurchaseOrderCreated))
}

func TestPurchaseOrderService_Create_RequiresApprovedRequest(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	req := s.request()
	req.MaterialRequestNo = s.seedRequest(t, false)
	_, err := s.svc.Create(ctx, s.buyer.ID, req)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	req.MaterialRequestNo = "MR-9999"
	_, err = s.svc.Create(ctx, s.buyer.ID, req)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	req = s.request()
	req.Items[1].ItemCode = "UNKNOWN"
	_, err = s.svc.Create(ctx, s.buyer.ID, req)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, total, err := s.svc.List(ctx, PurchaseOrderListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPurchaseOrderService_UpdateOnlyBeforeApproval(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	created, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)
	id := created.PurchaseOrder.ID

	req := s.request()
	req.Items = req.Items[:1]
	req.Items[0].PurchaseQty = decimal.NewFromInt(50)
	updated, err := s.svc.Update(ctx, id, req)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(20000)))
	assert.True(t, updated.IGST.IsZero())
	assert.Equal(t, 2, updated.Version)

	approved, err := s.svc.Approve(ctx, s.buyer.ID, id)
	require.NoError(t, err)
	assert.Equal(t, string(procurement.OrderStatusApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, s.buyer.ID, *approved.ApprovedBy)

	_, err = s.svc.Update(ctx, id, req)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = s.svc.Approve(ctx, s.buyer.ID, id)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPurchaseOrderService_CloseIsAdminOnly(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	created, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)
	id := created.PurchaseOrder.ID

	_, err = s.svc.Close(ctx, s.buyer.ID, id)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	closed, err := s.svc.Close(ctx, s.admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, string(procurement.OrderStatusClosed), closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	_, err = s.svc.Approve(ctx, s.buyer.ID, id)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	list, total, err := s.svc.List(ctx, PurchaseOrderListFilter{Status: string(procurement.OrderStatusClosed)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, id, list[0].ID)
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	first, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)
	second, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)
	_, err = s.svc.Approve(ctx, s.buyer.ID, second.PurchaseOrder.ID)
	require.NoError(t, err)

	t.Run("approved order fails the batch", func(t *testing.T) {
		err := s.svc.Delete(ctx, []uuid.UUID{first.PurchaseOrder.ID, second.PurchaseOrder.ID})
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		_, err = s.svc.GetByID(ctx, first.PurchaseOrder.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := s.svc.Delete(ctx, []uuid.UUID{first.PurchaseOrder.ID, uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.ErrorIs(t, s.svc.Delete(ctx, nil), shared.ErrValidation)
	})

	t.Run("pending order and its transfer order", func(t *testing.T) {
		require.NoError(t, s.svc.Delete(ctx, []uuid.UUID{first.PurchaseOrder.ID}))

		_, err := s.svc.GetByID(ctx, first.PurchaseOrder.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = s.fx.Transfers.FindByID(ctx, first.TransferOrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPurchaseOrderService_ItemsStatus(t *testing.T) {
	s := newOrderSetup(t)
	ctx := context.Background()

	created, err := s.svc.Create(ctx, s.buyer.ID, s.request())
	require.NoError(t, err)

	central, err := s.svc.ItemsStatus(ctx, nil, true)
	require.NoError(t, err)
	require.Len(t, central, 2)
	assert.Equal(t, created.PurchaseOrder.PurchaseOrderNo, central[0].PurchaseOrderNo)
	assert.Equal(t, string(procurement.ItemStatusPending), central[0].Item.Status)

	site := s.fx.Site(t, "Tower A", "Karnataka")
	lines, err := s.svc.ItemsStatus(ctx, &site.ID, false)
	require.NoError(t, err)
	assert.Empty(t, lines)

	byNumber, err := s.svc.GetByNumber(ctx, "po-00001")
	require.NoError(t, err)
	assert.Equal(t, created.PurchaseOrder.ID, byNumber.ID)
}
