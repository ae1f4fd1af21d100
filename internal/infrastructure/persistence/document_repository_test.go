package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/logistics"
	"github.com/sitestock/backend/internal/domain/procurement"
	"github.com/sitestock/backend/internal/domain/receiving"
	"github.com/sitestock/backend/internal/domain/requisition"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedItem(t *testing.T, db *gorm.DB, code string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(code, catalog.ItemAttributes{
		Description: code + " description",
		UOM:         "Nos",
		Category:    "Civil",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormItemRepository(db).Create(context.Background(), item))
	return item
}

func newRequest(no string, requester uuid.UUID, role identity.Role, siteID *uuid.UUID, status requisition.Status, lines ...requisition.RequestItem) *requisition.MaterialRequest {
	return &requisition.MaterialRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestNo:         no,
		RequestedBy:       requester,
		RequesterRole:     role,
		ApproverRole:      identity.RoleSiteEngineer,
		SiteID:            siteID,
		Status:            status,
		Items:             lines,
	}
}

func requestLine(itemID uuid.UUID, q int64) requisition.RequestItem {
	return requisition.RequestItem{ID: uuid.New(), ItemID: itemID, RequestedQty: qty(q)}
}

func newOrder(t *testing.T, no, mrNo string, item *catalog.Item, purchase int64) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder(no, procurement.Header{MaterialRequestNo: mrNo}, uuid.New(),
		[]procurement.ItemInput{{
			ItemID:      item.ID,
			ItemCode:    item.ItemCode,
			Description: item.Description,
			UOM:         item.UOM,
			PurchaseQty: qty(purchase),
			Price:       decimal.NewFromFloat(12.5),
			GSTPercent:  qty(18),
			SupplierID:  uuid.New(),
		}}, nil)
	require.NoError(t, err)
	return po
}

func TestGormMaterialRequestRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormMaterialRequestRepository(db)
	cement := seedItem(t, db, "CEM-01")
	steel := seedItem(t, db, "STL-01")

	siteID := uuid.New()
	junior, engineer := uuid.New(), uuid.New()

	mine := newRequest("MR-0001", junior, identity.RoleJuniorSiteEngineer, &siteID, requisition.StatusPending,
		requestLine(cement.ID, 5), requestLine(steel.ID, 2))
	approved := newRequest("MR-0002", junior, identity.RoleJuniorSiteEngineer, &siteID, requisition.StatusApproved,
		requestLine(cement.ID, 3))
	own := newRequest("MR-0003", engineer, identity.RoleSiteEngineer, &siteID, requisition.StatusPending,
		requestLine(steel.ID, 1))
	for _, mr := range []*requisition.MaterialRequest{mine, approved, own} {
		require.NoError(t, repo.Create(ctx, mr))
	}

	t.Run("duplicate numbers are rejected", func(t *testing.T) {
		dup := newRequest("MR-0001", junior, identity.RoleJuniorSiteEngineer, &siteID, requisition.StatusPending,
			requestLine(cement.ID, 1))
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("finds by number with ordered lines", func(t *testing.T) {
		got, err := repo.FindByNumber(ctx, "mr-0001")
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, cement.ID, got.Items[0].ItemID)
		assert.True(t, got.Items[1].RequestedQty.Equal(qty(2)))
	})

	t.Run("review excludes the reviewer's own requests", func(t *testing.T) {
		list, total, err := repo.FindForReview(ctx, requisition.ReviewQuery{
			RequesterRoles: []identity.Role{identity.RoleJuniorSiteEngineer, identity.RoleSiteEngineer},
			SiteID:         &siteID,
			ExcludeAuthor:  engineer,
			Status:         requisition.StatusPending,
		}, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "MR-0001", list[0].RequestNo)
	})

	t.Run("SaveWithLock replaces lines and bumps the version", func(t *testing.T) {
		got, err := repo.FindByID(ctx, mine.ID)
		require.NoError(t, err)
		got.Items = got.Items[:1]
		got.Status = requisition.StatusApproved

		require.NoError(t, repo.SaveWithLock(ctx, got))
		assert.Equal(t, 2, got.Version)

		reloaded, err := repo.FindByID(ctx, mine.ID)
		require.NoError(t, err)
		assert.Len(t, reloaded.Items, 1)
		assert.Equal(t, requisition.StatusApproved, reloaded.Status)
	})

	t.Run("stale writers get a conflict", func(t *testing.T) {
		stale := *mine
		stale.Version = 1
		assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)
	})

	t.Run("approved requests without an order", func(t *testing.T) {
		require.NoError(t, NewGormPurchaseOrderRepository(db).Create(ctx, newOrder(t, "PO-00001", "MR-0002", cement, 3)))

		list, total, err := repo.FindApprovedWithoutPO(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "MR-0001", list[0].RequestNo)
	})

	t.Run("issue status sums approved lines against issued stock", func(t *testing.T) {
		_, err := NewGormRecordRepository(db).Apply(ctx, cement.ID, inventory.SiteLocation(siteID), inventory.OpeningStock(qty(10)))
		require.NoError(t, err)
		_, err = NewGormRecordRepository(db).Apply(ctx, cement.ID, inventory.SiteLocation(siteID), inventory.Issue(qty(2)))
		require.NoError(t, err)

		lines, err := repo.IssueStatus(ctx, &siteID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "CEM-01", lines[0].ItemCode)
		assert.True(t, lines[0].RequestedQty.Equal(qty(8)), lines[0].RequestedQty.String())
		assert.True(t, lines[0].IssuedQty.Equal(qty(2)))
		assert.True(t, lines[0].PendingQty.Equal(qty(6)))
	})

	t.Run("delete removes header and lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, own.ID))
		_, err := repo.FindByID(ctx, own.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, own.ID), shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	cement := seedItem(t, db, "CEM-01")

	siteID := uuid.New()
	require.NoError(t, NewGormMaterialRequestRepository(db).Create(ctx,
		newRequest("MR-0001", uuid.New(), identity.RoleSiteEngineer, &siteID, requisition.StatusApproved, requestLine(cement.ID, 10))))
	require.NoError(t, NewGormMaterialRequestRepository(db).Create(ctx,
		newRequest("MR-0002", uuid.New(), identity.RoleCenterStoreIncharge, nil, requisition.StatusApproved, requestLine(cement.ID, 4))))

	sitePO := newOrder(t, "PO-00001", "MR-0001", cement, 10)
	centralPO := newOrder(t, "PO-00002", "MR-0002", cement, 4)
	require.NoError(t, repo.Create(ctx, sitePO))
	require.NoError(t, repo.Create(ctx, centralPO))

	t.Run("round trips totals and lines", func(t *testing.T) {
		got, err := repo.FindByNumber(ctx, "po-00001")
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(sitePO.TotalAmount))
		assert.True(t, got.GrandTotalIncGST.Equal(sitePO.GrandTotalIncGST))
		require.Len(t, got.Items, 1)
		assert.Equal(t, "CEM-01", got.Items[0].ItemCode)
		assert.Equal(t, procurement.OrderStatusPending, got.Status)
	})

	t.Run("receipt updates are saved with the lines", func(t *testing.T) {
		got, err := repo.FindByID(ctx, sitePO.ID)
		require.NoError(t, err)
		require.NoError(t, got.Approve(uuid.New()))
		require.NoError(t, got.ApplyReceipt(map[string]decimal.Decimal{"CEM-01": qty(4)}))
		require.NoError(t, repo.SaveWithLock(ctx, got))

		reloaded, err := repo.FindByID(ctx, sitePO.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.OrderStatusPartiallyReceived, reloaded.Status)
		assert.True(t, reloaded.Items[0].ReceivedQty.Equal(qty(4)))
		assert.True(t, reloaded.Items[0].PendingQty.Equal(qty(6)))
		assert.Equal(t, got.Items[0].ID, reloaded.Items[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, shared.Filter{
			Page: 1, PageSize: 10,
			Filters: map[string]interface{}{"status": string(procurement.OrderStatusPending)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "PO-00002", list[0].PurchaseOrderNo)
	})

	t.Run("items status by site and central", func(t *testing.T) {
		lines, err := repo.ItemsStatus(ctx, &siteID, false)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "PO-00001", lines[0].PurchaseOrderNo)

		lines, err = repo.ItemsStatus(ctx, nil, true)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "PO-00002", lines[0].PurchaseOrderNo)

		lines, err = repo.ItemsStatus(ctx, nil, false)
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("FindByIDs skips unknown ids and delete cascades lines", func(t *testing.T) {
		orders, err := repo.FindByIDs(ctx, []uuid.UUID{centralPO.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, orders, 1)

		require.NoError(t, repo.Delete(ctx, centralPO.ID))
		var lines int64
		require.NoError(t, db.Table("purchase_order_items").Where("order_id = ?", centralPO.ID).Count(&lines).Error)
		assert.Zero(t, lines)
	})
}

func TestGormMaterialIssueAndTransferRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	issues := NewGormMaterialIssueRepository(db)
	transfers := NewGormTransferOrderRepository(db)
	cement := seedItem(t, db, "CEM-01")

	siteID := uuid.New()
	mi := &logistics.MaterialIssue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IssueNumber:       "MI-0001",
		IssuedBy:          uuid.New(),
		IssuerRole:        identity.RoleCenterStoreIncharge,
		IssuedTo:          siteID,
		Items: []logistics.IssueItem{{
			ID: uuid.New(), ItemID: cement.ID, ItemCode: "CEM-01", UOM: "Nos", IssueQty: qty(5),
		}},
		Shipment: logistics.Shipment{VehicleNo: "KA01AB1234", MaterialInwardStatus: logistics.InwardPending},
	}
	require.NoError(t, issues.Create(ctx, mi))

	to := logistics.NewTransferForIssue("TO-0001", mi)
	require.NoError(t, transfers.Create(ctx, to))

	t.Run("linking the transfer saves the shipment", func(t *testing.T) {
		got, err := issues.FindByNumber(ctx, "MI-0001")
		require.NoError(t, err)
		got.LinkTransferOrder(to)
		require.NoError(t, issues.SaveWithLock(ctx, got))

		reloaded, err := issues.FindByID(ctx, mi.ID)
		require.NoError(t, err)
		assert.Equal(t, "TO-0001", reloaded.Shipment.TransferNo)
		require.NotNil(t, reloaded.Shipment.TransferOrderID)
		assert.Equal(t, to.ID, *reloaded.Shipment.TransferOrderID)
		require.Len(t, reloaded.Items, 1)
		assert.True(t, reloaded.Items[0].IssueQty.Equal(qty(5)))
	})

	t.Run("transfer approval is versioned", func(t *testing.T) {
		got, err := transfers.FindByReference(ctx, "MI-0001")
		require.NoError(t, err)
		require.NoError(t, got.Approve())
		require.NoError(t, transfers.Save(ctx, got))

		reloaded, err := transfers.FindByID(ctx, to.ID)
		require.NoError(t, err)
		assert.Equal(t, logistics.TransferApproved, reloaded.Status)
		assert.Equal(t, 2, reloaded.Version)
	})

	t.Run("issuer listing", func(t *testing.T) {
		list, total, err := issues.FindByIssuer(ctx, mi.IssuedBy, shared.Filter{Page: 1, PageSize: 5, Search: "ka01"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "MI-0001", list[0].IssueNumber)
	})
}

func TestGormGoodsReceiptRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormGoodsReceiptRepository(db)
	cement := seedItem(t, db, "CEM-01")
	steel := seedItem(t, db, "STL-01")

	supplierID := uuid.New()
	receipt := func(no string, lines ...receiving.ReceiptItem) *receiving.GoodsReceipt {
		g, err := receiving.NewGoodsReceipt(no, receiving.Details{
			Type:            receiving.TypeTransferred,
			MaterialIssueNo: "mi-0001",
			SupplierID:      &supplierID,
			Items:           lines,
		}, receiving.Receiver{Name: "Store", UserID: uuid.New(), Role: identity.RoleCenterStoreIncharge})
		require.NoError(t, err)
		return g
	}
	line := func(item *catalog.Item, q int64) receiving.ReceiptItem {
		return receiving.ReceiptItem{
			ItemID:      item.ID,
			ItemCode:    item.ItemCode,
			Category:    item.Category,
			Description: item.Description,
			UOM:         item.UOM,
			BalanceQty:  qty(10),
			ReceiveQty:  qty(q),
		}
	}

	first := receipt("GRN-0001", line(cement, 3), line(steel, 1))
	second := receipt("GRN-0002", line(cement, 2))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("sums receive quantities per item code", func(t *testing.T) {
		totals, err := repo.ReceivedByIssue(ctx, "MI-0001")
		require.NoError(t, err)
		assert.True(t, totals["CEM-01"].Equal(qty(5)))
		assert.True(t, totals["STL-01"].Equal(qty(1)))
	})

	t.Run("type filter and search", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, shared.Filter{
			Page: 1, PageSize: 10, Search: "grn-0002",
			Filters: map[string]interface{}{"type": string(receiving.TypeTransferred)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "GRN-0002", list[0].GRNNo)
	})

	t.Run("delete drops the receipt from the totals", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		totals, err := repo.ReceivedByIssue(ctx, "MI-0001")
		require.NoError(t, err)
		assert.True(t, totals["CEM-01"].Equal(qty(3)))
	})
}
