package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture bundles a migrated sqlite database with every repository built on
// it, plus helpers that seed master data.
type Fixture struct {
	DB        *gorm.DB
	TxScope   *persistence.GormTransactionScope
	Users     *persistence.GormUserRepository
	Sites     *persistence.GormSiteRepository
	Suppliers *persistence.GormSupplierRepository
	Items     *persistence.GormItemRepository
	Records   *persistence.GormRecordRepository
	Entries   *persistence.GormLedgerEntryRepository
	Requests  *persistence.GormMaterialRequestRepository
	Issues    *persistence.GormMaterialIssueRepository
	Transfers *persistence.GormTransferOrderRepository
	Orders    *persistence.GormPurchaseOrderRepository
	Receipts  *persistence.GormGoodsReceiptRepository
	Reports   *persistence.GormInventoryReportRepository

	seq int
}

// NewFixture creates a Fixture on a fresh sqlite database
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureOn(NewSQLiteDB(t))
}

// NewFixtureOn creates a Fixture on an already migrated database
func NewFixtureOn(db *gorm.DB) *Fixture {
	return &Fixture{
		DB:        db,
		TxScope:   persistence.NewGormTransactionScope(db),
		Users:     persistence.NewGormUserRepository(db),
		Sites:     persistence.NewGormSiteRepository(db),
		Suppliers: persistence.NewGormSupplierRepository(db),
		Items:     persistence.NewGormItemRepository(db),
		Records:   persistence.NewGormRecordRepository(db),
		Entries:   persistence.NewGormLedgerEntryRepository(db),
		Requests:  persistence.NewGormMaterialRequestRepository(db),
		Issues:    persistence.NewGormMaterialIssueRepository(db),
		Transfers: persistence.NewGormTransferOrderRepository(db),
		Orders:    persistence.NewGormPurchaseOrderRepository(db),
		Receipts:  persistence.NewGormGoodsReceiptRepository(db),
		Reports:   persistence.NewGormInventoryReportRepository(db),
	}
}

func (f *Fixture) next() int {
	f.seq++
	return f.seq
}

// Site seeds a project site in the given state
func (f *Fixture) Site(t *testing.T, name, state string) *partner.Site {
	t.Helper()
	n := f.next()
	site, err := partner.NewSite(name, fmt.Sprintf("PRJ%03d", n), partner.HierarchySite, partner.SiteDetails{State: state})
	require.NoError(t, err)
	require.NoError(t, f.Sites.Create(context.Background(), site))
	return site
}

// Warehouse seeds the central warehouse site
func (f *Fixture) Warehouse(t *testing.T, state string) *partner.Site {
	t.Helper()
	n := f.next()
	site, err := partner.NewSite("Central Store", fmt.Sprintf("CWH%03d", n), partner.HierarchyCentralWarehouse, partner.SiteDetails{State: state})
	require.NoError(t, err)
	require.NoError(t, f.Sites.Create(context.Background(), site))
	return site
}

// User seeds an active user holding role, optionally assigned to a site
func (f *Fixture) User(t *testing.T, role identity.Role, siteID *uuid.UUID) *identity.User {
	t.Helper()
	n := f.next()
	user, err := identity.NewUser(
		fmt.Sprintf("User %d", n),
		fmt.Sprintf("user%d@sitestock.test", n),
		fmt.Sprintf("user%d", n),
		"secret123",
		role,
		siteID,
	)
	require.NoError(t, err)
	require.NoError(t, f.Users.Create(context.Background(), user))
	return user
}

// Supplier seeds a supplier located in state
func (f *Fixture) Supplier(t *testing.T, name, state string) *partner.Supplier {
	t.Helper()
	n := f.next()
	sup, err := partner.NewSupplier(name, partner.SupplierContact{
		Email: fmt.Sprintf("supplier%d@sitestock.test", n),
		State: state,
	})
	require.NoError(t, err)
	require.NoError(t, f.Suppliers.Create(context.Background(), sup))
	return sup
}

// Item seeds a catalog item with the given code
func (f *Fixture) Item(t *testing.T, code, description string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(code, catalog.ItemAttributes{
		Description: description,
		UOM:         "BAG",
		Category:    "Civil",
		SubCategory: "Cement",
		GSTPercent:  decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	require.NoError(t, f.Items.Create(context.Background(), item))
	return item
}
