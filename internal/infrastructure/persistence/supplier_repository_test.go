package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSupplierRepository creates a GormSupplierRepository with a mocked SQL connection
func newMockSupplierRepository(t *testing.T) (*GormSupplierRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSupplierRepository(gormDB), mock, mockDB
}

func TestGormSupplierRepository_FindByID(t *testing.T) {
	t.Run("finds existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "supplier_name", "email", "state", "gstin", "version"}).
			AddRow(supplierID, "Acme Cement", "sales@acme.in", "Karnataka", "29ABCDE1234F1Z5", 1)

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(supplierID, 1).
			WillReturnRows(rows)

		supplier, err := repo.FindByID(context.Background(), supplierID)

		require.NoError(t, err)
		assert.Equal(t, supplierID, supplier.ID)
		assert.Equal(t, "Acme Cement", supplier.SupplierName)
		assert.Equal(t, "29ABCDE1234F1Z5", supplier.GSTIN)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for a missing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(supplierID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		supplier, err := repo.FindByID(context.Background(), supplierID)

		assert.Nil(t, supplier)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierRepository(newTestDB(t))

	for _, name := range []string{"Acme Cement", "Bharat Steel", "Coastal Sand"} {
		s, err := partner.NewSupplier(name, partner.SupplierContact{
			Email: uuid.NewString()[:8] + "@example.com",
			State: "Karnataka",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, s))
	}

	t.Run("duplicate email is rejected", func(t *testing.T) {
		first, err := partner.NewSupplier("One", partner.SupplierContact{Email: "dup@example.com"})
		require.NoError(t, err)
		second, err := partner.NewSupplier("Two", partner.SupplierContact{Email: "DUP@example.com"})
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, first))
		assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrAlreadyExists)
	})

	t.Run("search is case-insensitive and paginated", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 1, Search: "STEEL"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, "Bharat Steel", list[0].SupplierName)
	})

	t.Run("default order is by name", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Equal(t, "Acme Cement", list[0].SupplierName)
	})
}

func TestGormSiteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSiteRepository(newTestDB(t))

	warehouse, err := partner.NewSite("Main Store", "cw-01", partner.HierarchyCentralWarehouse, partner.SiteDetails{State: "Karnataka"})
	require.NoError(t, err)
	tower, err := partner.NewSite("Tower A", "prj-01", partner.HierarchySite, partner.SiteDetails{State: "Kerala"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, warehouse))
	require.NoError(t, repo.Create(ctx, tower))

	got, err := repo.FindByID(ctx, tower.ID)
	require.NoError(t, err)
	assert.Equal(t, "PRJ-01", got.ProjectCode)

	list, total, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"hierarchy": string(partner.HierarchySite)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, tower.ID, list[0].ID)

	dup, err := partner.NewSite("Copy", "PRJ-01", partner.HierarchySite, partner.SiteDetails{})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
}
