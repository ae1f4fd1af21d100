package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLedgerEntryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLedgerEntryRepository(newTestDB(t))

	itemID, actor := uuid.New(), uuid.New()
	src := inventory.Source{Type: inventory.SourceGoodsReceipt, ID: uuid.New(), No: "GRN-0001"}
	receipt := inventory.NewLedgerEntry(itemID, inventory.CentralLocation(), inventory.Receipt(qty(4)), src, actor)
	global := inventory.NewLedgerEntry(itemID, inventory.GlobalLocation(), inventory.Receipt(qty(4)), src, actor)
	other := inventory.NewLedgerEntry(itemID, inventory.CentralLocation(), inventory.OpeningStock(qty(1)),
		inventory.Source{Type: inventory.SourceOpeningStock, ID: itemID}, actor)

	require.NoError(t, repo.Append(ctx, receipt, global, other))

	active, err := repo.FindActiveBySource(ctx, inventory.SourceGoodsReceipt, src.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, inventory.MovementReceipt, active[0].Kind)
	assert.True(t, active[0].Quantity.Equal(qty(4)))

	t.Run("reversal entries and reversed originals drop out", func(t *testing.T) {
		rev, _, err := active[0].Reverse(actor)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, rev))
		require.NoError(t, repo.MarkReversed(ctx, []uuid.UUID{active[0].ID}, time.Now()))

		left, err := repo.FindActiveBySource(ctx, inventory.SourceGoodsReceipt, src.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, active[1].ID, left[0].ID)
	})

	t.Run("reversing twice is a conflict", func(t *testing.T) {
		err := repo.MarkReversed(ctx, []uuid.UUID{active[0].ID}, time.Now())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("history is newest first", func(t *testing.T) {
		history, total, err := repo.FindByItem(ctx, itemID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, history, 2)
		assert.False(t, history[0].CreatedAt.Before(history[1].CreatedAt))
	})
}
