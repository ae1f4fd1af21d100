package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cementAttrs() ItemAttributes {
	return ItemAttributes{
		Description: "OPC Cement 53 grade",
		UOM:         "bag",
		Category:    "Cement",
		GSTPercent:  decimal.NewFromInt(28),
	}
}

func TestNewItem(t *testing.T) {
	t.Run("creates item and upper-cases the code", func(t *testing.T) {
		item, err := NewItem("item-0001", cementAttrs())
		require.NoError(t, err)
		assert.Equal(t, "ITEM-0001", item.ItemCode)
		assert.Equal(t, "bag", item.UOM)
		require.Len(t, item.GetDomainEvents(), 1)
	})

	t.Run("rejects missing attributes", func(t *testing.T) {
		_, err := NewItem("", ItemAttributes{GSTPercent: decimal.NewFromInt(120)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		var failure *shared.ValidationFailure
		require.True(t, errors.As(err, &failure))
		assert.Len(t, failure.Errors, 4)
	})
}

func TestItem_AssignCode(t *testing.T) {
	item, err := NewItem("", cementAttrs())
	require.NoError(t, err)

	require.NoError(t, item.AssignCode("ITEM-0007"))
	assert.Equal(t, "ITEM-0007", item.ItemCode)
	assert.Error(t, item.AssignCode("ITEM-0008"))
}

func TestItem_Update(t *testing.T) {
	item, err := NewItem("ITEM-0001", cementAttrs())
	require.NoError(t, err)

	attrs := cementAttrs()
	attrs.Description = "PPC Cement"
	require.NoError(t, item.Update(attrs))
	assert.Equal(t, "PPC Cement", item.Description)
	assert.Equal(t, 1, item.Version)

	item.RecordPurchasePrice(decimal.NewFromInt(390))
	item.RecordPurchasePrice(decimal.Zero)
	assert.True(t, decimal.NewFromInt(390).Equal(item.LastPurchasePrice))
}
