package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedRow struct {
	ItemCode string `json:"itemCode"`
	InHand   string `json:"inHand"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	var got cachedRow
	found, err := c.Get(ctx, "report:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "report:1", cachedRow{ItemCode: "CEM-01", InHand: "10"}, time.Minute))
	found, err = c.Get(ctx, "report:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "CEM-01", got.ItemCode)

	var wrongShape []string
	_, err = c.Get(ctx, "report:1", &wrongShape)
	assert.Error(t, err)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", cachedRow{}, 10*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", cachedRow{}, 0))
	time.Sleep(20 * time.Millisecond)

	var got cachedRow
	found, _ := c.Get(ctx, "short", &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, "forever", &got)
	assert.True(t, found)

	c.sweep(time.Now())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	for _, key := range []string{"inventory-report:a", "inventory-report:b", "other:a"} {
		require.NoError(t, c.Set(ctx, key, cachedRow{}, time.Minute))
	}
	require.NoError(t, c.DeletePrefix(ctx, "inventory-report:"))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryCache(time.Millisecond)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
