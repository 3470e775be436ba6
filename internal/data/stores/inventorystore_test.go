package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrikINS/floor-ready/internal/core/inventory"
)

func TestInventoryStore_Adjust(t *testing.T) {
	ctx := context.Background()
	store := NewInventoryStore(openDB(t))

	item := inventory.Item{Name: "Chairs", Unit: "pcs", Stock: 10}
	require.NoError(t, store.CreateItem(ctx, &item))

	got, err := store.Adjust(ctx, &inventory.Adjustment{ItemID: item.ID, Delta: -4, Reason: "gala", ActorID: "mgr-1"})
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)

	got, err = store.Adjust(ctx, &inventory.Adjustment{ItemID: item.ID, Delta: 5, ActorID: "mgr-1"})
	require.NoError(t, err)
	assert.Equal(t, 11, got.Stock)

	_, err = store.Adjust(ctx, &inventory.Adjustment{ItemID: item.ID, Delta: -12, ActorID: "mgr-1"})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	_, err = store.Adjust(ctx, &inventory.Adjustment{ItemID: "missing", Delta: 1, ActorID: "mgr-1"})
	require.ErrorIs(t, err, inventory.ErrNotFound)

	stored, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, stored.Stock)

	adjs, err := store.ListAdjustments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, adjs, 2, "failed adjustments are not recorded")
	assert.Equal(t, 5, adjs[0].Delta)
	assert.Equal(t, "gala", adjs[1].Reason)
}

func TestInventoryStore_ListItems(t *testing.T) {
	ctx := context.Background()
	store := NewInventoryStore(openDB(t))

	require.NoError(t, store.CreateItem(ctx, &inventory.Item{Name: "Tables"}))
	require.NoError(t, store.CreateItem(ctx, &inventory.Item{Name: "Banners"}))
	require.ErrorIs(t, store.CreateItem(ctx, &inventory.Item{Name: "Bad", Stock: -1}), inventory.ErrInsufficientStock)

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Banners", items[0].Name)
	assert.Zero(t, items[1].Stock)
}
