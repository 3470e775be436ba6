package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("deduplicates and trims", func(t *testing.T) {
		got, err := Reserve([]string{"chairs", " chairs ", "", "tables"}, 4, now)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "chairs", got[0].ItemID)
		assert.Equal(t, "tables", got[1].ItemID)
		assert.Equal(t, 4, got[1].QuantityRequired)
		assert.Equal(t, now, got[0].CreatedAt)
	})

	t.Run("empty selection ignores quantity", func(t *testing.T) {
		got, err := Reserve(nil, 0, now)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := Reserve([]string{"chairs"}, 0, now)
		assert.ErrorIs(t, err, ErrInvalidReservation)
	})
}

func TestItem_Apply(t *testing.T) {
	item := Item{Name: "Stanchion", Stock: 5}

	next, err := item.Apply(-5)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	next, err = item.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	_, err = item.Apply(-6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}
