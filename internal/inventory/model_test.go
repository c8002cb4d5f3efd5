package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDeduction(t *testing.T) {
	item := StockItem{Quantity: 100}

	got, err := applyDeduction(item, 15)
	require.NoError(t, err)
	require.Equal(t, 85, got.Available())
	require.Equal(t, 15, got.Consumed)
	require.Equal(t, 100, got.Quantity)
}

func TestApplyDeductionInsufficient(t *testing.T) {
	item := StockItem{Quantity: 100, Consumed: 90} // 10 available

	_, err := applyDeduction(item, 15)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The exact balance still goes through.
	got, err := applyDeduction(item, 10)
	require.NoError(t, err)
	require.Equal(t, 0, got.Available())
}

func TestApplyDeductionNegative(t *testing.T) {
	_, err := applyDeduction(StockItem{Quantity: 10}, -1)
	require.Error(t, err)
}

func TestLowStock(t *testing.T) {
	require.True(t, StockItem{Quantity: 20, Consumed: 15, ReorderThreshold: 5}.LowStock())
	require.False(t, StockItem{Quantity: 20, Consumed: 10, ReorderThreshold: 5}.LowStock())
	// No threshold configured means never low.
	require.False(t, StockItem{Quantity: 0, Consumed: 0}.LowStock())
}
