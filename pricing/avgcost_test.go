package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverage(t *testing.T) {
	t.Run("BlendsProportionally", func(t *testing.T) {
		// 10 @ 100 + 5 @ 160 → 146.67
		got := WeightedAverage(10, 100, 5, 160)
		assert.InDelta(t, 146.6667, got, 0.001)
	})

	t.Run("ZeroStockReplacesAverage", func(t *testing.T) {
		assert.Equal(t, 160.0, WeightedAverage(0, 100, 5, 160))
		assert.Equal(t, 160.0, WeightedAverage(0, 0, 5, 160))
	})

	t.Run("StaysWithinOldAndIncomingCost", func(t *testing.T) {
		cases := []struct {
			oldStock, oldCost, inQty, inCost float64
		}{
			{10, 100, 5, 160},
			{1, 500, 99, 10},
			{50, 80, 1, 79.99},
			{3, 0, 7, 1000},
		}
		for _, c := range cases {
			got := WeightedAverage(c.oldStock, c.oldCost, c.inQty, c.inCost)
			lo := math.Min(c.oldCost, c.inCost)
			hi := math.Max(c.oldCost, c.inCost)
			assert.GreaterOrEqual(t, got, lo)
			assert.LessOrEqual(t, got, hi)
		}
	})
}

func TestMergeCostBasis(t *testing.T) {
	t.Run("SnapshotCapturesBeforeAndAfter", func(t *testing.T) {
		snap, err := MergeCostBasis(10, 100, 5, 160)
		require.NoError(t, err)
		assert.Equal(t, 100.0, snap.CostBefore)
		assert.InDelta(t, 146.6667, snap.CostAfter, 0.001)
		assert.Equal(t, 10.0, snap.QuantityBefore)
		assert.Equal(t, 15.0, snap.QuantityAfter)
	})

	t.Run("RejectsNonPositiveIncomingQuantity", func(t *testing.T) {
		_, err := MergeCostBasis(10, 100, 0, 160)
		assert.ErrorIs(t, err, ErrNonPositiveQuantity)
	})

	t.Run("RejectsNegativeCosts", func(t *testing.T) {
		_, err := MergeCostBasis(10, 100, 5, -1)
		assert.ErrorIs(t, err, ErrNegativeAmount)
		_, err = MergeCostBasis(10, -100, 5, 1)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}
