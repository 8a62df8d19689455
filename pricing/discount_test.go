package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackDiscounts(t *testing.T) {
	ctx := CustomerContext{PlanTier: "premium", TenureMonths: 24, Quantity: 12}

	t.Run("SequentialNotAdditive", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "loyalty", Condition: ConditionTenure, MinTenureMonths: 12, Kind: DiscountPercentage, Value: 0.05, Accumulable: true, Priority: 2},
			{ID: 2, Name: "volume", Condition: ConditionMinQuantity, MinQuantity: 10, Kind: DiscountPercentage, Value: 0.10, Accumulable: true, Priority: 1},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0)
		require.NoError(t, err)

		sequential := 1000 * 0.95 * 0.90
		additive := 1000 * (1 - 0.15)
		assert.InDelta(t, sequential, res.FinalPrice, 1e-9)
		assert.NotEqual(t, additive, res.FinalPrice)
		assert.InDelta(t, 1-sequential/1000, res.CumulativeDiscount, 1e-9)

		// second rule computed against the already-discounted running price
		require.Len(t, res.Applied, 2)
		assert.InDelta(t, 950.0, res.Applied[1].PriceBefore, 1e-9)
	})

	t.Run("SingleNonAccumulableByPriority", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "plan small", Condition: ConditionPlanTier, PlanTiers: []string{"premium"}, Kind: DiscountPercentage, Value: 0.08, Priority: 1},
			{ID: 2, Name: "plan big", Condition: ConditionPlanTier, PlanTiers: []string{"premium"}, Kind: DiscountPercentage, Value: 0.15, Priority: 9},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0)
		require.NoError(t, err)
		require.Len(t, res.Applied, 1)
		assert.Equal(t, "plan big", res.Applied[0].RuleName)
		assert.InDelta(t, 850.0, res.FinalPrice, 1e-9)
	})

	t.Run("PrimaryThenAccumulables", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "plan", Condition: ConditionPlanTier, PlanTiers: []string{"premium"}, Kind: DiscountPercentage, Value: 0.10, Priority: 5},
			{ID: 2, Name: "loyalty", Condition: ConditionTenure, MinTenureMonths: 12, Kind: DiscountPercentage, Value: 0.05, Accumulable: true, Priority: 1},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1000*0.90*0.95, res.FinalPrice, 1e-9)
		assert.Equal(t, "plan", res.Applied[0].RuleName)
	})

	t.Run("ListDiscountAppliedLast", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "volume", Condition: ConditionMinQuantity, MinQuantity: 10, Kind: DiscountPercentage, Value: 0.10, Accumulable: true, Priority: 1},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0.02)
		require.NoError(t, err)
		assert.InDelta(t, 1000*0.90*0.98, res.FinalPrice, 1e-9)
		assert.Equal(t, "price_list", res.Applied[len(res.Applied)-1].RuleName)
	})

	t.Run("FixedDiscountAndClamp", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "voucher", Condition: ConditionMinQuantity, MinQuantity: 1, Kind: DiscountFixed, Value: 1500, Priority: 1},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, res.FinalPrice)
		assert.InDelta(t, 1.0, res.CumulativeDiscount, 1e-9)
	})

	t.Run("NonMatchingRulesIgnored", func(t *testing.T) {
		rules := []DiscountRule{
			{ID: 1, Name: "other tier", Condition: ConditionPlanTier, PlanTiers: []string{"basic"}, Kind: DiscountPercentage, Value: 0.50, Priority: 1},
			{ID: 2, Name: "long tenure", Condition: ConditionTenure, MinTenureMonths: 60, Kind: DiscountPercentage, Value: 0.50, Accumulable: true, Priority: 1},
		}
		res, err := StackDiscounts(1000, rules, ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Applied)
		assert.Equal(t, 1000.0, res.FinalPrice)
		assert.Zero(t, res.CumulativeDiscount)
	})

	t.Run("NegativeBaseRejected", func(t *testing.T) {
		_, err := StackDiscounts(-1, nil, ctx, 0)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}
