package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardPlan() RentalPlanInput {
	return RentalPlanInput{
		Name:                "flex",
		DurationMonths:      12,
		Discount:            0.10,
		BiweeklySurcharge:   0.03,
		WeeklySurcharge:     0.05,
		WalletSurcharge:     0.02,
		CashSurcharge:       0.04,
		DepositMonths:       1,
		DepositOnDiscounted: true,
	}
}

func TestComputePlanQuote(t *testing.T) {
	t.Run("StandardDepreciationSchedule", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		// 85% of cost over 48 months regardless of the 12-month plan
		assert.InDelta(t, 4_800_000*0.85/48, q.Cost.MonthlyDepreciation, 1e-6)
	})

	t.Run("RentToOwnDepreciatesOverPlanDuration", func(t *testing.T) {
		plan := standardPlan()
		plan.RentToOwn = true
		plan.DurationMonths = 24
		q, err := ComputePlanQuote(4_800_000, plan, OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 200_000, q.Cost.MonthlyDepreciation, 1e-6)
	})

	t.Run("OperatingCostBuildup", func(t *testing.T) {
		op := OperatingCostParams{
			InsuranceMonthly:   12000,
			AnnualTaxes:        24000,
			AnnualRegistration: 6000,
			AnnualInspection:   6000,
			TelematicsMonthly:  3000,
			MaintenanceMonthly: 8000,
			ReserveRate:        0.03,
			StorageMonthly:     2000,
			AdminMonthly:       5000,
		}
		q, err := ComputePlanQuote(1_200_000, standardPlan(), op, 0.25)
		require.NoError(t, err)

		assert.InDelta(t, 3000.0, q.Cost.ProratedFees, 1e-9)   // 36000/12
		assert.InDelta(t, 3000.0, q.Cost.Reserve, 1e-9)        // 1.2M*0.03/12
		assert.InDelta(t, 36000.0, q.Cost.OperatingTotal, 1e-9)
		assert.InDelta(t, q.Cost.MonthlyDepreciation+36000, q.Cost.TotalMonthlyCost, 1e-9)
	})

	t.Run("MarginTargetPricing", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, q.Cost.TotalMonthlyCost/0.75, q.BasePrice, 1e-6)
		assert.InDelta(t, q.BasePrice*0.90, q.DiscountedPrice, 1e-6)
	})

	t.Run("ZeroTargetFallsBackToCostTimes125", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0)
		require.NoError(t, err)
		assert.InDelta(t, q.Cost.TotalMonthlyCost*1.25, q.BasePrice, 1e-6)
	})

	t.Run("FrequencyConversion", func(t *testing.T) {
		// base 10000, 10% discount → 9000; weekly (9000/4)×1.05 = 2362.5
		plan := standardPlan()
		q := &PlanQuote{BasePrice: 10000, DiscountedPrice: 9000}
		q.fillDerived(0, plan, 0.25)

		assert.InDelta(t, 9000.0, q.Frequencies.Monthly, 1e-9)
		assert.InDelta(t, (9000.0/2)*1.03, q.Frequencies.Biweekly, 1e-9)
		assert.InDelta(t, 2362.5, q.Frequencies.Weekly, 1e-9)
	})

	t.Run("PaymentMethodSurcharges", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.Equal(t, q.DiscountedPrice, q.PaymentMethods.WireTransfer)
		assert.InDelta(t, q.DiscountedPrice*1.02, q.PaymentMethods.Wallet, 1e-6)
		assert.InDelta(t, q.DiscountedPrice*1.04, q.PaymentMethods.Cash, 1e-6)
	})

	t.Run("DepositBase", func(t *testing.T) {
		plan := standardPlan()
		plan.DepositMonths = 2
		q, err := ComputePlanQuote(4_800_000, plan, OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, q.DiscountedPrice*2, q.Deposit, 1e-6)

		plan.DepositOnDiscounted = false
		q, err = ComputePlanQuote(4_800_000, plan, OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.InDelta(t, q.BasePrice*2, q.Deposit, 1e-6)
	})

	t.Run("MarginClassificationBoundaries", func(t *testing.T) {
		// margin exactly at 10% must not be critical; exactly at target is ok
		assert.Equal(t, MarginStatusLow, ClassifyMargin(0.10, MarginPolicy{MinMargin: 0.10, TargetMargin: 0.25}))
		assert.Equal(t, MarginStatusOK, ClassifyMargin(0.25, MarginPolicy{MinMargin: 0.10, TargetMargin: 0.25}))
		assert.Equal(t, MarginStatusCritical, ClassifyMargin(0.0999, MarginPolicy{MinMargin: 0.10, TargetMargin: 0.25}))
	})

	t.Run("RealizedMargin", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		want := (q.DiscountedPrice - q.Cost.TotalMonthlyCost) / q.DiscountedPrice
		assert.InDelta(t, want, q.Margin, 1e-9)
		// 25% target with a 10% plan discount lands below target
		assert.Equal(t, MarginStatusLow, q.MarginStatus)
	})

	t.Run("RentToOwnProjection", func(t *testing.T) {
		plan := standardPlan()
		plan.RentToOwn = true
		plan.DurationMonths = 24
		plan.Discount = 0

		q, err := ComputePlanQuote(4_800_000, plan, OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		require.NotNil(t, q.RentToOwn)

		totalPaid := q.DiscountedPrice * 24
		assert.InDelta(t, totalPaid, q.RentToOwn.TotalPaid, 1e-6)
		assert.InDelta(t, totalPaid-4_800_000, q.RentToOwn.DifferenceVsCost, 1e-6)
		wantRate := (math.Sqrt(totalPaid/4_800_000) - 1) * 100
		assert.InDelta(t, wantRate, q.RentToOwn.EffectiveAnnualPct, 1e-9)
	})

	t.Run("NoProjectionForStandardPlans", func(t *testing.T) {
		q, err := ComputePlanQuote(4_800_000, standardPlan(), OperatingCostParams{}, 0.25)
		require.NoError(t, err)
		assert.Nil(t, q.RentToOwn)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := ComputePlanQuote(-1, standardPlan(), OperatingCostParams{}, 0.25)
		assert.ErrorIs(t, err, ErrNegativeAmount)

		plan := standardPlan()
		plan.RentToOwn = true
		plan.DurationMonths = 0
		_, err = ComputePlanQuote(100, plan, OperatingCostParams{}, 0.25)
		assert.ErrorIs(t, err, ErrNonPositiveDuration)
	})
}

func TestReplayPlanQuote(t *testing.T) {
	t.Run("ReproducesComputedFigures", func(t *testing.T) {
		plan := standardPlan()
		op := OperatingCostParams{InsuranceMonthly: 12000, MaintenanceMonthly: 8000}
		original, err := ComputePlanQuote(4_800_000, plan, op, 0.25)
		require.NoError(t, err)

		replay, err := ReplayPlanQuote(original.Cost.TotalMonthlyCost, original.Margin, plan, 0.25)
		require.NoError(t, err)

		assert.InDelta(t, original.DiscountedPrice, replay.DiscountedPrice, 1e-6)
		assert.InDelta(t, original.BasePrice, replay.BasePrice, 1e-6)
		assert.InDelta(t, original.Frequencies.Weekly, replay.Frequencies.Weekly, 1e-6)
		assert.InDelta(t, original.PaymentMethods.Cash, replay.PaymentMethods.Cash, 1e-6)
		assert.InDelta(t, original.Deposit, replay.Deposit, 1e-6)
		assert.Equal(t, original.MarginStatus, replay.MarginStatus)
	})

	t.Run("RejectsImpossibleMargin", func(t *testing.T) {
		_, err := ReplayPlanQuote(1000, 1.0, standardPlan(), 0.25)
		assert.Error(t, err)
	})
}
