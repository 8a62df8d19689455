package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		DefaultMultiplier: 2.0,
		MinMargin:         0.10,
		TargetMargin:      0.25,
		ExcessMargin:      0.50,
		OverrideDrift:     0.20,
	}
}

func twoItemShipment() CostingInput {
	return CostingInput{
		Method: MethodByValue,
		Shipment: ShipmentInput{
			FOBTotal: 1000,
			Freight:  200,
			Items: []ShipmentItemInput{
				{Reference: "BRK-001", Category: "brakes", Quantity: 10, FOBSubtotal: 600, Weight: 30, Volume: 2},
				{Reference: "FLT-002", Category: "filters", Quantity: 40, FOBSubtotal: 400, Weight: 10, Volume: 6},
			},
		},
		Rates:           AdValoremRates{StatsTax: 0.03, VAT: 0.21, AdditionalVAT: 0.10, IncomeTax: 0.06, GrossReceipts: 0.025},
		DefaultDutyRate: 0.18,
		FixedFees:       50,
		Logistics:       LogisticsCosts{CustomsAgent: 80, PortCharges: 40, InlandTransport: 60, Other: 20},
		ExchangeRate:    1000,
	}
}

func TestAllocateLandedCosts(t *testing.T) {
	t.Run("InsuranceDefaultsToOnePercentOfFOBPlusFreight", func(t *testing.T) {
		in := twoItemShipment()
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		assert.InDelta(t, 12.0, res.InsuranceTotal, 1e-9) // 1% of 1200
		assert.InDelta(t, 1212.0, res.CIFTotal, 1e-9)
	})

	t.Run("ExplicitInsuranceWins", func(t *testing.T) {
		in := twoItemShipment()
		ins := 30.0
		in.Shipment.Insurance = &ins
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		assert.InDelta(t, 30.0, res.InsuranceTotal, 1e-9)
	})

	t.Run("FreightAndInsuranceConservation", func(t *testing.T) {
		for _, method := range []AllocationMethod{MethodByValue, MethodByWeight, MethodByVolume, MethodHybrid} {
			in := twoItemShipment()
			in.Method = method
			res, err := AllocateLandedCosts(in, testConfig())
			require.NoError(t, err)

			var freight, insurance float64
			for _, it := range res.Items {
				freight += it.Freight.Total
				insurance += it.Insurance.Total
			}
			assert.InDelta(t, in.Shipment.Freight, freight, 1e-9, "method %s", method)
			assert.InDelta(t, res.InsuranceTotal, insurance, 1e-9, "method %s", method)
		}
	})

	t.Run("HybridMatchesByValue", func(t *testing.T) {
		in := twoItemShipment()
		in.Method = MethodByValue
		byValue, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		in.Method = MethodHybrid
		hybrid, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		for i := range byValue.Items {
			assert.InDelta(t, byValue.Items[i].LandedUnitCost, hybrid.Items[i].LandedUnitCost, 1e-9)
		}
	})

	t.Run("ByWeightUsesWeightFactors", func(t *testing.T) {
		in := twoItemShipment()
		in.Method = MethodByWeight
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		assert.InDelta(t, 0.75, res.Items[0].Factor, 1e-9) // 30 of 40 kg
		assert.InDelta(t, 0.25, res.Items[1].Factor, 1e-9)
	})

	t.Run("ZeroDenominatorYieldsZeroFactors", func(t *testing.T) {
		in := twoItemShipment()
		in.Method = MethodByVolume
		for i := range in.Shipment.Items {
			in.Shipment.Items[i].Volume = 0
		}
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		for _, it := range res.Items {
			assert.Zero(t, it.Factor)
			assert.Zero(t, it.Freight.Total)
		}
	})

	t.Run("RecoverableTaxesExcludedFromLandedCost", func(t *testing.T) {
		in := twoItemShipment()
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		it := res.Items[0]
		nonRecoverable := it.FOB.Total + it.Freight.Total + it.Insurance.Total +
			it.Duty.Total + it.StatsTax.Total + it.FixedFees.Total + it.Logistics.Total
		assert.InDelta(t, nonRecoverable, it.NonRecoverableTotal, 1e-9)
		assert.InDelta(t, nonRecoverable/it.Quantity, it.LandedUnitCost, 1e-9)
		assert.Greater(t, it.Recoverable.Total(), 0.0)
		assert.InDelta(t, it.NonRecoverableTotal+it.Recoverable.Total(), it.DisbursementTotal, 1e-9)
	})

	t.Run("DutyRatePrecedence", func(t *testing.T) {
		in := twoItemShipment()
		override := 0.05
		in.Shipment.Items[0].DutyRate = &override
		in.CategoryDutyRates = map[string]float64{"filters": 0.12}
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		assert.InDelta(t, res.Items[0].CIF*0.05, res.Items[0].Duty.Total, 1e-9)
		assert.InDelta(t, res.Items[1].CIF*0.12, res.Items[1].Duty.Total, 1e-9)
	})

	t.Run("MarginAlertPerItem", func(t *testing.T) {
		in := twoItemShipment()
		in.Shipment.Items[0].SalePrice = 80000 // landed local ≈ 103k → selling below cost
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		require.True(t, res.Items[0].MarginKnown)
		assert.Equal(t, MarginStatusCritical, res.Items[0].MarginStatus)
		assert.False(t, res.Items[1].MarginKnown) // no sale price
	})

	t.Run("CategorySummaries", func(t *testing.T) {
		in := twoItemShipment()
		res, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)

		require.Len(t, res.Categories, 2)
		var total float64
		for _, c := range res.Categories {
			total += c.NonRecoverableTotal
		}
		assert.InDelta(t, res.NonRecoverableTotal, total, 1e-9)
	})

	t.Run("IdempotentAcrossRuns", func(t *testing.T) {
		in := twoItemShipment()
		first, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		second, err := AllocateLandedCosts(in, testConfig())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Validation", func(t *testing.T) {
		in := twoItemShipment()
		in.Method = "by_vibes"
		_, err := AllocateLandedCosts(in, testConfig())
		assert.ErrorIs(t, err, ErrUnknownAllocationMethod)
		assert.True(t, IsValidationError(err))

		in = twoItemShipment()
		in.Shipment.Items = nil
		_, err = AllocateLandedCosts(in, testConfig())
		assert.ErrorIs(t, err, ErrNoShipmentItems)

		in = twoItemShipment()
		in.Shipment.Items[1].Quantity = 0
		_, err = AllocateLandedCosts(in, testConfig())
		assert.ErrorIs(t, err, ErrNonPositiveQuantity)

		in = twoItemShipment()
		in.Shipment.Freight = -1
		_, err = AllocateLandedCosts(in, testConfig())
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}
