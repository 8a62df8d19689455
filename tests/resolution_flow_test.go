// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/repository"
	testingutil "github.com/motofleet/backoffice/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolutionFlow(testDB *testingutil.TestDB) businessflow.PriceResolutionFlow {
	db := testDB.DB
	rateRepo := repository.NewExchangeRateRepository(db)
	return businessflow.NewPriceResolutionFlow(
		repository.NewPartRepository(db),
		repository.NewPriceListRepository(db),
		repository.NewPriceListItemRepository(db),
		repository.NewMarkupRuleRepository(db),
		repository.NewDiscountRuleRepository(db),
		services.NewExchangeRateService(rateRepo, nil, nil),
		testPricingConfig(),
	)
}

func TestPriceResolutionFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newResolutionFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		list, err := fixtures.CreateTestPriceList("retail", 0)
		require.NoError(t, err)
		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPrice(list.ID, part.ID, 25000)
		require.NoError(t, err)

		t.Run("BaseListPrice", func(t *testing.T) {
			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        part.ID,
				PriceListCode: "retail",
				Quantity:      1,
			})
			require.NoError(t, err)
			assert.InDelta(t, 25000, resp.BasePrice, 0.01)
			assert.InDelta(t, 25000, resp.FinalPrice, 0.01)
			assert.Empty(t, resp.AppliedRules)
		})

		t.Run("QuantityDiscountApplies", func(t *testing.T) {
			_, err := fixtures.CreateTestDiscountRule(10, 0.05)
			require.NoError(t, err)

			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        part.ID,
				PriceListCode: "retail",
				Quantity:      12,
			})
			require.NoError(t, err)
			require.Len(t, resp.AppliedRules, 1)
			assert.InDelta(t, 25000*0.95, resp.FinalPrice, 0.01)
			assert.InDelta(t, 0.05, resp.TotalDiscount, 0.0001)
		})

		t.Run("SmallOrderGetsNoDiscount", func(t *testing.T) {
			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        part.ID,
				PriceListCode: "retail",
				Quantity:      2,
			})
			require.NoError(t, err)
			assert.Empty(t, resp.AppliedRules)
			assert.InDelta(t, 25000, resp.FinalPrice, 0.01)
		})

		t.Run("ListDiscountStacks", func(t *testing.T) {
			wholesale, err := fixtures.CreateTestPriceList("wholesale", 0.10)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPrice(wholesale.ID, part.ID, 25000)
			require.NoError(t, err)

			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        part.ID,
				PriceListCode: "wholesale",
				Quantity:      1,
			})
			require.NoError(t, err)
			assert.InDelta(t, 25000*0.90, resp.FinalPrice, 0.01)
			assert.InDelta(t, 0.10, resp.ListDiscount, 0.0001)
		})

		t.Run("MarkupFallbackForUnpricedPart", func(t *testing.T) {
			unpriced, err := fixtures.CreateTestPart("electrics", 8)
			require.NoError(t, err)
			_, err = fixtures.CreateTestMarkupRule("electrics", 2.5, 10)
			require.NoError(t, err)

			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        unpriced.ID,
				PriceListCode: "retail",
				Quantity:      1,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, resp.RuleName)
			assert.InDelta(t, unpriced.AverageCostARS*2.5, resp.BasePrice, 0.01)
		})

		t.Run("NotResolvableWithoutCostBasis", func(t *testing.T) {
			bare, err := fixtures.CreateTestPart("misc", 0)
			require.NoError(t, err)
			// Zero the ARS basis the fixture derives from the USD cost
			require.NoError(t, testDB.DB.Model(bare).Update("average_cost_ars", 0).Error)

			_, err = flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        bare.ID,
				PriceListCode: "retail",
				Quantity:      1,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsPriceNotResolvable(err))
		})

		t.Run("InactivePartRejected", func(t *testing.T) {
			inactive, err := fixtures.CreateTestPart("brakes", 10)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(inactive).Update("active", false).Error)

			_, err = flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        inactive.ID,
				PriceListCode: "retail",
				Quantity:      1,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsPartInactive(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPriceResolutionQuantityBreaks(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newResolutionFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		list, err := fixtures.CreateTestPriceList("retail", 0)
		require.NoError(t, err)
		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPrice(list.ID, part.ID, 25000)
		require.NoError(t, err)

		itemRepo := repository.NewPriceListItemRepository(testDB.DB)
		require.NoError(t, itemRepo.Save(ctx, &models.PriceListItem{
			PriceListID: list.ID,
			PartID:      part.ID,
			MinQuantity: 10,
			Price:       22000,
		}))
		require.NoError(t, itemRepo.Save(ctx, &models.PriceListItem{
			PriceListID: list.ID,
			PartID:      part.ID,
			MinQuantity: 50,
			Price:       20000,
		}))

		cases := []struct {
			quantity int
			expected float64
		}{
			{1, 25000},
			{9, 25000},
			{10, 22000},
			{49, 22000},
			{50, 20000},
			{500, 20000},
		}

		for _, tc := range cases {
			resp, err := flow.ResolvePrice(ctx, &dto.ResolvePriceRequest{
				PartID:        part.ID,
				PriceListCode: "retail",
				Quantity:      tc.quantity,
			})
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, resp.BasePrice, 0.01, "quantity %d", tc.quantity)
		}

		return nil
	})
	require.NoError(t, err)
}
