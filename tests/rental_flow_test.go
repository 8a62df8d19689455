// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/motofleet/backoffice/app/dto"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/repository"
	testingutil "github.com/motofleet/backoffice/testing"
	"github.com/motofleet/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalFlow(testDB *testingutil.TestDB) businessflow.RentalFlow {
	db := testDB.DB
	return businessflow.NewRentalFlow(
		repository.NewVehicleModelRepository(db),
		repository.NewRentalPlanRepository(db),
		repository.NewModelPriceRepository(db),
		repository.NewAuditLogRepository(db),
		testPricingConfig(),
		db,
	)
}

func TestRentalFlowComputeModelPrices(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRentalFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		model, err := fixtures.CreateTestVehicleModel("Commuter 150", 2500000)
		require.NoError(t, err)
		planA, err := fixtures.CreateTestRentalPlan("Mensual", "standard", 1, 0)
		require.NoError(t, err)
		planB, err := fixtures.CreateTestRentalPlan("Anual", "standard", 12, 0.10)
		require.NoError(t, err)

		t.Run("ComputesAllActivePlans", func(t *testing.T) {
			resp, err := flow.ComputeModelPrices(ctx, &dto.ComputeModelPricesRequest{
				ModelUUID: model.UUID.String(),
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Quotes, 2)
			for _, q := range resp.Quotes {
				assert.Greater(t, q.TotalMonthlyCost, 0.0)
			}
		})

		t.Run("PersistsModelPrices", func(t *testing.T) {
			repo := repository.NewModelPriceRepository(testDB.DB)

			stored, err := repo.ByPair(ctx, model.ID, planA.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.True(t, stored.IsResolved())

			stored, err = repo.ByPair(ctx, model.ID, planB.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
		})

		t.Run("DiscountedPlanIsCheaper", func(t *testing.T) {
			repo := repository.NewModelPriceRepository(testDB.DB)

			monthly, err := repo.ByPair(ctx, model.ID, planA.ID)
			require.NoError(t, err)
			annual, err := repo.ByPair(ctx, model.ID, planB.ID)
			require.NoError(t, err)

			assert.Less(t, annual.ComputedPrice, monthly.ComputedPrice)
		})

		t.Run("ModelNotFound", func(t *testing.T) {
			_, err := flow.ComputeModelPrices(ctx, &dto.ComputeModelPricesRequest{
				ModelUUID: "11111111-2222-3333-4444-555555555555",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsVehicleModelNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRentalFlowSimulate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRentalFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("BareQuote", func(t *testing.T) {
			resp, err := flow.SimulateRental(ctx, &dto.SimulateRentalRequest{
				LandedCost:     2500000,
				DurationMonths: 12,
			})
			require.NoError(t, err)
			assert.Greater(t, resp.Quote.TotalMonthlyCost, 0.0)
		})

		t.Run("DiscountLowersPrice", func(t *testing.T) {
			base, err := flow.SimulateRental(ctx, &dto.SimulateRentalRequest{
				LandedCost:     2500000,
				DurationMonths: 12,
			})
			require.NoError(t, err)

			discounted, err := flow.SimulateRental(ctx, &dto.SimulateRentalRequest{
				LandedCost:     2500000,
				DurationMonths: 12,
				Discount:       0.15,
			})
			require.NoError(t, err)

			assert.Less(t, discounted.Quote.DiscountedPrice, base.Quote.DiscountedPrice)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRentalFlowOverride(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRentalFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		model, err := fixtures.CreateTestVehicleModel("Override 150", 2500000)
		require.NoError(t, err)
		plan, err := fixtures.CreateTestRentalPlan("Override 12m", "standard", 12, 0.10)
		require.NoError(t, err)

		_, err = flow.ComputeModelPrices(ctx, &dto.ComputeModelPricesRequest{
			ModelUUID: model.UUID.String(),
		}, metadata)
		require.NoError(t, err)

		t.Run("SetOverride", func(t *testing.T) {
			resp, err := flow.OverrideModelPrice(ctx, &dto.OverrideModelPriceRequest{
				ModelUUID: model.UUID.String(),
				Actor:     "tester",
				PlanID:    plan.ID,
				Price:     utils.ToPtr(222000.0),
				Reason:    "fleet agreement pricing",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, resp)

			stored, err := repository.NewModelPriceRepository(testDB.DB).ByPair(ctx, model.ID, plan.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.Override)
			assert.InDelta(t, 222000, *stored.Override, 0.01)
			assert.InDelta(t, 222000, stored.EffectivePrice(), 0.01)
		})

		t.Run("ClearOverride", func(t *testing.T) {
			_, err := flow.OverrideModelPrice(ctx, &dto.OverrideModelPriceRequest{
				ModelUUID: model.UUID.String(),
				Actor:     "tester",
				PlanID:    plan.ID,
				Reason:    "agreement expired",
				Clear:     true,
			}, metadata)
			require.NoError(t, err)

			stored, err := repository.NewModelPriceRepository(testDB.DB).ByPair(ctx, model.ID, plan.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.Override)
		})

		t.Run("ClearWithoutOverrideRejected", func(t *testing.T) {
			_, err := flow.OverrideModelPrice(ctx, &dto.OverrideModelPriceRequest{
				ModelUUID: model.UUID.String(),
				Actor:     "tester",
				PlanID:    plan.ID,
				Reason:    "nothing to clear",
				Clear:     true,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoOverrideToClear(err))
		})

		return nil
	})
	require.NoError(t, err)
}
