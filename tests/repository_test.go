// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/repository"
	testingutil "github.com/motofleet/backoffice/testing"
	"github.com/motofleet/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPartRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			part, err := fixtures.CreateTestPart("brakes", 12)
			require.NoError(t, err)
			assert.NotZero(t, part.ID)
		})

		t.Run("ByID", func(t *testing.T) {
			original, err := fixtures.CreateTestPart("brakes", 12)
			require.NoError(t, err)

			part, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			require.NotNil(t, part)
			assert.Equal(t, original.SKU, part.SKU)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			part, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, part)
		})

		t.Run("BySKU", func(t *testing.T) {
			original, err := fixtures.CreateTestPart("filters", 4)
			require.NoError(t, err)

			part, err := repo.BySKU(ctx, original.SKU)
			require.NoError(t, err)
			require.NotNil(t, part)
			assert.Equal(t, original.ID, part.ID)
		})

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestPart("filters", 4)
			require.NoError(t, err)

			part, err := repo.ByUUID(ctx, original.UUID)
			require.NoError(t, err)
			require.NotNil(t, part)
			assert.Equal(t, original.ID, part.ID)

			missing, err := repo.ByUUID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ByFilterCategory", func(t *testing.T) {
			_, err := fixtures.CreateTestPart("transmission", 30)
			require.NoError(t, err)

			parts, err := repo.ByFilter(ctx, models.PartFilter{Category: utils.ToPtr("transmission")}, "", 0, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, parts)
			for _, p := range parts {
				assert.Equal(t, "transmission", p.Category)
			}
		})

		t.Run("UpdateCostBasis", func(t *testing.T) {
			part, err := fixtures.CreateTestPart("brakes", 10)
			require.NoError(t, err)

			err = repo.UpdateCostBasis(ctx, part.ID, 11.5, 12075)
			require.NoError(t, err)

			reloaded, err := repo.ByID(ctx, part.ID)
			require.NoError(t, err)
			assert.InDelta(t, 11.5, reloaded.AverageCostUSD, 0.0001)
			assert.InDelta(t, 12075, reloaded.AverageCostARS, 0.01)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPriceListItemRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPriceListItemRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		list, err := fixtures.CreateTestPriceList("retail", 0)
		require.NoError(t, err)
		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)

		t.Run("OpenEntry", func(t *testing.T) {
			created, err := fixtures.CreateTestPrice(list.ID, part.ID, 25000)
			require.NoError(t, err)

			entry, err := repo.OpenEntry(ctx, list.ID, part.ID, 0)
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, created.ID, entry.ID)
			assert.InDelta(t, 25000, entry.Price, 0.01)
		})

		t.Run("CloseOpenEntryFormsChain", func(t *testing.T) {
			closedAt := utils.UTCNow()
			require.NoError(t, repo.CloseOpenEntry(ctx, list.ID, part.ID, 0, closedAt))

			entry, err := repo.OpenEntry(ctx, list.ID, part.ID, 0)
			require.NoError(t, err)
			assert.Nil(t, entry)

			_, err = fixtures.CreateTestPrice(list.ID, part.ID, 27000)
			require.NoError(t, err)

			entry, err = repo.OpenEntry(ctx, list.ID, part.ID, 0)
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.InDelta(t, 27000, entry.Price, 0.01)
		})

		t.Run("OpenEntriesByList", func(t *testing.T) {
			other, err := fixtures.CreateTestPart("filters", 5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPrice(list.ID, other.ID, 8000)
			require.NoError(t, err)

			entries, err := repo.OpenEntriesByList(ctx, list.ID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(entries), 2)
			for _, e := range entries {
				assert.Nil(t, e.ValidTo)
			}
		})

		t.Run("PriceAt", func(t *testing.T) {
			current, err := repo.PriceAt(ctx, list.ID, part.ID, utils.UTCNow())
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.InDelta(t, 27000, current.Price, 0.01)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestShipmentItemRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewShipmentItemRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		partA, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		partB, err := fixtures.CreateTestPart("filters", 5)
		require.NoError(t, err)
		shipment, err := fixtures.CreateTestShipment([]*models.Part{partA, partB})
		require.NoError(t, err)

		t.Run("ListByShipment", func(t *testing.T) {
			items, err := repo.ListByShipment(ctx, shipment.ID)
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})

		t.Run("DeleteByShipment", func(t *testing.T) {
			require.NoError(t, repo.DeleteByShipment(ctx, shipment.ID))

			items, err := repo.ListByShipment(ctx, shipment.ID)
			require.NoError(t, err)
			assert.Empty(t, items)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExchangeRateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewExchangeRateRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("LatestEmpty", func(t *testing.T) {
			rate, err := repo.Latest(ctx)
			assert.NoError(t, err)
			assert.Nil(t, rate)
		})

		t.Run("LatestReturnsNewestRow", func(t *testing.T) {
			_, err := fixtures.CreateTestExchangeRate(1000)
			require.NoError(t, err)
			_, err = fixtures.CreateTestExchangeRate(1100)
			require.NoError(t, err)

			rate, err := repo.Latest(ctx)
			require.NoError(t, err)
			require.NotNil(t, rate)
			assert.InDelta(t, 1100, rate.Rate, 0.0001)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPriceChangeBatchRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPriceChangeBatchRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		list, err := fixtures.CreateTestPriceList("retail", 0)
		require.NoError(t, err)

		newBatch := func(t *testing.T) *models.PriceChangeBatch {
			batch := &models.PriceChangeBatch{
				PriceListID: list.ID,
				Status:      models.PriceChangeBatchStatusDraft,
				CreatedBy:   "test",
			}
			require.NoError(t, repo.Save(ctx, batch))
			return batch
		}

		t.Run("ByUUID", func(t *testing.T) {
			batch := newBatch(t)

			found, err := repo.ByUUID(ctx, batch.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, batch.ID, found.ID)
		})

		t.Run("MarkApplied", func(t *testing.T) {
			batch := newBatch(t)

			ok, err := repo.MarkApplied(ctx, batch.ID, "test", utils.UTCNow())
			require.NoError(t, err)
			assert.True(t, ok)

			reloaded, err := repo.ByID(ctx, batch.ID)
			require.NoError(t, err)
			assert.Equal(t, models.PriceChangeBatchStatusApplied, reloaded.Status)
			require.NotNil(t, reloaded.AppliedBy)
			assert.Equal(t, "test", *reloaded.AppliedBy)

			// Second apply must not transition again
			ok, err = repo.MarkApplied(ctx, batch.ID, "test", utils.UTCNow())
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("MarkDiscarded", func(t *testing.T) {
			batch := newBatch(t)

			ok, err := repo.MarkDiscarded(ctx, batch.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			reloaded, err := repo.ByID(ctx, batch.ID)
			require.NoError(t, err)
			assert.Equal(t, models.PriceChangeBatchStatusDiscarded, reloaded.Status)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestModelPriceRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewModelPriceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		model, err := fixtures.CreateTestVehicleModel("Repo 150cc", 2500000)
		require.NoError(t, err)
		plan, err := fixtures.CreateTestRentalPlan("Repo 12m", "standard", 12, 0.10)
		require.NoError(t, err)

		t.Run("UpsertComputed", func(t *testing.T) {
			now := utils.UTCNow()
			price := &models.ModelPrice{
				VehicleModelID:   model.ID,
				RentalPlanID:     plan.ID,
				ComputedPrice:    185000,
				TotalMonthlyCost: 120000,
				Margin:           0.35,
				TargetMargin:     0.35,
				ComputedAt:       &now,
			}
			require.NoError(t, repo.UpsertComputed(ctx, price))

			stored, err := repo.ByPair(ctx, model.ID, plan.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.InDelta(t, 185000, stored.ComputedPrice, 0.01)

			// Recompute updates the same pair instead of inserting
			price.ComputedPrice = 190000
			require.NoError(t, repo.UpsertComputed(ctx, price))

			stored, err = repo.ByPair(ctx, model.ID, plan.ID)
			require.NoError(t, err)
			assert.InDelta(t, 190000, stored.ComputedPrice, 0.01)
		})

		t.Run("SetAndClearOverride", func(t *testing.T) {
			stored, err := repo.ByPair(ctx, model.ID, plan.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)

			reason := "negotiated fleet deal"
			require.NoError(t, repo.SetOverride(ctx, stored.ID, 200000, "tester", &reason))

			reloaded, err := repo.ByID(ctx, stored.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded.Override)
			assert.InDelta(t, 200000, *reloaded.Override, 0.01)
			require.NotNil(t, reloaded.OverrideBy)
			assert.Equal(t, "tester", *reloaded.OverrideBy)

			require.NoError(t, repo.ClearOverride(ctx, stored.ID))

			reloaded, err = repo.ByID(ctx, stored.ID)
			require.NoError(t, err)
			assert.Nil(t, reloaded.Override)
			assert.Nil(t, reloaded.OverrideBy)
		})

		return nil
	})
	require.NoError(t, err)
}
