// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	testingutil "github.com/motofleet/backoffice/testing"
	"github.com/motofleet/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPart(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreatePart", func(t *testing.T) {
			part, err := fixtures.CreateTestPart("brakes", 12.50)
			require.NoError(t, err)
			assert.NotZero(t, part.ID)
			assert.NotEqual(t, uuid.Nil, part.UUID)
			assert.Equal(t, "brakes", part.Category)
			assert.True(t, part.Active)
			assert.False(t, part.CreatedAt.IsZero())
		})

		t.Run("HasCostBasis", func(t *testing.T) {
			part, err := fixtures.CreateTestPart("filters", 4.20)
			require.NoError(t, err)
			assert.True(t, part.HasCostBasis())

			fresh := &models.Part{SKU: "TST-FRESH-00001", Name: "No stock yet", Category: "filters"}
			require.NoError(t, testDB.DB.Create(fresh).Error)
			assert.False(t, fresh.HasCostBasis())
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "parts", models.Part{}.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPriceListItem(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		list, err := fixtures.CreateTestPriceList("retail", 0)
		require.NoError(t, err)
		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)

		t.Run("OpenEntryDefaults", func(t *testing.T) {
			item, err := fixtures.CreateTestPrice(list.ID, part.ID, 25000)
			require.NoError(t, err)
			assert.NotZero(t, item.ID)
			assert.True(t, item.IsOpen())
			assert.False(t, item.ValidFrom.IsZero())
			assert.Zero(t, item.MinQuantity)
		})

		t.Run("ClosedEntry", func(t *testing.T) {
			closedAt := utils.UTCNow()
			item := &models.PriceListItem{
				PriceListID: list.ID,
				PartID:      part.ID,
				MinQuantity: 10,
				Price:       22000,
				ValidTo:     &closedAt,
			}
			require.NoError(t, testDB.DB.Create(item).Error)
			assert.False(t, item.IsOpen())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestShipment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("StatusValues", func(t *testing.T) {
			assert.True(t, models.ShipmentStatusDraft.Valid())
			assert.True(t, models.ShipmentStatusConfirmed.Valid())
			assert.True(t, models.ShipmentStatusCancelled.Valid())
			assert.False(t, models.ShipmentStatus("shipped").Valid())
		})

		t.Run("CreateDraftShipment", func(t *testing.T) {
			partA, err := fixtures.CreateTestPart("brakes", 10)
			require.NoError(t, err)
			partB, err := fixtures.CreateTestPart("filters", 5)
			require.NoError(t, err)

			shipment, err := fixtures.CreateTestShipment([]*models.Part{partA, partB})
			require.NoError(t, err)
			assert.NotZero(t, shipment.ID)
			assert.NotEqual(t, uuid.Nil, shipment.UUID)
			assert.Equal(t, models.ShipmentStatusDraft, shipment.Status)
			assert.Len(t, shipment.Items, 2)
			assert.InDelta(t, 10*10+5*20, shipment.FOBTotal, 0.01)
		})

		t.Run("ChargesRoundTrip", func(t *testing.T) {
			part, err := fixtures.CreateTestPart("electrics", 8)
			require.NoError(t, err)
			shipment, err := fixtures.CreateTestShipment([]*models.Part{part})
			require.NoError(t, err)

			var reloaded models.Shipment
			require.NoError(t, testDB.DB.First(&reloaded, shipment.ID).Error)
			assert.InDelta(t, 0.18, reloaded.Charges.DutyRate, 0.0001)
			assert.InDelta(t, 0.21, reloaded.Charges.VATRate, 0.0001)
			assert.InDelta(t, 200, reloaded.Charges.CustomsClearance, 0.01)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestModelPrice(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		model, err := fixtures.CreateTestVehicleModel("Test 150cc", 2500000)
		require.NoError(t, err)
		plan, err := fixtures.CreateTestRentalPlan("Test 12m", "standard", 12, 0.10)
		require.NoError(t, err)

		t.Run("IsResolved", func(t *testing.T) {
			price := &models.ModelPrice{
				VehicleModelID: model.ID,
				RentalPlanID:   plan.ID,
			}
			assert.False(t, price.IsResolved())

			price.ComputedPrice = 185000
			assert.True(t, price.IsResolved())

			override := 190000.0
			price.ComputedPrice = 0
			price.Override = &override
			assert.True(t, price.IsResolved())
		})

		t.Run("EffectivePriceFavorsOverride", func(t *testing.T) {
			override := 200000.0
			price := &models.ModelPrice{
				VehicleModelID: model.ID,
				RentalPlanID:   plan.ID,
				ComputedPrice:  185000,
				Override:       &override,
			}
			assert.InDelta(t, 200000, price.EffectivePrice(), 0.01)

			price.Override = nil
			assert.InDelta(t, 185000, price.EffectivePrice(), 0.01)
		})

		t.Run("PairUniqueness", func(t *testing.T) {
			first := &models.ModelPrice{VehicleModelID: model.ID, RentalPlanID: plan.ID, ComputedPrice: 100}
			require.NoError(t, testDB.DB.Create(first).Error)

			dup := &models.ModelPrice{VehicleModelID: model.ID, RentalPlanID: plan.ID, ComputedPrice: 200}
			assert.Error(t, testDB.DB.Create(dup).Error)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExchangeRate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		t.Run("SourceDefaultsToManual", func(t *testing.T) {
			row := &models.ExchangeRate{Rate: 1050.25, SetBy: "test"}
			require.NoError(t, testDB.DB.Create(row).Error)

			var reloaded models.ExchangeRate
			require.NoError(t, testDB.DB.First(&reloaded, row.ID).Error)
			assert.Equal(t, "manual", reloaded.Source)
			assert.False(t, reloaded.CreatedAt.IsZero())
		})

		t.Run("AppendOnlyOrdering", func(t *testing.T) {
			older := &models.ExchangeRate{Rate: 1000, SetBy: "test", CreatedAt: utils.UTCNow().Add(-time.Hour)}
			require.NoError(t, testDB.DB.Create(older).Error)
			newer := &models.ExchangeRate{Rate: 1100, SetBy: "test"}
			require.NoError(t, testDB.DB.Create(newer).Error)

			var latest models.ExchangeRate
			require.NoError(t, testDB.DB.Order("created_at DESC, id DESC").First(&latest).Error)
			assert.InDelta(t, 1100, latest.Rate, 0.0001)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRuleModels(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("MarkupRuleToEngine", func(t *testing.T) {
			rule, err := fixtures.CreateTestMarkupRule("brakes", 2.2, 10)
			require.NoError(t, err)

			engine := rule.ToEngine()
			assert.Equal(t, rule.ID, engine.ID)
			assert.InDelta(t, 2.2, engine.Multiplier, 0.0001)
			require.NotNil(t, engine.Category)
			assert.Equal(t, "brakes", *engine.Category)
		})

		t.Run("DiscountRuleToEngine", func(t *testing.T) {
			rule, err := fixtures.CreateTestDiscountRule(10, 0.05)
			require.NoError(t, err)

			engine := rule.ToEngine()
			assert.Equal(t, rule.ID, engine.ID)
			assert.Equal(t, 10, engine.MinQuantity)
			assert.InDelta(t, 0.05, engine.Value, 0.0001)
		})

		t.Run("TableNames", func(t *testing.T) {
			assert.Equal(t, "markup_rules", models.MarkupRule{}.TableName())
			assert.Equal(t, "discount_rules", models.DiscountRule{}.TableName())
		})

		return nil
	})
	require.NoError(t, err)
}
