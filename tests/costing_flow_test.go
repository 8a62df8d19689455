// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	businessflow "github.com/motofleet/backoffice/business_flow"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/repository"
	testingutil "github.com/motofleet/backoffice/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		DefaultMultiplier:    2.0,
		CategoryMultipliers:  map[string]float64{},
		MinMargin:            0.10,
		TargetMargin:         0.25,
		ExcessMargin:         0.50,
		OverrideDrift:        0.20,
		RateStaleAfter:       168 * time.Hour,
		DefaultPriceListCode: "retail",
		DefaultDutyRate:      0.18,
		StatsTaxRate:         0.03,
		VATRate:              0.21,
	}
}

func newCostingFlow(testDB *testingutil.TestDB) businessflow.CostingFlow {
	db := testDB.DB
	rateRepo := repository.NewExchangeRateRepository(db)
	return businessflow.NewCostingFlow(
		repository.NewShipmentRepository(db),
		repository.NewShipmentCostAllocationRepository(db),
		repository.NewCostLedgerRepository(db),
		repository.NewPartRepository(db),
		repository.NewPriceListRepository(db),
		repository.NewPriceListItemRepository(db),
		repository.NewAuditLogRepository(db),
		services.NewExchangeRateService(rateRepo, nil, nil),
		testPricingConfig(),
		db,
	)
}

func TestCostingFlowSimulate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCostingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		partA, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		partB, err := fixtures.CreateTestPart("filters", 5)
		require.NoError(t, err)
		shipment, err := fixtures.CreateTestShipment([]*models.Part{partA, partB})
		require.NoError(t, err)
		_, err = fixtures.CreateTestExchangeRate(1000)
		require.NoError(t, err)

		t.Run("SimulateByValue", func(t *testing.T) {
			resp, err := flow.SimulateShipmentCosting(ctx, &dto.SimulateCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, "by_value", resp.Method)
			assert.InDelta(t, 1000, resp.ExchangeRate, 0.0001)
			assert.Len(t, resp.Lines, 2)

			// Allocation factors cover the whole shipment
			var totalFactor float64
			for _, line := range resp.Lines {
				totalFactor += line.Factor
			}
			assert.InDelta(t, 1.0, totalFactor, 0.0001)

			// CIF = FOB + freight + insurance
			assert.InDelta(t, shipment.FOBTotal+shipment.Freight, resp.CIFTotal, 0.01)
		})

		t.Run("SimulateWithRateOverride", func(t *testing.T) {
			override := 1200.0
			resp, err := flow.SimulateShipmentCosting(ctx, &dto.SimulateCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
				ExchangeRate: &override,
			}, metadata)
			require.NoError(t, err)
			assert.InDelta(t, 1200, resp.ExchangeRate, 0.0001)
		})

		t.Run("SimulateDoesNotMutate", func(t *testing.T) {
			_, err := flow.SimulateShipmentCosting(ctx, &dto.SimulateCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
			}, metadata)
			require.NoError(t, err)

			reloaded, err := repository.NewPartRepository(testDB.DB).ByID(ctx, partA.ID)
			require.NoError(t, err)
			assert.InDelta(t, 10, reloaded.AverageCostUSD, 0.0001)

			ledger, err := repository.NewCostLedgerRepository(testDB.DB).ListByPart(ctx, partA.ID, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, ledger)
		})

		t.Run("ShipmentNotFound", func(t *testing.T) {
			_, err := flow.SimulateShipmentCosting(ctx, &dto.SimulateCostingRequest{
				ShipmentUUID: "11111111-2222-3333-4444-555555555555",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsShipmentNotFound(err))
		})

		t.Run("ExportBreakdown", func(t *testing.T) {
			filename, data, err := flow.ExportShipmentCosting(ctx, &dto.SimulateCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
			}, metadata)
			require.NoError(t, err)
			assert.Contains(t, filename, shipment.Reference)
			assert.Contains(t, filename, ".xlsx")
			assert.NotEmpty(t, data)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCostingFlowConfirm(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCostingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		shipment, err := fixtures.CreateTestShipment([]*models.Part{part})
		require.NoError(t, err)
		_, err = fixtures.CreateTestExchangeRate(1000)
		require.NoError(t, err)

		t.Run("ConfirmFlagRequired", func(t *testing.T) {
			_, err := flow.ConfirmShipmentCosting(ctx, &dto.ConfirmCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
				Actor:        "tester",
				Confirm:      false,
				Reason:       "quarterly import",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsConfirmationRequired(err))
		})

		t.Run("ConfirmUpdatesCostBasis", func(t *testing.T) {
			resp, err := flow.ConfirmShipmentCosting(ctx, &dto.ConfirmCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
				Actor:        "tester",
				Confirm:      true,
				Reason:       "quarterly import",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, 1, resp.PartsUpdated)
			assert.Equal(t, 1, resp.LedgerEntries)
			require.Len(t, resp.Changes, 1)

			// Landed cost per unit exceeds FOB because of freight, duties and fees
			change := resp.Changes[0]
			assert.Equal(t, part.ID, change.PartID)
			assert.Greater(t, change.IncomingCostUSD, 10.0)

			reloaded, err := repository.NewPartRepository(testDB.DB).ByID(ctx, part.ID)
			require.NoError(t, err)
			assert.Greater(t, reloaded.AverageCostUSD, 10.0)
			assert.Greater(t, reloaded.StockQuantity, 10.0)

			shipmentRepo := repository.NewShipmentRepository(testDB.DB)
			confirmed, err := shipmentRepo.ByUUID(ctx, shipment.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.ShipmentStatusConfirmed, confirmed.Status)
			require.NotNil(t, confirmed.ConfirmedBy)
			assert.Equal(t, "tester", *confirmed.ConfirmedBy)

			ledger, err := repository.NewCostLedgerRepository(testDB.DB).ListByPart(ctx, part.ID, 0, 0)
			require.NoError(t, err)
			assert.Len(t, ledger, 1)

			allocations, err := repository.NewShipmentCostAllocationRepository(testDB.DB).ListByShipment(ctx, confirmed.ID)
			require.NoError(t, err)
			assert.Len(t, allocations, 1)
		})

		t.Run("SecondConfirmRejected", func(t *testing.T) {
			_, err := flow.ConfirmShipmentCosting(ctx, &dto.ConfirmCostingRequest{
				ShipmentUUID: shipment.UUID.String(),
				Actor:        "tester",
				Confirm:      true,
				Reason:       "double submit",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsShipmentAlreadyConfirmed(err))
		})

		t.Run("ConfirmWritesAuditTrail", func(t *testing.T) {
			audits, err := repository.NewAuditLogRepository(testDB.DB).ListByAction(ctx, models.AuditActionShipmentConfirmed, 0, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, audits)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCostingFlowWithoutRate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCostingFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		part, err := fixtures.CreateTestPart("brakes", 10)
		require.NoError(t, err)
		shipment, err := fixtures.CreateTestShipment([]*models.Part{part})
		require.NoError(t, err)

		_, err = flow.ConfirmShipmentCosting(ctx, &dto.ConfirmCostingRequest{
			ShipmentUUID: shipment.UUID.String(),
			Actor:        "tester",
			Confirm:      true,
			Reason:       "no rate on file",
		}, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsExchangeRateNotSet(err))

		return nil
	})
	require.NoError(t, err)
}
