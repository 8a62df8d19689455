package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CostingFlow handles shipment cost allocation previews and the
// transactional confirmation that feeds the cost ledger
type CostingFlow interface {
	SimulateShipmentCosting(ctx context.Context, req *dto.SimulateCostingRequest, metadata *ClientMetadata) (*dto.SimulateCostingResponse, error)
	ConfirmShipmentCosting(ctx context.Context, req *dto.ConfirmCostingRequest, metadata *ClientMetadata) (*dto.ConfirmCostingResponse, error)
	ExportShipmentCosting(ctx context.Context, req *dto.SimulateCostingRequest, metadata *ClientMetadata) (string, []byte, error)
}

// CostingFlowImpl implements the costing business flow
type CostingFlowImpl struct {
	shipmentRepo      repository.ShipmentRepository
	allocationRepo    repository.ShipmentCostAllocationRepository
	ledgerRepo        repository.CostLedgerRepository
	partRepo          repository.PartRepository
	priceListRepo     repository.PriceListRepository
	priceListItemRepo repository.PriceListItemRepository
	auditRepo         repository.AuditLogRepository
	rates             services.ExchangeRateService
	pricingCfg        config.PricingConfig
	db                *gorm.DB
}

// NewCostingFlow creates a new costing flow instance
func NewCostingFlow(
	shipmentRepo repository.ShipmentRepository,
	allocationRepo repository.ShipmentCostAllocationRepository,
	ledgerRepo repository.CostLedgerRepository,
	partRepo repository.PartRepository,
	priceListRepo repository.PriceListRepository,
	priceListItemRepo repository.PriceListItemRepository,
	auditRepo repository.AuditLogRepository,
	rates services.ExchangeRateService,
	pricingCfg config.PricingConfig,
	db *gorm.DB,
) CostingFlow {
	return &CostingFlowImpl{
		shipmentRepo:      shipmentRepo,
		allocationRepo:    allocationRepo,
		ledgerRepo:        ledgerRepo,
		partRepo:          partRepo,
		priceListRepo:     priceListRepo,
		priceListItemRepo: priceListItemRepo,
		auditRepo:         auditRepo,
		rates:             rates,
		pricingCfg:        pricingCfg,
		db:                db,
	}
}

// SimulateShipmentCosting runs the allocation for a shipment without
// writing anything. Drafts may be re-simulated freely; confirmed
// shipments replay their frozen inputs.
func (s *CostingFlowImpl) SimulateShipmentCosting(ctx context.Context, req *dto.SimulateCostingRequest, metadata *ClientMetadata) (*dto.SimulateCostingResponse, error) {
	shipment, err := s.loadShipment(ctx, req.ShipmentUUID)
	if err != nil {
		return nil, err
	}

	method := pricing.AllocationMethod(shipment.AllocationMethod)
	if req.Method != nil {
		method = pricing.AllocationMethod(*req.Method)
	}
	if !pricing.ValidAllocationMethod(method) {
		return nil, NewBusinessError("INVALID_ALLOCATION_METHOD", "Unknown allocation method", ErrInvalidAllocationMethod)
	}

	rate, rateAt, err := s.resolveRate(ctx, shipment, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	input, err := s.buildCostingInput(ctx, shipment, method, rate)
	if err != nil {
		return nil, err
	}

	costing, err := pricing.AllocateLandedCosts(input, s.pricingCfg.Engine(rate, rateAt))
	if err != nil {
		return nil, NewBusinessError("COSTING_FAILED", "Failed to allocate landed costs", err)
	}

	return s.buildSimulationResponse(shipment, costing, rate), nil
}

// ConfirmShipmentCosting freezes the allocation and merges every item
// into its part's weighted-average cost basis in one transaction. A
// shipment is confirmed at most once; the status guard makes a
// concurrent double confirm lose cleanly.
func (s *CostingFlowImpl) ConfirmShipmentCosting(ctx context.Context, req *dto.ConfirmCostingRequest, metadata *ClientMetadata) (*dto.ConfirmCostingResponse, error) {
	if !req.Confirm {
		return nil, NewBusinessError("CONFIRMATION_REQUIRED", "Costing confirmation requires the confirm flag", ErrConfirmationRequired)
	}

	shipment, err := s.loadShipment(ctx, req.ShipmentUUID)
	if err != nil {
		return nil, err
	}

	if shipment.Status == models.ShipmentStatusConfirmed {
		return nil, NewBusinessError("SHIPMENT_ALREADY_CONFIRMED", "Shipment costing was already confirmed", ErrShipmentAlreadyConfirmed)
	}
	if !shipment.IsEditable() {
		return nil, NewBusinessError("SHIPMENT_NOT_EDITABLE", "Shipment is not in a confirmable state", ErrShipmentNotEditable)
	}

	method := pricing.AllocationMethod(shipment.AllocationMethod)
	if req.Method != nil {
		method = pricing.AllocationMethod(*req.Method)
	}
	if !pricing.ValidAllocationMethod(method) {
		return nil, NewBusinessError("INVALID_ALLOCATION_METHOD", "Unknown allocation method", ErrInvalidAllocationMethod)
	}

	rate, rateAt, err := s.resolveRate(ctx, shipment, nil)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		// Cost bases are kept in both currencies, so confirming without a
		// reference rate would write a zero local cost.
		return nil, NewBusinessError("EXCHANGE_RATE_NOT_SET", "No reference exchange rate available for confirmation", ErrExchangeRateNotSet)
	}

	input, err := s.buildCostingInput(ctx, shipment, method, rate)
	if err != nil {
		return nil, err
	}

	costing, err := pricing.AllocateLandedCosts(input, s.pricingCfg.Engine(rate, rateAt))
	if err != nil {
		return nil, NewBusinessError("COSTING_FAILED", "Failed to allocate landed costs", err)
	}

	now := utils.UTCNow()
	actor := req.Actor
	if actor == "" {
		actor = "system"
	}

	var changes []dto.CostBasisChangeDTO

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		ok, err := s.shipmentRepo.UpdateStatus(txCtx, shipment.ID, models.ShipmentStatusDraft, models.ShipmentStatusConfirmed, &actor, &now)
		if err != nil {
			return fmt.Errorf("failed to confirm shipment: %w", err)
		}
		if !ok {
			return ErrShipmentAlreadyConfirmed
		}

		allocations := make([]*models.ShipmentCostAllocation, 0, len(costing.Items))
		for i, it := range costing.Items {
			line := shipment.Items[i]
			allocations = append(allocations, &models.ShipmentCostAllocation{
				ShipmentID:     shipment.ID,
				ShipmentItemID: line.ID,
				PartID:         line.PartID,
				Factor:         it.Factor,
				CIF:            it.CIF,
				Duty:           it.Duty.Total,
				StatsTax:       it.StatsTax.Total,
				FixedFees:      it.FixedFees.Total,
				Logistics:      it.Logistics.Total,
				Recoverable:    it.Recoverable.Total(),
				LandedTotal:    it.NonRecoverableTotal,
				LandedPerUnit:  it.LandedUnitCost,
				CreatedAt:      now,
			})
		}
		if err := s.allocationRepo.SaveBatch(txCtx, allocations); err != nil {
			return fmt.Errorf("failed to freeze cost allocations: %w", err)
		}

		changes, err = s.mergeCostBases(txCtx, shipment, costing, rate, now)
		return err
	})

	if err != nil {
		errMsg := err.Error()
		desc := fmt.Sprintf("Shipment %s costing confirmation failed", shipment.Reference)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionShipmentConfirmed, desc, false, &errMsg, metadata)

		if IsShipmentAlreadyConfirmed(err) {
			return nil, NewBusinessError("SHIPMENT_ALREADY_CONFIRMED", "Shipment costing was already confirmed", err)
		}
		return nil, NewBusinessError("COSTING_CONFIRM_FAILED", "Failed to confirm shipment costing", err)
	}

	desc := fmt.Sprintf("Shipment %s costing confirmed: %s, %d parts updated", shipment.Reference, req.Reason, len(changes))
	_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionShipmentConfirmed, desc, true, nil, metadata)

	return &dto.ConfirmCostingResponse{
		Message:       "Shipment costing confirmed successfully",
		ShipmentUUID:  shipment.UUID.String(),
		ConfirmedAt:   now.Format(time.RFC3339),
		PartsUpdated:  len(changes),
		LedgerEntries: len(changes),
		Changes:       changes,
	}, nil
}

// ExportShipmentCosting renders the allocation breakdown of a shipment
// as an XLSX workbook. Confirmed shipments export their frozen inputs.
func (s *CostingFlowImpl) ExportShipmentCosting(ctx context.Context, req *dto.SimulateCostingRequest, metadata *ClientMetadata) (string, []byte, error) {
	result, err := s.SimulateShipmentCosting(ctx, req, metadata)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Costing"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"sku", "category", "quantity", "factor", "fob", "freight", "insurance", "cif", "duty", "stats_tax", "fixed_fees", "logistics", "recoverable", "landed_total", "landed_per_unit", "margin_status"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, line := range result.Lines {
		record := []string{
			line.SKU,
			line.Category,
			fmt.Sprintf("%.2f", line.Quantity),
			fmt.Sprintf("%.6f", line.Factor),
			fmt.Sprintf("%.2f", line.FOBSubtotal),
			fmt.Sprintf("%.2f", line.Freight),
			fmt.Sprintf("%.2f", line.Insurance),
			fmt.Sprintf("%.2f", line.CIF),
			fmt.Sprintf("%.2f", line.Duty),
			fmt.Sprintf("%.2f", line.StatsTax),
			fmt.Sprintf("%.2f", line.FixedFees),
			fmt.Sprintf("%.2f", line.Logistics),
			fmt.Sprintf("%.2f", line.Recoverable),
			fmt.Sprintf("%.2f", line.LandedTotal),
			fmt.Sprintf("%.4f", line.LandedPerUnit),
			line.MarginStatus,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	summaryRow := len(result.Lines) + 3
	summary := [][]string{
		{"reference", result.Reference},
		{"method", result.Method},
		{"exchange_rate", fmt.Sprintf("%.4f", result.ExchangeRate)},
		{"fob_total", fmt.Sprintf("%.2f", result.FOBTotal)},
		{"cif_total", fmt.Sprintf("%.2f", result.CIFTotal)},
		{"non_recoverable", fmt.Sprintf("%.2f", result.NonRecoverable)},
		{"recoverable", fmt.Sprintf("%.2f", result.RecoverableTotal)},
		{"disbursement", fmt.Sprintf("%.2f", result.Disbursement)},
	}
	for i := range summary {
		cellRef, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		_ = xl.SetSheetRow(sheet, cellRef, &summary[i])
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("costing_%s_%s.xlsx", result.Reference, utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// mergeCostBases folds each confirmed line into its part's weighted
// average, tracking a running basis so several lines of the same part
// blend sequentially. Stock quantity is never written here; receiving
// owns it.
func (s *CostingFlowImpl) mergeCostBases(ctx context.Context, shipment *models.Shipment, costing *pricing.ShipmentCosting, rate float64, at time.Time) ([]dto.CostBasisChangeDTO, error) {
	type basis struct {
		stock   float64
		costUSD float64
		costARS float64
		sku     string
	}
	bases := make(map[uint]*basis)
	for _, line := range shipment.Items {
		if _, seen := bases[line.PartID]; seen {
			continue
		}
		if line.Part == nil {
			return nil, fmt.Errorf("shipment item %d has no loaded part", line.ID)
		}
		bases[line.PartID] = &basis{
			stock:   line.Part.StockQuantity,
			costUSD: line.Part.AverageCostUSD,
			costARS: line.Part.AverageCostARS,
			sku:     line.Part.SKU,
		}
	}

	changes := make([]dto.CostBasisChangeDTO, 0, len(costing.Items))
	for i, it := range costing.Items {
		line := shipment.Items[i]
		b := bases[line.PartID]

		incomingUSD := it.LandedUnitCost
		incomingARS := it.LandedUnitCost * rate

		mergedUSD, err := pricing.MergeCostBasis(b.stock, b.costUSD, line.Quantity, incomingUSD)
		if err != nil {
			return nil, fmt.Errorf("failed to merge cost basis for part %d: %w", line.PartID, err)
		}
		mergedARS, err := pricing.MergeCostBasis(b.stock, b.costARS, line.Quantity, incomingARS)
		if err != nil {
			return nil, fmt.Errorf("failed to merge cost basis for part %d: %w", line.PartID, err)
		}

		entry := &models.CostLedgerEntry{
			PartID:          line.PartID,
			ShipmentID:      &shipment.ID,
			Source:          models.CostLedgerSourceShipment,
			QuantityBefore:  mergedUSD.QuantityBefore,
			QuantityAdded:   line.Quantity,
			QuantityAfter:   mergedUSD.QuantityAfter,
			CostBeforeUSD:   mergedUSD.CostBefore,
			IncomingCostUSD: incomingUSD,
			CostAfterUSD:    mergedUSD.CostAfter,
			CostBeforeARS:   mergedARS.CostBefore,
			IncomingCostARS: incomingARS,
			CostAfterARS:    mergedARS.CostAfter,
			CreatedAt:       at,
		}
		if err := s.ledgerRepo.Save(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to save cost ledger entry: %w", err)
		}

		if err := s.partRepo.UpdateCostBasis(ctx, line.PartID, mergedUSD.CostAfter, mergedARS.CostAfter); err != nil {
			return nil, fmt.Errorf("failed to update part cost basis: %w", err)
		}

		changes = append(changes, dto.CostBasisChangeDTO{
			PartID:          line.PartID,
			SKU:             b.sku,
			QuantityAdded:   line.Quantity,
			CostBeforeUSD:   mergedUSD.CostBefore,
			IncomingCostUSD: incomingUSD,
			CostAfterUSD:    mergedUSD.CostAfter,
			CostBeforeARS:   mergedARS.CostBefore,
			IncomingCostARS: incomingARS,
			CostAfterARS:    mergedARS.CostAfter,
		})

		// Advance the running basis; the blended quantity only feeds the
		// next merge of the same part within this shipment.
		b.stock = mergedUSD.QuantityAfter
		b.costUSD = mergedUSD.CostAfter
		b.costARS = mergedARS.CostAfter
	}

	return changes, nil
}

func (s *CostingFlowImpl) loadShipment(ctx context.Context, rawUUID string) (*models.Shipment, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, NewBusinessError("SHIPMENT_UUID_REQUIRED", "A valid shipment UUID is required", ErrShipmentUUIDRequired)
	}

	shipment, err := s.shipmentRepo.ByUUIDWithItems(ctx, id)
	if err != nil {
		return nil, NewBusinessError("SHIPMENT_LOOKUP_FAILED", "Failed to lookup shipment", err)
	}
	if shipment == nil {
		return nil, NewBusinessError("SHIPMENT_NOT_FOUND", "Shipment not found", ErrShipmentNotFound)
	}
	if len(shipment.Items) == 0 {
		return nil, NewBusinessError("SHIPMENT_EMPTY", "Shipment has no items", ErrShipmentEmpty)
	}

	return shipment, nil
}

// resolveRate picks the exchange rate for a costing run: an explicit
// override first, then the rate captured on the shipment, then the
// latest reference rate.
func (s *CostingFlowImpl) resolveRate(ctx context.Context, shipment *models.Shipment, override *float64) (float64, *time.Time, error) {
	if override != nil {
		if *override <= 0 {
			return 0, nil, NewBusinessError("EXCHANGE_RATE_NOT_POSITIVE", "Exchange rate must be greater than zero", ErrExchangeRateNotPositive)
		}
		return *override, utils.UTCNowPtr(), nil
	}

	if shipment.ExchangeRate > 0 {
		return shipment.ExchangeRate, &shipment.CreatedAt, nil
	}

	latest, err := s.rates.Latest(ctx)
	if err != nil {
		return 0, nil, NewBusinessError("EXCHANGE_RATE_LOOKUP_FAILED", "Failed to lookup reference exchange rate", err)
	}
	if latest == nil {
		return 0, nil, nil
	}
	return latest.Rate, &latest.CreatedAt, nil
}

func (s *CostingFlowImpl) buildCostingInput(ctx context.Context, shipment *models.Shipment, method pricing.AllocationMethod, rate float64) (pricing.CostingInput, error) {
	partIDs := make([]uint, 0, len(shipment.Items))
	for _, line := range shipment.Items {
		partIDs = append(partIDs, line.PartID)
	}

	// Current retail prices feed the per-item margin alert. A missing
	// default list just leaves every margin unknown.
	salePrices := map[uint]float64{}
	if list, err := s.priceListRepo.ByCode(ctx, s.pricingCfg.DefaultPriceListCode); err == nil && list != nil {
		entries, err := s.priceListItemRepo.OpenEntriesByParts(ctx, list.ID, partIDs)
		if err != nil {
			return pricing.CostingInput{}, NewBusinessError("PRICE_LOOKUP_FAILED", "Failed to lookup current prices", err)
		}
		for partID, entry := range entries {
			salePrices[partID] = entry.Price
		}
	}

	items := make([]pricing.ShipmentItemInput, 0, len(shipment.Items))
	for _, line := range shipment.Items {
		item := pricing.ShipmentItemInput{
			Quantity:    line.Quantity,
			FOBSubtotal: line.FOBSubtotal,
			Weight:      line.WeightKg,
			Volume:      line.VolumeM3,
			DutyRate:    line.DutyRateOverride,
			SalePrice:   salePrices[line.PartID],
		}
		if line.Part != nil {
			item.Reference = line.Part.SKU
			item.Category = line.Part.Category
			if item.Weight == 0 {
				item.Weight = line.Part.WeightKg * line.Quantity
			}
			if item.Volume == 0 {
				item.Volume = line.Part.VolumeM3 * line.Quantity
			}
		}
		items = append(items, item)
	}

	charges := shipment.Charges
	return pricing.CostingInput{
		Shipment: pricing.ShipmentInput{
			FOBTotal:  shipment.FOBTotal,
			Freight:   shipment.Freight,
			Insurance: shipment.Insurance,
			Items:     items,
		},
		Method: method,
		Rates: pricing.AdValoremRates{
			StatsTax:      charges.StatsTaxRate,
			VAT:           charges.VATRate,
			AdditionalVAT: charges.AdditionalVATRate,
			IncomeTax:     charges.IncomeTaxRate,
			GrossReceipts: charges.GrossReceiptsRate,
		},
		DefaultDutyRate:   charges.DutyRate,
		CategoryDutyRates: charges.CategoryDutyRates,
		FixedFees:         charges.FixedFees(),
		Logistics: pricing.LogisticsCosts{
			InlandTransport: charges.InlandFreight,
			Other:           charges.WarehouseHandling + charges.OtherLogistics,
		},
		ExchangeRate: rate,
	}, nil
}

func (s *CostingFlowImpl) buildSimulationResponse(shipment *models.Shipment, costing *pricing.ShipmentCosting, rate float64) *dto.SimulateCostingResponse {
	lines := make([]dto.AllocationLineDTO, 0, len(costing.Items))
	for i, it := range costing.Items {
		line := shipment.Items[i]
		lines = append(lines, dto.AllocationLineDTO{
			ShipmentItemID: line.ID,
			PartID:         line.PartID,
			SKU:            it.Reference,
			Category:       it.Category,
			Quantity:       it.Quantity,
			Factor:         it.Factor,
			FOBSubtotal:    it.FOB.Total,
			Freight:        it.Freight.Total,
			Insurance:      it.Insurance.Total,
			CIF:            it.CIF,
			Duty:           it.Duty.Total,
			StatsTax:       it.StatsTax.Total,
			FixedFees:      it.FixedFees.Total,
			Logistics:      it.Logistics.Total,
			Recoverable:    it.Recoverable.Total(),
			LandedTotal:    it.NonRecoverableTotal,
			LandedPerUnit:  it.LandedUnitCost,
			Disbursement:   it.DisbursementTotal,
			MarginStatus:   string(it.MarginStatus),
		})
	}

	categories := make([]dto.CategorySummaryDTO, 0, len(costing.Categories))
	for _, c := range costing.Categories {
		categories = append(categories, dto.CategorySummaryDTO{
			Category:    c.Category,
			Units:       c.Units,
			LandedTotal: c.NonRecoverableTotal,
		})
	}

	insurance := costing.InsuranceTotal

	return &dto.SimulateCostingResponse{
		Message:          "Shipment costing simulated successfully",
		ShipmentUUID:     shipment.UUID.String(),
		Reference:        shipment.Reference,
		Method:           string(costing.Method),
		ExchangeRate:     rate,
		FOBTotal:         shipment.FOBTotal,
		Freight:          shipment.Freight,
		Insurance:        insurance,
		CIFTotal:         costing.CIFTotal,
		NonRecoverable:   costing.NonRecoverableTotal,
		RecoverableTotal: costing.RecoverableTotal,
		Disbursement:     costing.DisbursementTotal,
		Lines:            lines,
		Categories:       categories,
	}
}
