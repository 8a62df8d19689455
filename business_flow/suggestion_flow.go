package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"github.com/xuri/excelize/v2"
)

// SuggestionFlow scans the whole priced catalog and rental grid and
// produces the prioritized anomaly list
type SuggestionFlow interface {
	ListSuggestions(ctx context.Context, req *dto.ListSuggestionsRequest) (*dto.ListSuggestionsResponse, error)
	ExportSuggestions(ctx context.Context, req *dto.ListSuggestionsRequest) (string, []byte, error)
}

// SuggestionFlowImpl implements the suggestion business flow
type SuggestionFlowImpl struct {
	partRepo          repository.PartRepository
	priceListRepo     repository.PriceListRepository
	priceListItemRepo repository.PriceListItemRepository
	vehicleModelRepo  repository.VehicleModelRepository
	rentalPlanRepo    repository.RentalPlanRepository
	modelPriceRepo    repository.ModelPriceRepository
	rates             services.ExchangeRateService
	pricingCfg        config.PricingConfig
}

// NewSuggestionFlow creates a new suggestion flow instance
func NewSuggestionFlow(
	partRepo repository.PartRepository,
	priceListRepo repository.PriceListRepository,
	priceListItemRepo repository.PriceListItemRepository,
	vehicleModelRepo repository.VehicleModelRepository,
	rentalPlanRepo repository.RentalPlanRepository,
	modelPriceRepo repository.ModelPriceRepository,
	rates services.ExchangeRateService,
	pricingCfg config.PricingConfig,
) SuggestionFlow {
	return &SuggestionFlowImpl{
		partRepo:          partRepo,
		priceListRepo:     priceListRepo,
		priceListItemRepo: priceListItemRepo,
		vehicleModelRepo:  vehicleModelRepo,
		rentalPlanRepo:    rentalPlanRepo,
		modelPriceRepo:    modelPriceRepo,
		rates:             rates,
		pricingCfg:        pricingCfg,
	}
}

// ListSuggestions builds the full suggestion list, optionally filtered
// by severity or maximum tier
func (s *SuggestionFlowImpl) ListSuggestions(ctx context.Context, req *dto.ListSuggestionsRequest) (*dto.ListSuggestionsResponse, error) {
	suggestions, err := s.buildSuggestions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SuggestionDTO, 0, len(suggestions))
	for _, sg := range suggestions {
		if req.Severity != nil && string(sg.Severity) != *req.Severity {
			continue
		}
		if req.MaxTier != nil && sg.Tier > *req.MaxTier {
			continue
		}
		out = append(out, ToSuggestionDTO(sg))
	}

	return &dto.ListSuggestionsResponse{
		Message:     "Suggestions generated successfully",
		GeneratedAt: utils.UTCNowRFC3339(),
		Suggestions: out,
	}, nil
}

// ExportSuggestions renders the suggestion list as an XLSX workbook
func (s *SuggestionFlowImpl) ExportSuggestions(ctx context.Context, req *dto.ListSuggestionsRequest) (string, []byte, error) {
	resp, err := s.ListSuggestions(ctx, req)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Suggestions"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"tier", "severity", "code", "message", "part", "model", "plan", "category", "margin", "target_margin"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, sg := range resp.Suggestions {
		record := []string{
			strconv.Itoa(sg.Tier),
			sg.Severity,
			sg.Code,
			sg.Message,
			sg.PartRef,
			sg.ModelName,
			sg.PlanName,
			sg.Category,
			fmt.Sprintf("%.4f", sg.Margin),
			fmt.Sprintf("%.4f", sg.TargetMargin),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("pricing_suggestions_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// buildSuggestions collects the engine inputs: every active part with
// its current retail price, and the full model × plan grid including
// pairs that were never computed.
func (s *SuggestionFlowImpl) buildSuggestions(ctx context.Context) ([]pricing.Suggestion, error) {
	parts, err := s.partRepo.ByFilter(ctx, models.PartFilter{Active: utils.ToPtr(true)}, "sku ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PART_LOOKUP_FAILED", "Failed to load parts", err)
	}

	prices := map[uint]float64{}
	if list, err := s.priceListRepo.ByCode(ctx, s.pricingCfg.DefaultPriceListCode); err == nil && list != nil {
		open, err := s.priceListItemRepo.OpenEntriesByList(ctx, list.ID)
		if err != nil {
			return nil, NewBusinessError("PRICE_LOOKUP_FAILED", "Failed to load current prices", err)
		}
		for _, entry := range open {
			if entry.MinQuantity == 0 {
				prices[entry.PartID] = entry.Price
			}
		}
	}

	points := make([]pricing.PricePoint, 0, len(parts))
	for _, p := range parts {
		points = append(points, pricing.PricePoint{
			PartRef:  p.SKU,
			Category: p.Category,
			Price:    prices[p.ID],
			Cost:     p.AverageCostARS,
		})
	}

	grid, err := s.modelPlanGrid(ctx)
	if err != nil {
		return nil, err
	}

	var rate float64
	var rateAt *time.Time
	if latest, err := s.rates.Latest(ctx); err == nil && latest != nil {
		rate = latest.Rate
		rateAt = &latest.CreatedAt
	}

	return pricing.BuildSuggestions(points, grid, s.pricingCfg.Engine(rate, rateAt)), nil
}

// modelPlanGrid walks active models × active plans so pairs without a
// stored price still show up as pending.
func (s *SuggestionFlowImpl) modelPlanGrid(ctx context.Context) ([]pricing.ModelPlanPrice, error) {
	activeModels, err := s.vehicleModelRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("MODEL_LOOKUP_FAILED", "Failed to load vehicle models", err)
	}
	plans, err := s.rentalPlanRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("PLAN_LOOKUP_FAILED", "Failed to load rental plans", err)
	}

	stored, err := s.modelPriceRepo.ListWithRelations(ctx)
	if err != nil {
		return nil, NewBusinessError("MODEL_PRICE_LOOKUP_FAILED", "Failed to load stored model prices", err)
	}
	type pair struct{ modelID, planID uint }
	byPair := make(map[pair]*models.ModelPrice, len(stored))
	for _, mp := range stored {
		byPair[pair{mp.VehicleModelID, mp.RentalPlanID}] = mp
	}

	grid := make([]pricing.ModelPlanPrice, 0, len(activeModels)*len(plans))
	for _, m := range activeModels {
		for _, p := range plans {
			entry := pricing.ModelPlanPrice{
				ModelName:    m.Name,
				PlanName:     p.Name,
				TargetMargin: p.TargetMargin,
			}
			if mp, ok := byPair[pair{m.ID, p.ID}]; ok {
				entry.Resolved = mp.IsResolved()
				entry.ComputedPrice = mp.ComputedPrice
				entry.Override = mp.Override
				entry.Margin = mp.Margin
				entry.TargetMargin = mp.TargetMargin
			}
			grid = append(grid, entry)
		}
	}

	return grid, nil
}
