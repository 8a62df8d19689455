package businessflow

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
)

// PriceResolutionFlow resolves the final channel price for one part
// and customer context: list price (or markup candidate when the part
// was never priced), then discount stacking, then the list discount.
type PriceResolutionFlow interface {
	ResolvePrice(ctx context.Context, req *dto.ResolvePriceRequest) (*dto.ResolvePriceResponse, error)
}

// PriceResolutionFlowImpl implements the price resolution business flow
type PriceResolutionFlowImpl struct {
	partRepo          repository.PartRepository
	priceListRepo     repository.PriceListRepository
	priceListItemRepo repository.PriceListItemRepository
	markupRuleRepo    repository.MarkupRuleRepository
	discountRuleRepo  repository.DiscountRuleRepository
	rates             services.ExchangeRateService
	pricingCfg        config.PricingConfig
}

// NewPriceResolutionFlow creates a new price resolution flow instance
func NewPriceResolutionFlow(
	partRepo repository.PartRepository,
	priceListRepo repository.PriceListRepository,
	priceListItemRepo repository.PriceListItemRepository,
	markupRuleRepo repository.MarkupRuleRepository,
	discountRuleRepo repository.DiscountRuleRepository,
	rates services.ExchangeRateService,
	pricingCfg config.PricingConfig,
) PriceResolutionFlow {
	return &PriceResolutionFlowImpl{
		partRepo:          partRepo,
		priceListRepo:     priceListRepo,
		priceListItemRepo: priceListItemRepo,
		markupRuleRepo:    markupRuleRepo,
		discountRuleRepo:  discountRuleRepo,
		rates:             rates,
		pricingCfg:        pricingCfg,
	}
}

// ResolvePrice computes the price the given customer pays for the part
// on the given list. Read-only; nothing is persisted.
func (s *PriceResolutionFlowImpl) ResolvePrice(ctx context.Context, req *dto.ResolvePriceRequest) (*dto.ResolvePriceResponse, error) {
	part, err := s.partRepo.ByID(ctx, req.PartID)
	if err != nil {
		return nil, NewBusinessError("PART_LOOKUP_FAILED", "Failed to lookup part", err)
	}
	if part == nil {
		return nil, NewBusinessError("PART_NOT_FOUND", "Part not found", ErrPartNotFound)
	}
	if !part.Active {
		return nil, NewBusinessError("PART_INACTIVE", "Part is inactive", ErrPartInactive)
	}

	list, err := loadPriceListByCode(ctx, s.priceListRepo, req.PriceListCode)
	if err != nil {
		return nil, err
	}

	basePrice, ruleName, err := s.basePrice(ctx, list, part, req.Quantity)
	if err != nil {
		return nil, err
	}

	rules, err := s.discountRuleRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load discount rules", err)
	}
	engineRules := make([]pricing.DiscountRule, 0, len(rules))
	for _, r := range rules {
		engineRules = append(engineRules, r.ToEngine())
	}

	customer := pricing.CustomerContext{Quantity: req.Quantity}
	if req.PlanTier != nil {
		customer.PlanTier = *req.PlanTier
	}
	if req.TenureMonths != nil {
		customer.TenureMonths = *req.TenureMonths
	}

	stacked, err := pricing.StackDiscounts(basePrice, engineRules, customer, list.ListDiscount)
	if err != nil {
		return nil, NewBusinessError("DISCOUNT_STACKING_FAILED", "Failed to stack discounts", err)
	}

	applied := make([]dto.AppliedRuleDTO, 0, len(stacked.Applied))
	for _, a := range stacked.Applied {
		applied = append(applied, dto.AppliedRuleDTO{
			RuleID:      a.RuleID,
			Name:        a.RuleName,
			Kind:        string(a.Kind),
			Value:       a.Value,
			PriceBefore: a.PriceBefore,
			PriceAfter:  a.PriceAfter,
		})
	}

	return &dto.ResolvePriceResponse{
		Message:       "Price resolved successfully",
		PartID:        part.ID,
		SKU:           part.SKU,
		PriceList:     list.Code,
		BasePrice:     stacked.BasePrice,
		FinalPrice:    stacked.FinalPrice,
		TotalDiscount: stacked.CumulativeDiscount,
		ListDiscount:  list.ListDiscount,
		RuleName:      ruleName,
		AppliedRules:  applied,
		Margin:        pricing.Margin(stacked.FinalPrice, part.AverageCostARS),
	}, nil
}

// basePrice picks the best open quantity break for the requested
// quantity, falling back to a markup candidate when the part was never
// priced on the list.
func (s *PriceResolutionFlowImpl) basePrice(ctx context.Context, list *models.PriceList, part *models.Part, quantity int) (float64, string, error) {
	entries, err := s.priceListItemRepo.OpenEntriesForPart(ctx, list.ID, part.ID)
	if err != nil {
		return 0, "", NewBusinessError("PRICE_LOOKUP_FAILED", "Failed to lookup current prices", err)
	}

	var best *models.PriceListItem
	for _, e := range entries {
		if e.MinQuantity > quantity {
			continue
		}
		if best == nil || e.MinQuantity > best.MinQuantity {
			best = e
		}
	}
	if best != nil {
		return best.Price, "", nil
	}

	if part.AverageCostARS <= 0 {
		return 0, "", NewBusinessError("PRICE_NOT_RESOLVABLE", "Part has neither a list price nor a cost basis", ErrPriceNotResolvable)
	}

	rules, err := s.markupRuleRepo.ListActive(ctx)
	if err != nil {
		return 0, "", NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load markup rules", err)
	}
	engineRules := make([]pricing.MarkupRule, 0, len(rules))
	for _, r := range rules {
		engineRules = append(engineRules, r.ToEngine())
	}

	var rate float64
	if latest, err := s.rates.Latest(ctx); err == nil && latest != nil {
		rate = latest.Rate
	}

	resolved, err := pricing.ResolveMarkup(pricing.ItemAttributes{
		Category: part.Category,
		Cost:     part.AverageCostARS,
		OEM:      part.OEM,
	}, engineRules, s.pricingCfg.Engine(rate, nil))
	if err != nil {
		return 0, "", NewBusinessError("MARKUP_RESOLUTION_FAILED", fmt.Sprintf("Failed to resolve markup for part %s", part.SKU), err)
	}

	return resolved.Price, resolved.RuleName, nil
}
