package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/app/services"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// AdminPricingFlow manages the rule tables and the reference exchange
// rate that the calculators read
type AdminPricingFlow interface {
	ListMarkupRules(ctx context.Context) (*dto.ListMarkupRulesResponse, error)
	SaveMarkupRule(ctx context.Context, req *dto.SaveMarkupRuleRequest, metadata *ClientMetadata) (*dto.SaveRuleResponse, error)
	ListDiscountRules(ctx context.Context) (*dto.ListDiscountRulesResponse, error)
	SaveDiscountRule(ctx context.Context, req *dto.SaveDiscountRuleRequest, metadata *ClientMetadata) (*dto.SaveRuleResponse, error)
	GetExchangeRate(ctx context.Context) (*dto.GetExchangeRateResponse, error)
	SetExchangeRate(ctx context.Context, req *dto.SetExchangeRateRequest, metadata *ClientMetadata) (*dto.SetExchangeRateResponse, error)
}

// AdminPricingFlowImpl implements the admin pricing business flow
type AdminPricingFlowImpl struct {
	markupRuleRepo   repository.MarkupRuleRepository
	discountRuleRepo repository.DiscountRuleRepository
	rateRepo         repository.ExchangeRateRepository
	auditRepo        repository.AuditLogRepository
	rates            services.ExchangeRateService
	pricingCfg       config.PricingConfig
	db               *gorm.DB
}

// NewAdminPricingFlow creates a new admin pricing flow instance
func NewAdminPricingFlow(
	markupRuleRepo repository.MarkupRuleRepository,
	discountRuleRepo repository.DiscountRuleRepository,
	rateRepo repository.ExchangeRateRepository,
	auditRepo repository.AuditLogRepository,
	rates services.ExchangeRateService,
	pricingCfg config.PricingConfig,
	db *gorm.DB,
) AdminPricingFlow {
	return &AdminPricingFlowImpl{
		markupRuleRepo:   markupRuleRepo,
		discountRuleRepo: discountRuleRepo,
		rateRepo:         rateRepo,
		auditRepo:        auditRepo,
		rates:            rates,
		pricingCfg:       pricingCfg,
		db:               db,
	}
}

// ListMarkupRules returns every markup rule, active and inactive,
// ordered the way the resolver evaluates them
func (s *AdminPricingFlowImpl) ListMarkupRules(ctx context.Context) (*dto.ListMarkupRulesResponse, error) {
	rules, err := s.markupRuleRepo.ByFilter(ctx, models.MarkupRuleFilter{}, "priority DESC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load markup rules", err)
	}

	out := make([]dto.MarkupRuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, toMarkupRuleDTO(r))
	}

	return &dto.ListMarkupRulesResponse{
		Message: "Markup rules retrieved successfully",
		Rules:   out,
	}, nil
}

// SaveMarkupRule creates a rule or updates an existing one by ID
func (s *AdminPricingFlowImpl) SaveMarkupRule(ctx context.Context, req *dto.SaveMarkupRuleRequest, metadata *ClientMetadata) (*dto.SaveRuleResponse, error) {
	if err := validateMarkupRule(req); err != nil {
		_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionMarkupRuleChanged,
			"Markup rule rejected", false, utils.ToPtr(err.Error()), metadata)
		return nil, err
	}

	rule := &models.MarkupRule{
		Name:       strings.TrimSpace(req.Name),
		Category:   req.Category,
		BandUpper:  req.BandUpper,
		OEM:        req.OEM,
		Multiplier: req.Multiplier,
		Rounding:   req.Rounding,
		Priority:   req.Priority,
		Active:     true,
	}
	if req.BandLower > 0 {
		rule.BandLower = utils.ToPtr(req.BandLower)
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if req.ID != nil {
		existing, err := s.markupRuleRepo.ByID(ctx, *req.ID)
		if err != nil {
			return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load markup rule", err)
		}
		if existing == nil {
			return nil, NewBusinessError("MARKUP_RULE_NOT_FOUND", "Markup rule not found", ErrMarkupRuleNotFound)
		}
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	}

	if err := s.markupRuleRepo.Save(ctx, rule); err != nil {
		return nil, NewBusinessError("RULE_SAVE_FAILED", "Failed to save markup rule", err)
	}

	_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionMarkupRuleChanged,
		fmt.Sprintf("Markup rule %q saved (multiplier %.4f)", rule.Name, rule.Multiplier), true, nil, metadata)

	return &dto.SaveRuleResponse{
		Message: "Markup rule saved successfully",
		ID:      rule.ID,
	}, nil
}

// ListDiscountRules returns every discount rule ordered by priority
func (s *AdminPricingFlowImpl) ListDiscountRules(ctx context.Context) (*dto.ListDiscountRulesResponse, error) {
	rules, err := s.discountRuleRepo.ByFilter(ctx, models.DiscountRuleFilter{}, "priority DESC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load discount rules", err)
	}

	out := make([]dto.DiscountRuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, toDiscountRuleDTO(r))
	}

	return &dto.ListDiscountRulesResponse{
		Message: "Discount rules retrieved successfully",
		Rules:   out,
	}, nil
}

// SaveDiscountRule creates a rule or updates an existing one by ID
func (s *AdminPricingFlowImpl) SaveDiscountRule(ctx context.Context, req *dto.SaveDiscountRuleRequest, metadata *ClientMetadata) (*dto.SaveRuleResponse, error) {
	if err := validateDiscountRule(req); err != nil {
		_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionDiscountRuleChange,
			"Discount rule rejected", false, utils.ToPtr(err.Error()), metadata)
		return nil, err
	}

	rule := &models.DiscountRule{
		Name:        strings.TrimSpace(req.Name),
		Condition:   req.Condition,
		PlanTiers:   req.PlanTiers,
		Kind:        req.Kind,
		Value:       req.Value,
		Accumulable: req.Accumulable,
		Priority:    req.Priority,
		Active:      true,
	}
	if req.MinTenureMonths != nil {
		rule.MinTenureMonths = *req.MinTenureMonths
	}
	if req.MinQuantity != nil {
		rule.MinQuantity = *req.MinQuantity
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if req.ID != nil {
		existing, err := s.discountRuleRepo.ByID(ctx, *req.ID)
		if err != nil {
			return nil, NewBusinessError("RULE_LOOKUP_FAILED", "Failed to load discount rule", err)
		}
		if existing == nil {
			return nil, NewBusinessError("DISCOUNT_RULE_NOT_FOUND", "Discount rule not found", ErrDiscountRuleNotFound)
		}
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	}

	if err := s.discountRuleRepo.Save(ctx, rule); err != nil {
		return nil, NewBusinessError("RULE_SAVE_FAILED", "Failed to save discount rule", err)
	}

	_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionDiscountRuleChange,
		fmt.Sprintf("Discount rule %q saved (%s %.4f)", rule.Name, rule.Kind, rule.Value), true, nil, metadata)

	return &dto.SaveRuleResponse{
		Message: "Discount rule saved successfully",
		ID:      rule.ID,
	}, nil
}

// GetExchangeRate returns the rate in effect together with its
// staleness against the configured freshness window
func (s *AdminPricingFlowImpl) GetExchangeRate(ctx context.Context) (*dto.GetExchangeRateResponse, error) {
	latest, err := s.rates.Latest(ctx)
	if err != nil {
		return nil, NewBusinessError("RATE_LOOKUP_FAILED", "Failed to load exchange rate", err)
	}
	if latest == nil {
		return &dto.GetExchangeRateResponse{
			Message: "No exchange rate has been set",
		}, nil
	}

	return &dto.GetExchangeRateResponse{
		Message: "Exchange rate retrieved successfully",
		Rate: &dto.ExchangeRateDTO{
			Rate:      latest.Rate,
			Source:    latest.Source,
			SetBy:     latest.SetBy,
			FetchedAt: latest.CreatedAt.UTC().Format(time.RFC3339),
			Stale:     utils.UTCNow().Sub(latest.CreatedAt) > s.pricingCfg.RateStaleAfter,
		},
	}, nil
}

// SetExchangeRate appends a new reference rate row. Prior rows are
// kept so historical costings stay explainable.
func (s *AdminPricingFlowImpl) SetExchangeRate(ctx context.Context, req *dto.SetExchangeRateRequest, metadata *ClientMetadata) (*dto.SetExchangeRateResponse, error) {
	if req.Rate <= 0 {
		_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionExchangeRateSet,
			"Exchange rate rejected", false, utils.ToPtr(ErrExchangeRateNotPositive.Error()), metadata)
		return nil, NewBusinessError("EXCHANGE_RATE_NOT_POSITIVE", "Exchange rate must be positive", ErrExchangeRateNotPositive)
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = "system"
	}
	row := &models.ExchangeRate{
		Rate:      req.Rate,
		Source:    strings.TrimSpace(req.Source),
		SetBy:     actor,
		CreatedAt: utils.UTCNow(),
	}
	if err := s.rateRepo.Save(ctx, row); err != nil {
		return nil, NewBusinessError("RATE_SAVE_FAILED", "Failed to save exchange rate", err)
	}

	// cache falls back to the database on the next read if this fails
	_ = s.rates.Invalidate(ctx)

	_ = saveAuditLog(ctx, s.auditRepo, req.Actor, models.AuditActionExchangeRateSet,
		fmt.Sprintf("Exchange rate set to %.4f (source %s)", row.Rate, row.Source), true, nil, metadata)

	return &dto.SetExchangeRateResponse{
		Message:   "Exchange rate saved successfully",
		Rate:      row.Rate,
		FetchedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func validateMarkupRule(req *dto.SaveMarkupRuleRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewBusinessError("RULE_NAME_REQUIRED", "Rule name is required", ErrRuleNameRequired)
	}
	if req.Multiplier <= 0 {
		return NewBusinessError("MULTIPLIER_NOT_POSITIVE", "Multiplier must be positive", ErrMultiplierNotPositive)
	}
	if req.BandUpper != nil && *req.BandUpper <= req.BandLower {
		return NewBusinessError("BAND_BOUNDS_INVERTED", "Band lower bound must be below upper bound", ErrBandBoundsInverted)
	}
	if !pricing.ValidRoundingPolicy(pricing.RoundingPolicy(req.Rounding)) {
		return NewBusinessError("INVALID_ROUNDING_POLICY", "Invalid rounding policy", ErrInvalidRoundingPolicy)
	}
	return nil
}

func validateDiscountRule(req *dto.SaveDiscountRuleRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewBusinessError("RULE_NAME_REQUIRED", "Rule name is required", ErrRuleNameRequired)
	}
	switch pricing.DiscountKind(req.Kind) {
	case pricing.DiscountPercentage, pricing.DiscountFixed:
	default:
		return NewBusinessError("INVALID_DISCOUNT_KIND", "Invalid discount kind", ErrInvalidDiscountKind)
	}
	if req.Value < 0 {
		return NewBusinessError("DISCOUNT_VALUE_NEGATIVE", "Discount value cannot be negative", ErrDiscountValueNegative)
	}
	return nil
}

func toMarkupRuleDTO(r *models.MarkupRule) dto.MarkupRuleDTO {
	out := dto.MarkupRuleDTO{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		BandUpper:  r.BandUpper,
		OEM:        r.OEM,
		Multiplier: r.Multiplier,
		Rounding:   r.Rounding,
		Priority:   r.Priority,
		Active:     r.Active,
	}
	if r.BandLower != nil {
		out.BandLower = *r.BandLower
	}
	return out
}

func toDiscountRuleDTO(r *models.DiscountRule) dto.DiscountRuleDTO {
	out := dto.DiscountRuleDTO{
		ID:          r.ID,
		Name:        r.Name,
		Condition:   r.Condition,
		PlanTiers:   r.PlanTiers,
		Kind:        r.Kind,
		Value:       r.Value,
		Accumulable: r.Accumulable,
		Priority:    r.Priority,
		Active:      r.Active,
	}
	if r.MinTenureMonths > 0 {
		out.MinTenureMonths = utils.ToPtr(r.MinTenureMonths)
	}
	if r.MinQuantity > 0 {
		out.MinQuantity = utils.ToPtr(r.MinQuantity)
	}
	return out
}
