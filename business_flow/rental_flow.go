package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// RentalFlow computes and stores plan quotes for vehicle models and
// manages manual price overrides
type RentalFlow interface {
	ComputeModelPrices(ctx context.Context, req *dto.ComputeModelPricesRequest, metadata *ClientMetadata) (*dto.ComputeModelPricesResponse, error)
	SimulateRental(ctx context.Context, req *dto.SimulateRentalRequest) (*dto.SimulateRentalResponse, error)
	OverrideModelPrice(ctx context.Context, req *dto.OverrideModelPriceRequest, metadata *ClientMetadata) (*dto.OverrideModelPriceResponse, error)
}

// RentalFlowImpl implements the rental pricing business flow
type RentalFlowImpl struct {
	vehicleModelRepo repository.VehicleModelRepository
	rentalPlanRepo   repository.RentalPlanRepository
	modelPriceRepo   repository.ModelPriceRepository
	auditRepo        repository.AuditLogRepository
	pricingCfg       config.PricingConfig
	db               *gorm.DB
}

// NewRentalFlow creates a new rental flow instance
func NewRentalFlow(
	vehicleModelRepo repository.VehicleModelRepository,
	rentalPlanRepo repository.RentalPlanRepository,
	modelPriceRepo repository.ModelPriceRepository,
	auditRepo repository.AuditLogRepository,
	pricingCfg config.PricingConfig,
	db *gorm.DB,
) RentalFlow {
	return &RentalFlowImpl{
		vehicleModelRepo: vehicleModelRepo,
		rentalPlanRepo:   rentalPlanRepo,
		modelPriceRepo:   modelPriceRepo,
		auditRepo:        auditRepo,
		pricingCfg:       pricingCfg,
		db:               db,
	}
}

// ComputeModelPrices recomputes the quote of every active plan for a
// model and stores the result. Manual overrides survive recomputation;
// only the computed figures move.
func (s *RentalFlowImpl) ComputeModelPrices(ctx context.Context, req *dto.ComputeModelPricesRequest, metadata *ClientMetadata) (*dto.ComputeModelPricesResponse, error) {
	model, err := s.loadModel(ctx, req.ModelUUID)
	if err != nil {
		return nil, err
	}

	plans, err := s.rentalPlanRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("PLAN_LOOKUP_FAILED", "Failed to load rental plans", err)
	}
	if len(plans) == 0 {
		return nil, NewBusinessError("NO_ACTIVE_PLANS", "No active rental plans to compute", ErrNoActivePlans)
	}

	existing, err := s.modelPriceRepo.ByFilter(ctx, models.ModelPriceFilter{VehicleModelID: &model.ID}, "rental_plan_id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("MODEL_PRICE_LOOKUP_FAILED", "Failed to load stored model prices", err)
	}
	stored := make(map[uint]*models.ModelPrice, len(existing))
	for _, mp := range existing {
		stored[mp.RentalPlanID] = mp
	}

	now := utils.UTCNow()
	quotes := make([]dto.PlanQuoteDTO, 0, len(plans))

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		for _, plan := range plans {
			target := s.targetMargin(req.TargetMargin, plan)

			quote, err := pricing.ComputePlanQuote(model.LandedCost, plan.ToEngine(), model.OperatingCosts(), target)
			if err != nil {
				return fmt.Errorf("failed to compute quote for plan %s: %w", plan.Name, err)
			}

			price := &models.ModelPrice{
				VehicleModelID:   model.ID,
				RentalPlanID:     plan.ID,
				ComputedPrice:    quote.DiscountedPrice,
				TotalMonthlyCost: quote.Cost.TotalMonthlyCost,
				Margin:           quote.Margin,
				TargetMargin:     target,
				ComputedAt:       &now,
			}
			if err := s.modelPriceRepo.UpsertComputed(txCtx, price); err != nil {
				return fmt.Errorf("failed to store quote for plan %s: %w", plan.Name, err)
			}

			d := ToPlanQuoteDTO(plan.ID, *quote)
			if prev := stored[plan.ID]; prev != nil && prev.Override != nil {
				d.Override = prev.Override
				d.OverrideReason = prev.OverrideReason
			}
			quotes = append(quotes, d)
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("MODEL_PRICE_COMPUTE_FAILED", "Failed to recompute model prices", err)
	}

	return &dto.ComputeModelPricesResponse{
		Message:    "Model prices computed successfully",
		ModelUUID:  model.UUID.String(),
		ModelName:  model.Name,
		LandedCost: model.LandedCost,
		ComputedAt: now.Format(time.RFC3339),
		Quotes:     quotes,
	}, nil
}

// SimulateRental computes one quote from explicit inputs without
// touching any stored model or plan
func (s *RentalFlowImpl) SimulateRental(ctx context.Context, req *dto.SimulateRentalRequest) (*dto.SimulateRentalResponse, error) {
	plan := pricing.RentalPlanInput{
		Name:                "simulation",
		DurationMonths:      req.DurationMonths,
		RentToOwn:           req.RentToOwn,
		Discount:            req.Discount,
		BiweeklySurcharge:   req.BiweeklySurcharge,
		WeeklySurcharge:     req.WeeklySurcharge,
		WalletSurcharge:     req.WalletSurcharge,
		CashSurcharge:       req.CashSurcharge,
		DepositMonths:       float64(req.DepositMonths),
		DepositOnDiscounted: req.DepositOnDiscounted,
	}
	op := pricing.OperatingCostParams{
		InsuranceMonthly:   req.InsuranceMonthly,
		AnnualTaxes:        req.AnnualTaxes,
		AnnualRegistration: req.AnnualRegistration,
		AnnualInspection:   req.AnnualInspection,
		TelematicsMonthly:  req.TelematicsMonthly,
		MaintenanceMonthly: req.MaintenanceMonthly,
		ReserveRate:        req.ReserveRate,
		StorageMonthly:     req.StorageMonthly,
		AdminMonthly:       req.AdminMonthly,
	}

	target := s.pricingCfg.TargetMargin
	if req.TargetMargin != nil {
		target = *req.TargetMargin
	}

	quote, err := pricing.ComputePlanQuote(req.LandedCost, plan, op, target)
	if err != nil {
		return nil, NewBusinessError("RENTAL_SIMULATION_FAILED", "Failed to simulate rental quote", err)
	}

	return &dto.SimulateRentalResponse{
		Message: "Rental quote simulated successfully",
		Quote:   ToPlanQuoteDTO(0, *quote),
	}, nil
}

// OverrideModelPrice sets or clears the manual price of a stored
// (model, plan) pair. The computed figure is kept; the drift between
// the two is returned so large gaps are visible immediately.
func (s *RentalFlowImpl) OverrideModelPrice(ctx context.Context, req *dto.OverrideModelPriceRequest, metadata *ClientMetadata) (*dto.OverrideModelPriceResponse, error) {
	model, err := s.loadModel(ctx, req.ModelUUID)
	if err != nil {
		return nil, err
	}

	mp, err := s.modelPriceRepo.ByPair(ctx, model.ID, req.PlanID)
	if err != nil {
		return nil, NewBusinessError("MODEL_PRICE_LOOKUP_FAILED", "Failed to lookup model price", err)
	}
	if mp == nil {
		return nil, NewBusinessError("MODEL_PRICE_NOT_FOUND", "No stored price for this model and plan", ErrModelPriceNotFound)
	}

	actor := req.Actor
	if actor == "" {
		actor = "system"
	}

	if req.Clear {
		if mp.Override == nil {
			return nil, NewBusinessError("NO_OVERRIDE_TO_CLEAR", "The pair has no override to clear", ErrNoOverrideToClear)
		}
		if err := s.modelPriceRepo.ClearOverride(ctx, mp.ID); err != nil {
			errMsg := err.Error()
			desc := fmt.Sprintf("Clearing override on %s plan %d failed", model.Name, req.PlanID)
			_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionOverrideCleared, desc, false, &errMsg, metadata)
			return nil, NewBusinessError("OVERRIDE_CLEAR_FAILED", "Failed to clear override", err)
		}

		desc := fmt.Sprintf("Override cleared on %s plan %d: %s", model.Name, req.PlanID, req.Reason)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionOverrideCleared, desc, true, nil, metadata)

		return &dto.OverrideModelPriceResponse{
			Message:       "Override cleared successfully",
			ModelUUID:     model.UUID.String(),
			PlanID:        req.PlanID,
			ComputedPrice: mp.ComputedPrice,
		}, nil
	}

	if req.Price == nil || *req.Price <= 0 {
		return nil, NewBusinessError("OVERRIDE_NOT_POSITIVE", "Override price must be greater than zero", ErrOverrideNotPositive)
	}
	if req.Reason == "" {
		return nil, NewBusinessError("REASON_REQUIRED", "An override requires a reason", ErrReasonRequired)
	}

	if err := s.modelPriceRepo.SetOverride(ctx, mp.ID, *req.Price, actor, &req.Reason); err != nil {
		errMsg := err.Error()
		desc := fmt.Sprintf("Override on %s plan %d failed", model.Name, req.PlanID)
		_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionPriceOverridden, desc, false, &errMsg, metadata)
		return nil, NewBusinessError("OVERRIDE_FAILED", "Failed to set override", err)
	}

	var drift *float64
	if mp.ComputedPrice > 0 {
		d := (*req.Price - mp.ComputedPrice) / mp.ComputedPrice
		drift = &d
	}

	desc := fmt.Sprintf("Override of %.2f set on %s plan %d (computed %.2f): %s", *req.Price, model.Name, req.PlanID, mp.ComputedPrice, req.Reason)
	_ = saveAuditLog(ctx, s.auditRepo, actor, models.AuditActionPriceOverridden, desc, true, nil, metadata)

	return &dto.OverrideModelPriceResponse{
		Message:       "Override set successfully",
		ModelUUID:     model.UUID.String(),
		PlanID:        req.PlanID,
		ComputedPrice: mp.ComputedPrice,
		Override:      req.Price,
		DriftPct:      drift,
	}, nil
}

func (s *RentalFlowImpl) targetMargin(override *float64, plan *models.RentalPlan) float64 {
	if override != nil {
		return *override
	}
	if plan.TargetMargin > 0 {
		return plan.TargetMargin
	}
	return s.pricingCfg.TargetMargin
}

func (s *RentalFlowImpl) loadModel(ctx context.Context, rawUUID string) (*models.VehicleModel, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, NewBusinessError("MODEL_UUID_REQUIRED", "A valid vehicle model UUID is required", ErrModelUUIDRequired)
	}

	model, err := s.vehicleModelRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("MODEL_LOOKUP_FAILED", "Failed to lookup vehicle model", err)
	}
	if model == nil {
		return nil, NewBusinessError("MODEL_NOT_FOUND", "Vehicle model not found", ErrVehicleModelNotFound)
	}
	return model, nil
}
