package pricing

import "math"

// Non-rent-to-own plans depreciate 85% of the acquisition cost over a fixed
// 48-month schedule regardless of plan duration.
const (
	standardDepreciationShare  = 0.85
	standardDepreciationMonths = 48
)

// rentToOwnHorizonMonths is the fixed horizon of the effective-rate
// projection. The two-year annualization exponent matches it; neither follows
// the plan duration. Kept as observed behavior.
const rentToOwnHorizonMonths = 24

// RentalPlanInput describes a plan for quoting. Percentage fields are
// fractions (0.10 = 10%).
type RentalPlanInput struct {
	Name           string
	DurationMonths int
	RentToOwn      bool
	Discount       float64

	BiweeklySurcharge float64
	WeeklySurcharge   float64
	WalletSurcharge   float64
	CashSurcharge     float64

	DepositMonths       float64
	// DepositOnDiscounted picks the discounted price as the deposit base;
	// otherwise the pre-discount base price is used.
	DepositOnDiscounted bool
}

// OperatingCostParams are the fixed monthly operating costs shared by all
// plans of a model. Annual figures are prorated to the month; ReserveRate is
// a yearly fraction of the landed cost.
type OperatingCostParams struct {
	InsuranceMonthly   float64
	AnnualTaxes        float64
	AnnualRegistration float64
	AnnualInspection   float64
	TelematicsMonthly  float64
	MaintenanceMonthly float64
	ReserveRate        float64
	StorageMonthly     float64
	AdminMonthly       float64
}

// RentalCostBreakdown is the monthly cost buildup behind a quote.
type RentalCostBreakdown struct {
	MonthlyDepreciation float64
	Insurance           float64
	ProratedFees        float64
	Telematics          float64
	Maintenance         float64
	Reserve             float64
	Storage             float64
	Admin               float64
	OperatingTotal      float64
	TotalMonthlyCost    float64
}

// FrequencyPrices are the discounted prices per payment frequency.
type FrequencyPrices struct {
	Monthly  float64
	Biweekly float64
	Weekly   float64
}

// PaymentMethodPrices apply the method surcharge on the monthly price.
type PaymentMethodPrices struct {
	WireTransfer float64
	Wallet       float64
	Cash         float64
}

// RentToOwnProjection is the fixed-horizon ownership projection.
type RentToOwnProjection struct {
	TotalPaid          float64
	DifferenceVsCost   float64
	EffectiveAnnualPct float64
}

// PlanQuote is the full pricing result for one (model, plan) pair.
type PlanQuote struct {
	PlanName        string
	Cost            RentalCostBreakdown
	BasePrice       float64
	DiscountedPrice float64
	Frequencies     FrequencyPrices
	PaymentMethods  PaymentMethodPrices
	Deposit         float64
	Margin          float64
	MarginStatus    MarginStatus
	RentToOwn       *RentToOwnProjection
}

// ComputePlanQuote builds the quote for a vehicle model on a plan, all in
// local currency per month. landedCost is the model's landed acquisition
// cost; targetMargin defaults to 0.25 when zero or negative — in that case
// the base price falls back to cost × 1.25.
func ComputePlanQuote(landedCost float64, plan RentalPlanInput, op OperatingCostParams, targetMargin float64) (*PlanQuote, error) {
	if landedCost < 0 {
		return nil, newValidationError("landed_cost", ErrNegativeAmount)
	}
	if plan.RentToOwn && plan.DurationMonths <= 0 {
		return nil, newValidationError("duration_months", ErrNonPositiveDuration)
	}

	cost := buildCostBreakdown(landedCost, plan, op)

	basePrice := marginTargetPrice(cost.TotalMonthlyCost, targetMargin)
	discounted := basePrice * (1 - plan.Discount)

	quote := &PlanQuote{
		PlanName:        plan.Name,
		Cost:            cost,
		BasePrice:       basePrice,
		DiscountedPrice: discounted,
	}
	quote.fillDerived(landedCost, plan, targetMargin)
	return quote, nil
}

// ReplayPlanQuote re-derives a quote's figures from a stored cost/margin
// snapshot, without the original landed-cost input. Used for audit replay of
// historical model prices. The rent-to-own projection needs the original
// cost and is therefore absent from replays.
func ReplayPlanQuote(totalMonthlyCost, margin float64, plan RentalPlanInput, targetMargin float64) (*PlanQuote, error) {
	if totalMonthlyCost < 0 {
		return nil, newValidationError("total_monthly_cost", ErrNegativeAmount)
	}
	if margin >= 1 {
		return nil, newValidationError("margin", ErrNegativeAmount)
	}

	discounted := totalMonthlyCost / (1 - margin)
	basePrice := discounted
	if plan.Discount < 1 {
		basePrice = discounted / (1 - plan.Discount)
	}

	quote := &PlanQuote{
		PlanName:        plan.Name,
		Cost:            RentalCostBreakdown{TotalMonthlyCost: totalMonthlyCost},
		BasePrice:       basePrice,
		DiscountedPrice: discounted,
	}
	quote.fillDerived(0, plan, targetMargin)
	return quote, nil
}

func (q *PlanQuote) fillDerived(landedCost float64, plan RentalPlanInput, targetMargin float64) {
	discounted := q.DiscountedPrice

	q.Frequencies = FrequencyPrices{
		Monthly:  discounted,
		Biweekly: (discounted / 2) * (1 + plan.BiweeklySurcharge),
		Weekly:   (discounted / 4) * (1 + plan.WeeklySurcharge),
	}
	q.PaymentMethods = PaymentMethodPrices{
		WireTransfer: discounted,
		Wallet:       discounted * (1 + plan.WalletSurcharge),
		Cash:         discounted * (1 + plan.CashSurcharge),
	}

	depositBase := q.BasePrice
	if plan.DepositOnDiscounted {
		depositBase = discounted
	}
	q.Deposit = depositBase * plan.DepositMonths

	q.Margin = Margin(discounted, q.Cost.TotalMonthlyCost)
	if targetMargin <= 0 {
		targetMargin = 0.25
	}
	q.MarginStatus = ClassifyMargin(q.Margin, MarginPolicy{MinMargin: 0.10, TargetMargin: targetMargin})

	if plan.RentToOwn && landedCost > 0 {
		totalPaid := discounted * rentToOwnHorizonMonths
		ratio := totalPaid / landedCost
		q.RentToOwn = &RentToOwnProjection{
			TotalPaid:          totalPaid,
			DifferenceVsCost:   totalPaid - landedCost,
			EffectiveAnnualPct: (math.Sqrt(ratio) - 1) * 100,
		}
	}
}

func buildCostBreakdown(landedCost float64, plan RentalPlanInput, op OperatingCostParams) RentalCostBreakdown {
	var depreciation float64
	if plan.RentToOwn {
		depreciation = landedCost / float64(plan.DurationMonths)
	} else {
		depreciation = (landedCost * standardDepreciationShare) / standardDepreciationMonths
	}

	cb := RentalCostBreakdown{
		MonthlyDepreciation: depreciation,
		Insurance:           op.InsuranceMonthly,
		ProratedFees:        (op.AnnualTaxes + op.AnnualRegistration + op.AnnualInspection) / 12,
		Telematics:          op.TelematicsMonthly,
		Maintenance:         op.MaintenanceMonthly,
		Reserve:             landedCost * op.ReserveRate / 12,
		Storage:             op.StorageMonthly,
		Admin:               op.AdminMonthly,
	}
	cb.OperatingTotal = cb.Insurance + cb.ProratedFees + cb.Telematics +
		cb.Maintenance + cb.Reserve + cb.Storage + cb.Admin
	cb.TotalMonthlyCost = cb.MonthlyDepreciation + cb.OperatingTotal
	return cb
}

func marginTargetPrice(totalMonthlyCost, targetMargin float64) float64 {
	if targetMargin <= 0 {
		return totalMonthlyCost * 1.25
	}
	return totalMonthlyCost / (1 - targetMargin)
}
