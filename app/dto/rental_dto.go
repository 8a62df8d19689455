package dto

// ComputeModelPricesRequest represents the request to recompute plan quotes for a model
type ComputeModelPricesRequest struct {
	ModelUUID    string   `json:"-"`
	TargetMargin *float64 `json:"target_margin,omitempty" validate:"omitempty,gte=0,lt=1"`
}

// PlanQuoteDTO represents the full computed quote for one (model, plan) pair
type PlanQuoteDTO struct {
	PlanID              uint     `json:"plan_id"`
	PlanName            string   `json:"plan_name"`
	RentToOwn           bool     `json:"rent_to_own"`
	MonthlyDepreciation float64  `json:"monthly_depreciation"`
	OperatingCost       float64  `json:"operating_cost"`
	TotalMonthlyCost    float64  `json:"total_monthly_cost"`
	BasePrice           float64  `json:"base_price"`
	DiscountedPrice     float64  `json:"discounted_price"`
	BiweeklyPrice       float64  `json:"biweekly_price"`
	WeeklyPrice         float64  `json:"weekly_price"`
	WalletPrice         float64  `json:"wallet_price"`
	CashPrice           float64  `json:"cash_price"`
	Deposit             float64  `json:"deposit"`
	Margin              float64  `json:"margin"`
	MarginStatus        string   `json:"margin_status"`
	TotalPaid24Mo       *float64 `json:"total_paid_24mo,omitempty"`
	DiffVsCost          *float64 `json:"diff_vs_cost,omitempty"`
	EffectiveAnnualRate *float64 `json:"effective_annual_rate,omitempty"`
	Override            *float64 `json:"override,omitempty"`
	OverrideReason      *string  `json:"override_reason,omitempty"`
}

// ComputeModelPricesResponse represents the recomputed quotes for a model
type ComputeModelPricesResponse struct {
	Message    string         `json:"message"`
	ModelUUID  string         `json:"model_uuid"`
	ModelName  string         `json:"model_name"`
	LandedCost float64        `json:"landed_cost"`
	ComputedAt string         `json:"computed_at"`
	Quotes     []PlanQuoteDTO `json:"quotes"`
}

// SimulateRentalRequest represents a pure rental quote simulation from explicit inputs
type SimulateRentalRequest struct {
	LandedCost          float64  `json:"landed_cost" validate:"required,gt=0"`
	TargetMargin        *float64 `json:"target_margin,omitempty" validate:"omitempty,gte=0,lt=1"`
	DurationMonths      int      `json:"duration_months" validate:"required,gt=0"`
	RentToOwn           bool     `json:"rent_to_own"`
	Discount            float64  `json:"discount" validate:"gte=0,lt=1"`
	BiweeklySurcharge   float64  `json:"biweekly_surcharge" validate:"gte=0"`
	WeeklySurcharge     float64  `json:"weekly_surcharge" validate:"gte=0"`
	WalletSurcharge     float64  `json:"wallet_surcharge" validate:"gte=0"`
	CashSurcharge       float64  `json:"cash_surcharge" validate:"gte=0"`
	DepositMonths       int      `json:"deposit_months" validate:"gte=0"`
	DepositOnDiscounted bool     `json:"deposit_on_discounted"`

	InsuranceMonthly   float64 `json:"insurance_monthly" validate:"gte=0"`
	AnnualTaxes        float64 `json:"annual_taxes" validate:"gte=0"`
	AnnualRegistration float64 `json:"annual_registration" validate:"gte=0"`
	AnnualInspection   float64 `json:"annual_inspection" validate:"gte=0"`
	TelematicsMonthly  float64 `json:"telematics_monthly" validate:"gte=0"`
	MaintenanceMonthly float64 `json:"maintenance_monthly" validate:"gte=0"`
	ReserveRate        float64 `json:"reserve_rate" validate:"gte=0,lt=1"`
	StorageMonthly     float64 `json:"storage_monthly" validate:"gte=0"`
	AdminMonthly       float64 `json:"admin_monthly" validate:"gte=0"`
}

// SimulateRentalResponse represents the simulated quote
type SimulateRentalResponse struct {
	Message string       `json:"message"`
	Quote   PlanQuoteDTO `json:"quote"`
}

// OverrideModelPriceRequest represents a manual price override for a (model, plan) pair
type OverrideModelPriceRequest struct {
	ModelUUID string   `json:"-"`
	Actor     string   `json:"-"`
	PlanID    uint     `json:"plan_id" validate:"required,gt=0"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Reason    string   `json:"reason" validate:"required,min=3,max=500"`
	Clear     bool     `json:"clear"`
}

// OverrideModelPriceResponse represents the result of an override change
type OverrideModelPriceResponse struct {
	Message       string   `json:"message"`
	ModelUUID     string   `json:"model_uuid"`
	PlanID        uint     `json:"plan_id"`
	ComputedPrice float64  `json:"computed_price"`
	Override      *float64 `json:"override,omitempty"`
	DriftPct      *float64 `json:"drift_pct,omitempty"`
}
