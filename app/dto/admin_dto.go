// Package dto
package dto

// MarkupRuleDTO represents a banded markup rule in admin responses
type MarkupRuleDTO struct {
	ID         uint     `json:"id" example:"1"`
	Name       string   `json:"name" example:"mid-band brakes"`
	Category   *string  `json:"category,omitempty" example:"brakes"`
	BandLower  float64  `json:"band_lower" example:"10000"`
	BandUpper  *float64 `json:"band_upper,omitempty" example:"50000"`
	OEM        *bool    `json:"oem,omitempty"`
	Multiplier float64  `json:"multiplier" example:"1.8"`
	Rounding   string   `json:"rounding" example:"ending_99"`
	Priority   int      `json:"priority" example:"10"`
	Active     bool     `json:"active" example:"true"`
}

// SaveMarkupRuleRequest represents the request to create or update a markup rule
type SaveMarkupRuleRequest struct {
	Actor      string   `json:"-"`
	ID         *uint    `json:"id,omitempty" validate:"omitempty,gt=0"`
	Name       string   `json:"name" validate:"required,min=3,max=120"`
	Category   *string  `json:"category,omitempty" validate:"omitempty,max=64"`
	BandLower  float64  `json:"band_lower" validate:"gte=0"`
	BandUpper  *float64 `json:"band_upper,omitempty" validate:"omitempty,gt=0"`
	OEM        *bool    `json:"oem,omitempty"`
	Multiplier float64  `json:"multiplier" validate:"required,gt=0"`
	Rounding   string   `json:"rounding" validate:"required,oneof=none nearest_10 nearest_50 ending_99"`
	Priority   int      `json:"priority" validate:"gte=0"`
	Active     *bool    `json:"active,omitempty"`
}

// ListMarkupRulesResponse represents the active markup rule set
type ListMarkupRulesResponse struct {
	Message string          `json:"message"`
	Rules   []MarkupRuleDTO `json:"rules"`
}

// DiscountRuleDTO represents a conditional discount rule in admin responses
type DiscountRuleDTO struct {
	ID              uint     `json:"id" example:"1"`
	Name            string   `json:"name" example:"premium tier"`
	Condition       string   `json:"condition" example:"plan_tier"`
	PlanTiers       []string `json:"plan_tiers,omitempty"`
	MinTenureMonths *int     `json:"min_tenure_months,omitempty"`
	MinQuantity     *int     `json:"min_quantity,omitempty"`
	Kind            string   `json:"kind" example:"percentage"`
	Value           float64  `json:"value" example:"0.05"`
	Accumulable     bool     `json:"accumulable"`
	Priority        int      `json:"priority" example:"10"`
	Active          bool     `json:"active" example:"true"`
}

// SaveDiscountRuleRequest represents the request to create or update a discount rule
type SaveDiscountRuleRequest struct {
	Actor           string   `json:"-"`
	ID              *uint    `json:"id,omitempty" validate:"omitempty,gt=0"`
	Name            string   `json:"name" validate:"required,min=3,max=120"`
	Condition       string   `json:"condition" validate:"required,oneof=plan_tier tenure_months min_quantity"`
	PlanTiers       []string `json:"plan_tiers,omitempty" validate:"omitempty,dive,max=32"`
	MinTenureMonths *int     `json:"min_tenure_months,omitempty" validate:"omitempty,gte=0"`
	MinQuantity     *int     `json:"min_quantity,omitempty" validate:"omitempty,gt=0"`
	Kind            string   `json:"kind" validate:"required,oneof=percentage fixed"`
	Value           float64  `json:"value" validate:"gte=0"`
	Accumulable     bool     `json:"accumulable"`
	Priority        int      `json:"priority" validate:"gte=0"`
	Active          *bool    `json:"active,omitempty"`
}

// ListDiscountRulesResponse represents the active discount rule set
type ListDiscountRulesResponse struct {
	Message string            `json:"message"`
	Rules   []DiscountRuleDTO `json:"rules"`
}

// SaveRuleResponse represents the result of a rule create or update
type SaveRuleResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

// ExchangeRateDTO represents the reference USD to ARS rate
type ExchangeRateDTO struct {
	Rate      float64 `json:"rate" example:"1047.5"`
	Source    string  `json:"source" example:"manual"`
	SetBy     string  `json:"set_by" example:"ops"`
	FetchedAt string  `json:"fetched_at" example:"2024-01-15T10:30:00Z"`
	Stale     bool    `json:"stale"`
}

// GetExchangeRateResponse represents the current reference rate
type GetExchangeRateResponse struct {
	Message string           `json:"message"`
	Rate    *ExchangeRateDTO `json:"rate,omitempty"`
}

// SetExchangeRateRequest represents the request to persist a new reference rate
type SetExchangeRateRequest struct {
	Actor  string  `json:"-"`
	Rate   float64 `json:"rate" validate:"required,gt=0"`
	Source string  `json:"source" validate:"required,max=64"`
}

// SetExchangeRateResponse represents the result of a rate update
type SetExchangeRateResponse struct {
	Message   string  `json:"message"`
	Rate      float64 `json:"rate"`
	FetchedAt string  `json:"fetched_at"`
}
