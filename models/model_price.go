package models

import (
	"time"

	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// ModelPrice is the stored quote for one (vehicle model, plan) pair.
// ComputedPrice and the cost/margin snapshot come from the engine;
// Override, when set, is the price actually charged. A row with zero
// ComputedPrice and no override is an unresolved pair the suggestion
// engine flags.
type ModelPrice struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	VehicleModelID uint     `gorm:"not null;index:idx_model_prices_model_id;uniqueIndex:uk_model_prices_pair" json:"vehicle_model_id"`
	RentalPlanID   uint     `gorm:"not null;index:idx_model_prices_plan_id;uniqueIndex:uk_model_prices_pair" json:"rental_plan_id"`
	ComputedPrice  float64  `gorm:"type:numeric(14,2);not null;default:0" json:"computed_price"`
	Override       *float64 `gorm:"type:numeric(14,2)" json:"override,omitempty"`
	OverrideBy     *string  `gorm:"size:255" json:"override_by,omitempty"`
	OverrideReason *string  `gorm:"type:text" json:"override_reason,omitempty"`

	// Snapshot of the cost basis behind ComputedPrice, for audit replay
	TotalMonthlyCost float64 `gorm:"type:numeric(14,4);not null;default:0" json:"total_monthly_cost"`
	Margin           float64 `gorm:"type:numeric(6,4);not null;default:0" json:"margin"`
	TargetMargin     float64 `gorm:"type:numeric(6,4);not null;default:0" json:"target_margin"`

	ComputedAt *time.Time `json:"computed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`

	// Relations
	VehicleModel *VehicleModel `gorm:"foreignKey:VehicleModelID;references:ID" json:"vehicle_model,omitempty"`
	RentalPlan   *RentalPlan   `gorm:"foreignKey:RentalPlanID;references:ID" json:"rental_plan,omitempty"`
}

// TableName returns the table name for the model
func (ModelPrice) TableName() string {
	return "model_prices"
}

// BeforeCreate is called before creating a new record
func (p *ModelPrice) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *ModelPrice) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// IsResolved reports whether the pair has a usable price.
func (p *ModelPrice) IsResolved() bool {
	return p.ComputedPrice > 0 || p.Override != nil
}

// EffectivePrice returns the price in effect, preferring the override.
func (p *ModelPrice) EffectivePrice() float64 {
	if p.Override != nil {
		return *p.Override
	}
	return p.ComputedPrice
}

// ModelPriceFilter represents filter criteria for model prices
type ModelPriceFilter struct {
	ID             *uint `json:"id,omitempty"`
	VehicleModelID *uint `json:"vehicle_model_id,omitempty"`
	RentalPlanID   *uint `json:"rental_plan_id,omitempty"`
	HasOverride    *bool `json:"has_override,omitempty"`
}
