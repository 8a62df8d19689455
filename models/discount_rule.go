package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// DiscountRule stores a conditional discount. PlanTiers applies when
// Condition is plan_tier; MinTenureMonths and MinQuantity apply to the
// tenure and quantity conditions. Non-accumulable rules compete, only
// the highest-priority match applies.
type DiscountRule struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Condition       string         `gorm:"size:32;not null" json:"condition"`
	PlanTiers       pq.StringArray `gorm:"type:text[]" json:"plan_tiers,omitempty"`
	MinTenureMonths int            `gorm:"not null;default:0" json:"min_tenure_months"`
	MinQuantity     int            `gorm:"not null;default:0" json:"min_quantity"`
	Kind            string         `gorm:"size:16;not null;default:'percentage'" json:"kind"`
	Value           float64        `gorm:"type:numeric(14,4);not null" json:"value"`
	Accumulable     bool           `gorm:"not null;default:false" json:"accumulable"`
	Priority        int            `gorm:"not null;default:0;index:idx_discount_rules_priority" json:"priority"`
	Active          bool           `gorm:"not null;default:true;index:idx_discount_rules_active" json:"active"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (DiscountRule) TableName() string {
	return "discount_rules"
}

// BeforeUpdate is called before updating a record
func (r *DiscountRule) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	r.UpdatedAt = &now
	return nil
}

// ToEngine converts the row into the calculator's rule form.
func (r *DiscountRule) ToEngine() pricing.DiscountRule {
	return pricing.DiscountRule{
		ID:              r.ID,
		Name:            r.Name,
		Condition:       pricing.DiscountCondition(r.Condition),
		PlanTiers:       r.PlanTiers,
		MinTenureMonths: r.MinTenureMonths,
		MinQuantity:     r.MinQuantity,
		Kind:            pricing.DiscountKind(r.Kind),
		Value:           r.Value,
		Accumulable:     r.Accumulable,
		Priority:        r.Priority,
	}
}

// DiscountRuleFilter represents filter criteria for discount rules
type DiscountRuleFilter struct {
	ID        *uint   `json:"id,omitempty"`
	Condition *string `json:"condition,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
