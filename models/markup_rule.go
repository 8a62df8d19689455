package models

import (
	"time"

	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// MarkupRule stores a banded markup rule. Nil Category/OEM/band bounds
// mean "any"; the cost band is half-open [BandLower, BandUpper).
type MarkupRule struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Category   *string    `gorm:"size:64;index:idx_markup_rules_category" json:"category,omitempty"`
	BandLower  *float64   `gorm:"type:numeric(14,4)" json:"band_lower,omitempty"`
	BandUpper  *float64   `gorm:"type:numeric(14,4)" json:"band_upper,omitempty"`
	OEM        *bool      `json:"oem,omitempty"`
	Multiplier float64    `gorm:"type:numeric(8,4);not null" json:"multiplier"`
	Rounding   string     `gorm:"size:32;not null;default:'none'" json:"rounding"`
	Priority   int        `gorm:"not null;default:0;index:idx_markup_rules_priority" json:"priority"`
	Active     bool       `gorm:"not null;default:true;index:idx_markup_rules_active" json:"active"`
	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (MarkupRule) TableName() string {
	return "markup_rules"
}

// BeforeCreate is called before creating a new record
func (r *MarkupRule) BeforeCreate(tx *gorm.DB) error {
	if r.Rounding == "" {
		r.Rounding = string(pricing.RoundingNone)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *MarkupRule) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	r.UpdatedAt = &now
	return nil
}

// ToEngine converts the row into the calculator's rule form.
func (r *MarkupRule) ToEngine() pricing.MarkupRule {
	var bandLower float64
	if r.BandLower != nil {
		bandLower = *r.BandLower
	}
	return pricing.MarkupRule{
		ID:         r.ID,
		Name:       r.Name,
		Category:   r.Category,
		BandLower:  bandLower,
		BandUpper:  r.BandUpper,
		OEM:        r.OEM,
		Multiplier: r.Multiplier,
		Rounding:   pricing.RoundingPolicy(r.Rounding),
		Priority:   r.Priority,
	}
}

// MarkupRuleFilter represents filter criteria for markup rules
type MarkupRuleFilter struct {
	ID       *uint   `json:"id,omitempty"`
	Category *string `json:"category,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}
