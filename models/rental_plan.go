package models

import (
	"time"

	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// RentalPlan is a commercial rental plan. Tier is the commercial label
// discount rules match on; surcharges and the plan discount are
// fractions.
type RentalPlan struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"size:128;not null;uniqueIndex:uk_rental_plans_name" json:"name"`
	Tier           string  `gorm:"size:64;not null;index:idx_rental_plans_tier" json:"tier"`
	DurationMonths int     `gorm:"not null" json:"duration_months"`
	RentToOwn      bool    `gorm:"not null;default:false" json:"rent_to_own"`
	Discount       float64 `gorm:"type:numeric(6,4);not null;default:0" json:"discount"`

	BiweeklySurcharge float64 `gorm:"type:numeric(6,4);not null;default:0" json:"biweekly_surcharge"`
	WeeklySurcharge   float64 `gorm:"type:numeric(6,4);not null;default:0" json:"weekly_surcharge"`
	WalletSurcharge   float64 `gorm:"type:numeric(6,4);not null;default:0" json:"wallet_surcharge"`
	CashSurcharge     float64 `gorm:"type:numeric(6,4);not null;default:0" json:"cash_surcharge"`

	DepositMonths       float64 `gorm:"type:numeric(6,4);not null;default:0" json:"deposit_months"`
	DepositOnDiscounted bool    `gorm:"not null;default:true" json:"deposit_on_discounted"`

	TargetMargin float64    `gorm:"type:numeric(6,4);not null;default:0" json:"target_margin"`
	Active       bool       `gorm:"not null;default:true;index:idx_rental_plans_active" json:"active"`
	CreatedAt    time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (RentalPlan) TableName() string {
	return "rental_plans"
}

// BeforeCreate is called before creating a new record
func (p *RentalPlan) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *RentalPlan) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// ToEngine converts the plan into the calculator's input form.
func (p *RentalPlan) ToEngine() pricing.RentalPlanInput {
	return pricing.RentalPlanInput{
		Name:                p.Name,
		DurationMonths:      p.DurationMonths,
		RentToOwn:           p.RentToOwn,
		Discount:            p.Discount,
		BiweeklySurcharge:   p.BiweeklySurcharge,
		WeeklySurcharge:     p.WeeklySurcharge,
		WalletSurcharge:     p.WalletSurcharge,
		CashSurcharge:       p.CashSurcharge,
		DepositMonths:       p.DepositMonths,
		DepositOnDiscounted: p.DepositOnDiscounted,
	}
}

// RentalPlanFilter represents filter criteria for rental plans
type RentalPlanFilter struct {
	ID        *uint   `json:"id,omitempty"`
	Name      *string `json:"name,omitempty"`
	Tier      *string `json:"tier,omitempty"`
	RentToOwn *bool   `json:"rent_to_own,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
