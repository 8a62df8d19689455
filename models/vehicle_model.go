package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// VehicleModel represents a rentable motorcycle model. LandedCost is
// the local-currency acquisition cost used by plan quoting; operating
// figures are the model's fixed monthly cost inputs.
type VehicleModel struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_vehicle_models_uuid" json:"uuid"`
	Name       string    `gorm:"size:255;not null;uniqueIndex:uk_vehicle_models_name" json:"name"`
	Brand      string    `gorm:"size:128;not null" json:"brand"`
	Segment    string    `gorm:"size:64;not null;index:idx_vehicle_models_segment" json:"segment"`
	LandedCost float64   `gorm:"type:numeric(14,2);not null;default:0" json:"landed_cost"`

	InsuranceMonthly   float64 `gorm:"type:numeric(14,2);not null;default:0" json:"insurance_monthly"`
	AnnualTaxes        float64 `gorm:"type:numeric(14,2);not null;default:0" json:"annual_taxes"`
	AnnualRegistration float64 `gorm:"type:numeric(14,2);not null;default:0" json:"annual_registration"`
	AnnualInspection   float64 `gorm:"type:numeric(14,2);not null;default:0" json:"annual_inspection"`
	TelematicsMonthly  float64 `gorm:"type:numeric(14,2);not null;default:0" json:"telematics_monthly"`
	MaintenanceMonthly float64 `gorm:"type:numeric(14,2);not null;default:0" json:"maintenance_monthly"`
	ReserveRate        float64 `gorm:"type:numeric(6,4);not null;default:0" json:"reserve_rate"`
	StorageMonthly     float64 `gorm:"type:numeric(14,2);not null;default:0" json:"storage_monthly"`
	AdminMonthly       float64 `gorm:"type:numeric(14,2);not null;default:0" json:"admin_monthly"`

	Active    bool       `gorm:"not null;default:true;index:idx_vehicle_models_active" json:"active"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (VehicleModel) TableName() string {
	return "vehicle_models"
}

// BeforeCreate is called before creating a new record
func (m *VehicleModel) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (m *VehicleModel) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	m.UpdatedAt = &now
	return nil
}

// OperatingCosts returns the model's fixed cost inputs in engine form.
func (m *VehicleModel) OperatingCosts() pricing.OperatingCostParams {
	return pricing.OperatingCostParams{
		InsuranceMonthly:   m.InsuranceMonthly,
		AnnualTaxes:        m.AnnualTaxes,
		AnnualRegistration: m.AnnualRegistration,
		AnnualInspection:   m.AnnualInspection,
		TelematicsMonthly:  m.TelematicsMonthly,
		MaintenanceMonthly: m.MaintenanceMonthly,
		ReserveRate:        m.ReserveRate,
		StorageMonthly:     m.StorageMonthly,
		AdminMonthly:       m.AdminMonthly,
	}
}

// VehicleModelFilter represents filter criteria for vehicle models
type VehicleModelFilter struct {
	ID      *uint      `json:"id,omitempty"`
	UUID    *uuid.UUID `json:"uuid,omitempty"`
	Name    *string    `json:"name,omitempty"`
	Brand   *string    `json:"brand,omitempty"`
	Segment *string    `json:"segment,omitempty"`
	Active  *bool      `json:"active,omitempty"`
}
