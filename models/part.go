// Package models contains domain entities and business models for the pricing and costing engine
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// Part represents a spare part in the catalog. AverageCostUSD is the
// weighted-average landed cost per unit and is only mutated through the
// cost ledger; StockQuantity tracks on-hand units used for blending.
type Part struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_parts_uuid" json:"uuid"`
	SKU            string     `gorm:"size:64;not null;uniqueIndex:uk_parts_sku" json:"sku"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Category       string     `gorm:"size:64;not null;index:idx_parts_category" json:"category"`
	OEM            bool       `gorm:"not null;default:false" json:"oem"`
	StockQuantity  float64    `gorm:"type:numeric(14,4);not null;default:0" json:"stock_quantity"`
	AverageCostUSD float64    `gorm:"type:numeric(14,4);not null;default:0" json:"average_cost_usd"`
	AverageCostARS float64    `gorm:"type:numeric(14,2);not null;default:0" json:"average_cost_ars"`
	WeightKg       float64    `gorm:"type:numeric(10,4);not null;default:0" json:"weight_kg"`
	VolumeM3       float64    `gorm:"type:numeric(10,6);not null;default:0" json:"volume_m3"`
	Active         bool       `gorm:"not null;default:true;index:idx_parts_active" json:"active"`
	CreatedAt      time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Part) TableName() string {
	return "parts"
}

// BeforeCreate is called before creating a new record
func (p *Part) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Part) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// HasCostBasis reports whether the part ever received inventory.
func (p *Part) HasCostBasis() bool {
	return p.AverageCostUSD > 0
}

// PartFilter represents filter criteria for parts
type PartFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	SKU           *string    `json:"sku,omitempty"`
	Category      *string    `json:"category,omitempty"`
	OEM           *bool      `json:"oem,omitempty"`
	Active        *bool      `json:"active,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
