package models

import (
	"time"

	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// ShipmentCostAllocation is the frozen per-item cost breakdown written
// when a shipment is confirmed. Rows are immutable; a cancelled
// confirmation never happens, so there is no update path.
type ShipmentCostAllocation struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ShipmentID     uint    `gorm:"not null;index:idx_shipment_cost_allocations_shipment_id" json:"shipment_id"`
	ShipmentItemID uint    `gorm:"not null;uniqueIndex:uk_shipment_cost_allocations_item" json:"shipment_item_id"`
	PartID         uint    `gorm:"not null;index:idx_shipment_cost_allocations_part_id" json:"part_id"`
	Factor         float64 `gorm:"type:numeric(12,8);not null" json:"factor"`

	CIF           float64 `gorm:"type:numeric(14,4);not null" json:"cif"`
	Duty          float64 `gorm:"type:numeric(14,4);not null" json:"duty"`
	StatsTax      float64 `gorm:"type:numeric(14,4);not null" json:"stats_tax"`
	FixedFees     float64 `gorm:"type:numeric(14,4);not null" json:"fixed_fees"`
	Logistics     float64 `gorm:"type:numeric(14,4);not null" json:"logistics"`
	Recoverable   float64 `gorm:"type:numeric(14,4);not null" json:"recoverable"`
	LandedTotal   float64 `gorm:"type:numeric(14,4);not null" json:"landed_total"`
	LandedPerUnit float64 `gorm:"type:numeric(14,6);not null" json:"landed_per_unit"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Shipment     *Shipment     `gorm:"foreignKey:ShipmentID;references:ID" json:"shipment,omitempty"`
	ShipmentItem *ShipmentItem `gorm:"foreignKey:ShipmentItemID;references:ID" json:"shipment_item,omitempty"`
	Part         *Part         `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
}

// TableName returns the table name for the model
func (ShipmentCostAllocation) TableName() string {
	return "shipment_cost_allocations"
}

// BeforeCreate is called before creating a new record
func (a *ShipmentCostAllocation) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ShipmentCostAllocationFilter represents filter criteria for allocations
type ShipmentCostAllocationFilter struct {
	ID         *uint `json:"id,omitempty"`
	ShipmentID *uint `json:"shipment_id,omitempty"`
	PartID     *uint `json:"part_id,omitempty"`
}
