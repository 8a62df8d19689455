package models

import (
	"time"

	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// Cost ledger source constants
const (
	CostLedgerSourceShipment   = "shipment"
	CostLedgerSourceAdjustment = "adjustment"
)

// CostLedgerEntry records one weighted-average cost transition for a
// part, in both tracked currencies. Entries are append-only; the latest
// entry's after figures always equal the part's current cost basis.
type CostLedgerEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PartID          uint      `gorm:"not null;index:idx_cost_ledger_entries_part_id" json:"part_id"`
	ShipmentID      *uint     `gorm:"index:idx_cost_ledger_entries_shipment_id" json:"shipment_id,omitempty"`
	Source          string    `gorm:"size:32;not null;default:'shipment'" json:"source"`
	QuantityBefore  float64   `gorm:"type:numeric(14,4);not null" json:"quantity_before"`
	QuantityAdded   float64   `gorm:"type:numeric(14,4);not null" json:"quantity_added"`
	QuantityAfter   float64   `gorm:"type:numeric(14,4);not null" json:"quantity_after"`
	CostBeforeUSD   float64   `gorm:"type:numeric(14,6);not null" json:"cost_before_usd"`
	IncomingCostUSD float64   `gorm:"type:numeric(14,6);not null" json:"incoming_cost_usd"`
	CostAfterUSD    float64   `gorm:"type:numeric(14,6);not null" json:"cost_after_usd"`
	CostBeforeARS   float64   `gorm:"type:numeric(14,2);not null" json:"cost_before_ars"`
	IncomingCostARS float64   `gorm:"type:numeric(14,2);not null" json:"incoming_cost_ars"`
	CostAfterARS    float64   `gorm:"type:numeric(14,2);not null" json:"cost_after_ars"`
	Note            *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_cost_ledger_entries_created_at" json:"created_at"`

	// Relations
	Part     *Part     `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
	Shipment *Shipment `gorm:"foreignKey:ShipmentID;references:ID" json:"shipment,omitempty"`
}

// TableName returns the table name for the model
func (CostLedgerEntry) TableName() string {
	return "cost_ledger_entries"
}

// BeforeCreate is called before creating a new record
func (e *CostLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Source == "" {
		e.Source = CostLedgerSourceShipment
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CostLedgerEntryFilter represents filter criteria for ledger entries
type CostLedgerEntryFilter struct {
	ID            *uint      `json:"id,omitempty"`
	PartID        *uint      `json:"part_id,omitempty"`
	ShipmentID    *uint      `json:"shipment_id,omitempty"`
	Source        *string    `json:"source,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
