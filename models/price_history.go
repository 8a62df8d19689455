package models

import (
	"time"

	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// Price history source constants
const (
	PriceHistorySourceBatch  = "batch"
	PriceHistorySourceManual = "manual"
)

// PriceHistory is the append-only audit trail of applied price
// changes. Rows are never updated or deleted.
type PriceHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PriceListID  uint      `gorm:"not null;index:idx_price_history_list_id" json:"price_list_id"`
	PartID       uint      `gorm:"not null;index:idx_price_history_part_id" json:"part_id"`
	BatchID      *uint     `gorm:"index:idx_price_history_batch_id" json:"batch_id,omitempty"`
	OldPrice     *float64  `gorm:"type:numeric(14,2)" json:"old_price,omitempty"`
	NewPrice     float64   `gorm:"type:numeric(14,2);not null" json:"new_price"`
	CostAtTime   float64   `gorm:"type:numeric(14,2);not null;default:0" json:"cost_at_time"`
	MarginAtTime float64   `gorm:"type:numeric(8,6);not null;default:0" json:"margin_at_time"`
	Source       string    `gorm:"size:32;not null;default:'batch'" json:"source"`
	ChangedBy    string    `gorm:"size:255;not null" json:"changed_by"`
	Reason       *string   `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_history_created_at" json:"created_at"`

	// Relations
	Part      *Part             `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
	PriceList *PriceList        `gorm:"foreignKey:PriceListID;references:ID" json:"price_list,omitempty"`
	Batch     *PriceChangeBatch `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`
}

// TableName returns the table name for the model
func (PriceHistory) TableName() string {
	return "price_history"
}

// BeforeCreate is called before creating a new record
func (h *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if h.Source == "" {
		h.Source = PriceHistorySourceBatch
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PriceHistoryFilter represents filter criteria for price history
type PriceHistoryFilter struct {
	ID            *uint      `json:"id,omitempty"`
	PriceListID   *uint      `json:"price_list_id,omitempty"`
	PartID        *uint      `json:"part_id,omitempty"`
	BatchID       *uint      `json:"batch_id,omitempty"`
	Source        *string    `json:"source,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
