package models

import (
	"time"

	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// ExchangeRate is one captured USD to local reference rate. Rows are
// append-only; the latest row by created_at is the rate in effect.
type ExchangeRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Rate      float64   `gorm:"type:numeric(14,4);not null" json:"rate"`
	Source    string    `gorm:"size:64;not null;default:'manual'" json:"source"`
	SetBy     string    `gorm:"size:255;not null" json:"set_by"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_exchange_rates_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}

// BeforeCreate is called before creating a new record
func (r *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if r.Source == "" {
		r.Source = "manual"
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ExchangeRateFilter represents filter criteria for exchange rates
type ExchangeRateFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Source        *string    `json:"source,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
