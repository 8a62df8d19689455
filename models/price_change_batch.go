package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// PriceChangeBatchStatus represents the status of a bulk price change
type PriceChangeBatchStatus string

const (
	PriceChangeBatchStatusDraft     PriceChangeBatchStatus = "draft"
	PriceChangeBatchStatusApplied   PriceChangeBatchStatus = "applied"
	PriceChangeBatchStatusDiscarded PriceChangeBatchStatus = "discarded"
)

// String returns the string representation of the status
func (s PriceChangeBatchStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PriceChangeBatchStatus) Valid() bool {
	switch s {
	case PriceChangeBatchStatusDraft, PriceChangeBatchStatusApplied, PriceChangeBatchStatusDiscarded:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PriceChangeBatchStatus
func (s *PriceChangeBatchStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PriceChangeBatchStatus(v)
	case []byte:
		*s = PriceChangeBatchStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PriceChangeBatchStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PriceChangeBatchStatus
func (s PriceChangeBatchStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PriceChangeBatchStatus: %s", s)
	}
	return string(s), nil
}

// PriceChangeBatch is a proposed set of price changes for one price
// list. A batch is applied at most once; applying closes the open
// price entries of the affected parts and writes the new ones in a
// single transaction.
type PriceChangeBatch struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:uk_price_change_batches_uuid" json:"uuid"`
	PriceListID uint                   `gorm:"not null;index:idx_price_change_batches_list_id" json:"price_list_id"`
	Status      PriceChangeBatchStatus `gorm:"type:price_change_batch_status;not null;default:'draft';index:idx_price_change_batches_status" json:"status"`
	Reason      *string                `gorm:"type:text" json:"reason,omitempty"`
	CreatedBy   string                 `gorm:"size:255;not null" json:"created_by"`
	AppliedBy   *string                `gorm:"size:255" json:"applied_by,omitempty"`
	AppliedAt   *time.Time             `gorm:"index:idx_price_change_batches_applied_at" json:"applied_at,omitempty"`
	CreatedAt   time.Time              `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_change_batches_created_at" json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`

	// Relations
	PriceList *PriceList         `gorm:"foreignKey:PriceListID;references:ID" json:"price_list,omitempty"`
	Entries   []PriceChangeEntry `gorm:"foreignKey:BatchID" json:"entries,omitempty"`
}

// TableName returns the table name for the model
func (PriceChangeBatch) TableName() string {
	return "price_change_batches"
}

// BeforeCreate is called before creating a new record
func (b *PriceChangeBatch) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.Status == "" {
		b.Status = PriceChangeBatchStatusDraft
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (b *PriceChangeBatch) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	b.UpdatedAt = &now
	return nil
}

// IsApplicable checks if the batch can still be applied
func (b *PriceChangeBatch) IsApplicable() bool {
	return b.Status == PriceChangeBatchStatusDraft
}

// PriceChangeBatchFilter represents filter criteria for batches
type PriceChangeBatchFilter struct {
	ID            *uint                   `json:"id,omitempty"`
	UUID          *uuid.UUID              `json:"uuid,omitempty"`
	PriceListID   *uint                   `json:"price_list_id,omitempty"`
	Status        *PriceChangeBatchStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time              `json:"created_after,omitempty"`
	CreatedBefore *time.Time              `json:"created_before,omitempty"`
}

// PriceChangeEntry is one proposed part price inside a batch. OldPrice
// is the open price captured at proposal time, used to detect drift
// when applying.
type PriceChangeEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BatchID      uint      `gorm:"not null;index:idx_price_change_entries_batch_id" json:"batch_id"`
	PartID       uint      `gorm:"not null;index:idx_price_change_entries_part_id" json:"part_id"`
	OldPrice     *float64  `gorm:"type:numeric(14,2)" json:"old_price,omitempty"`
	NewPrice     float64   `gorm:"type:numeric(14,2);not null" json:"new_price"`
	MarkupRuleID *uint     `json:"markup_rule_id,omitempty"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Batch *PriceChangeBatch `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`
	Part  *Part             `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
}

// TableName returns the table name for the model
func (PriceChangeEntry) TableName() string {
	return "price_change_entries"
}

// PriceChangeEntryFilter represents filter criteria for batch entries
type PriceChangeEntryFilter struct {
	ID      *uint `json:"id,omitempty"`
	BatchID *uint `json:"batch_id,omitempty"`
	PartID  *uint `json:"part_id,omitempty"`
}
