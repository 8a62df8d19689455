package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// PriceList groups prices by sales channel (counter, workshop, wholesale).
// ListDiscount is a fractional discount applied after rule discounts when
// resolving a channel price.
type PriceList struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_price_lists_uuid" json:"uuid"`
	Code         string     `gorm:"size:64;not null;uniqueIndex:uk_price_lists_code" json:"code"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Currency     string     `gorm:"size:3;not null;default:'ARS'" json:"currency"`
	ListDiscount float64    `gorm:"type:numeric(6,4);not null;default:0" json:"list_discount"`
	Active       bool       `gorm:"not null;default:true;index:idx_price_lists_active" json:"active"`
	CreatedAt    time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`

	// Relations
	Items []PriceListItem `gorm:"foreignKey:PriceListID" json:"items,omitempty"`
}

// TableName returns the table name for the model
func (PriceList) TableName() string {
	return "price_lists"
}

// BeforeCreate is called before creating a new record
func (l *PriceList) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PriceListFilter represents filter criteria for price lists
type PriceListFilter struct {
	ID     *uint   `json:"id,omitempty"`
	Code   *string `json:"code,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// PriceListItem is one priced part on a list. Entries form a validity
// chain: at most one open entry (ValidTo IS NULL) exists per
// (price_list_id, part_id, min_quantity); applying a new price closes
// the open entry and inserts a fresh one. MinQuantity 0 is the base
// price; higher values are quantity breaks.
type PriceListItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PriceListID uint       `gorm:"not null;index:idx_price_list_items_list_id;uniqueIndex:uk_price_list_items_open,where:valid_to IS NULL" json:"price_list_id"`
	PartID      uint       `gorm:"not null;index:idx_price_list_items_part_id;uniqueIndex:uk_price_list_items_open,where:valid_to IS NULL" json:"part_id"`
	MinQuantity int        `gorm:"not null;default:0;uniqueIndex:uk_price_list_items_open,where:valid_to IS NULL" json:"min_quantity"`
	Price       float64    `gorm:"type:numeric(14,2);not null" json:"price"`
	ValidFrom   time.Time  `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_list_items_valid_from" json:"valid_from"`
	ValidTo     *time.Time `gorm:"index:idx_price_list_items_valid_to" json:"valid_to,omitempty"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	PriceList *PriceList `gorm:"foreignKey:PriceListID;references:ID" json:"price_list,omitempty"`
	Part      *Part      `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
}

// TableName returns the table name for the model
func (PriceListItem) TableName() string {
	return "price_list_items"
}

// BeforeCreate is called before creating a new record
func (i *PriceListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ValidFrom.IsZero() {
		i.ValidFrom = utils.UTCNow()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsOpen reports whether this entry is the current price.
func (i *PriceListItem) IsOpen() bool {
	return i.ValidTo == nil
}

// ActiveAt reports whether the entry was the effective price at t.
func (i *PriceListItem) ActiveAt(t time.Time) bool {
	if t.Before(i.ValidFrom) {
		return false
	}
	return i.ValidTo == nil || t.Before(*i.ValidTo)
}

// PriceListItemFilter represents filter criteria for price list items
type PriceListItemFilter struct {
	ID          *uint      `json:"id,omitempty"`
	PriceListID *uint      `json:"price_list_id,omitempty"`
	PartID      *uint      `json:"part_id,omitempty"`
	MinQuantity *int       `json:"min_quantity,omitempty"`
	OpenOnly    *bool      `json:"open_only,omitempty"`
	ActiveAt    *time.Time `json:"active_at,omitempty"`
}
