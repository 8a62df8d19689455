package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// ShipmentStatus represents the status of an import shipment
type ShipmentStatus string

const (
	ShipmentStatusDraft     ShipmentStatus = "draft"
	ShipmentStatusConfirmed ShipmentStatus = "confirmed"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// String returns the string representation of the status
func (s ShipmentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentStatusDraft, ShipmentStatusConfirmed, ShipmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ShipmentStatus
func (s *ShipmentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ShipmentStatus(v)
	case []byte:
		*s = ShipmentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ShipmentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ShipmentStatus
func (s ShipmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ShipmentStatus: %s", s)
	}
	return string(s), nil
}

// ShipmentCharges holds the cost inputs of a shipment that are not
// per-item: ad-valorem rates, fixed customs fees and local logistics.
// All monetary figures are in the shipment currency except logistics,
// which is local currency converted at capture time.
type ShipmentCharges struct {
	// Ad-valorem rates as fractions of the taxable base
	DutyRate          float64            `json:"duty_rate"`
	CategoryDutyRates map[string]float64 `json:"category_duty_rates,omitempty"`
	StatsTaxRate      float64            `json:"stats_tax_rate"`
	VATRate           float64            `json:"vat_rate"`
	AdditionalVATRate float64            `json:"additional_vat_rate"`
	IncomeTaxRate     float64            `json:"income_tax_rate"`
	GrossReceiptsRate float64            `json:"gross_receipts_rate"`

	// Fixed customs-side fees
	CustomsClearance float64 `json:"customs_clearance"`
	PortHandling     float64 `json:"port_handling"`
	BrokerFees       float64 `json:"broker_fees"`

	// Local logistics
	InlandFreight     float64 `json:"inland_freight"`
	WarehouseHandling float64 `json:"warehouse_handling"`
	OtherLogistics    float64 `json:"other_logistics"`
}

// Value implements the driver.Valuer interface for ShipmentCharges
func (c ShipmentCharges) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for ShipmentCharges
func (c *ShipmentCharges) Scan(value any) error {
	if value == nil {
		*c = ShipmentCharges{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ShipmentCharges", value)
	}

	return json.Unmarshal(bytes, c)
}

// FixedFees returns the sum of the fixed customs-side fees.
func (c ShipmentCharges) FixedFees() float64 {
	return c.CustomsClearance + c.PortHandling + c.BrokerFees
}

// Shipment represents an import shipment. Costing runs are free-form
// while the shipment is a draft; confirming freezes the allocation and
// feeds the cost ledger exactly once.
type Shipment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_shipments_uuid" json:"uuid"`
	Reference        string          `gorm:"size:64;not null;uniqueIndex:uk_shipments_reference" json:"reference"`
	Supplier         string          `gorm:"size:255;not null" json:"supplier"`
	Status           ShipmentStatus  `gorm:"type:shipment_status;not null;default:'draft';index:idx_shipments_status" json:"status"`
	Currency         string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	AllocationMethod string          `gorm:"size:16;not null;default:'by_value'" json:"allocation_method"`
	FOBTotal         float64         `gorm:"type:numeric(14,2);not null" json:"fob_total"`
	Freight          float64         `gorm:"type:numeric(14,2);not null;default:0" json:"freight"`
	Insurance        *float64        `gorm:"type:numeric(14,2)" json:"insurance,omitempty"`
	ExchangeRate     float64         `gorm:"type:numeric(14,4);not null;default:0" json:"exchange_rate"`
	Charges          ShipmentCharges `gorm:"type:jsonb;not null" json:"charges"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	ConfirmedBy      *string         `gorm:"size:255" json:"confirmed_by,omitempty"`
	CreatedAt        time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_shipments_created_at" json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Items []ShipmentItem `gorm:"foreignKey:ShipmentID" json:"items,omitempty"`
}

// TableName returns the table name for the model
func (Shipment) TableName() string {
	return "shipments"
}

// BeforeCreate is called before creating a new record
func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ShipmentStatusDraft
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *Shipment) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	s.UpdatedAt = &now
	return nil
}

// IsEditable checks if the shipment can still be modified
func (s *Shipment) IsEditable() bool {
	return s.Status == ShipmentStatusDraft
}

// CanTransitionTo checks if the shipment can transition to the given status
func (s *Shipment) CanTransitionTo(newStatus ShipmentStatus) bool {
	switch s.Status {
	case ShipmentStatusDraft:
		return newStatus == ShipmentStatusConfirmed || newStatus == ShipmentStatusCancelled
	default:
		return false
	}
}

// ShipmentFilter represents filter criteria for shipments
type ShipmentFilter struct {
	ID            *uint           `json:"id,omitempty"`
	UUID          *uuid.UUID      `json:"uuid,omitempty"`
	Reference     *string         `json:"reference,omitempty"`
	Supplier      *string         `json:"supplier,omitempty"`
	Status        *ShipmentStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
}

// ShipmentItem is one part line on a shipment. DutyRateOverride beats
// the shipment's category and default duty rates for this line only.
type ShipmentItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ShipmentID       uint      `gorm:"not null;index:idx_shipment_items_shipment_id" json:"shipment_id"`
	PartID           uint      `gorm:"not null;index:idx_shipment_items_part_id" json:"part_id"`
	Quantity         float64   `gorm:"type:numeric(14,4);not null" json:"quantity"`
	FOBSubtotal      float64   `gorm:"type:numeric(14,2);not null" json:"fob_subtotal"`
	WeightKg         float64   `gorm:"type:numeric(10,4);not null;default:0" json:"weight_kg"`
	VolumeM3         float64   `gorm:"type:numeric(10,6);not null;default:0" json:"volume_m3"`
	DutyRateOverride *float64  `gorm:"type:numeric(6,4)" json:"duty_rate_override,omitempty"`
	CreatedAt        time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Shipment *Shipment `gorm:"foreignKey:ShipmentID;references:ID" json:"shipment,omitempty"`
	Part     *Part     `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
}

// TableName returns the table name for the model
func (ShipmentItem) TableName() string {
	return "shipment_items"
}

// ShipmentItemFilter represents filter criteria for shipment items
type ShipmentItemFilter struct {
	ID         *uint `json:"id,omitempty"`
	ShipmentID *uint `json:"shipment_id,omitempty"`
	PartID     *uint `json:"part_id,omitempty"`
}
