package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Actor        string          `gorm:"size:255;not null;index:idx_audit_actor" json:"actor"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;index:idx_audit_metadata,type:gin" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionShipmentCreated    = "shipment_created"
	AuditActionShipmentConfirmed  = "shipment_confirmed"
	AuditActionShipmentCancelled  = "shipment_cancelled"
	AuditActionBatchProposed      = "price_batch_proposed"
	AuditActionBatchApplied       = "price_batch_applied"
	AuditActionBatchDiscarded     = "price_batch_discarded"
	AuditActionPriceOverridden    = "model_price_overridden"
	AuditActionOverrideCleared    = "model_price_override_cleared"
	AuditActionExchangeRateSet    = "exchange_rate_set"
	AuditActionMarkupRuleChanged  = "markup_rule_changed"
	AuditActionDiscountRuleChange = "discount_rule_changed"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	Actor         *string
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

// IsMutation reports whether the action changed priced state, as
// opposed to a simulation or read.
func (a *AuditLog) IsMutation() bool {
	mutations := map[string]bool{
		AuditActionShipmentConfirmed: true,
		AuditActionBatchApplied:      true,
		AuditActionPriceOverridden:   true,
		AuditActionOverrideCleared:   true,
		AuditActionExchangeRateSet:   true,
	}
	return mutations[a.Action]
}
