// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/motofleet/backoffice/app/dto"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/pricing"
	"github.com/motofleet/backoffice/repository"
	"github.com/motofleet/backoffice/utils"
)

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToSuggestionDTO converts an engine suggestion to its response shape
func ToSuggestionDTO(s pricing.Suggestion) dto.SuggestionDTO {
	return dto.SuggestionDTO{
		Tier:         s.Tier,
		Severity:     string(s.Severity),
		Code:         s.Code,
		Message:      s.Message,
		PartRef:      s.PartRef,
		ModelName:    s.ModelName,
		PlanName:     s.PlanName,
		Category:     s.Category,
		Margin:       s.Margin,
		TargetMargin: s.TargetMargin,
	}
}

// ToPlanQuoteDTO flattens an engine plan quote into its response shape
func ToPlanQuoteDTO(planID uint, q pricing.PlanQuote) dto.PlanQuoteDTO {
	out := dto.PlanQuoteDTO{
		PlanID:              planID,
		PlanName:            q.PlanName,
		RentToOwn:           q.RentToOwn != nil,
		MonthlyDepreciation: q.Cost.MonthlyDepreciation,
		OperatingCost:       q.Cost.OperatingTotal,
		TotalMonthlyCost:    q.Cost.TotalMonthlyCost,
		BasePrice:           q.BasePrice,
		DiscountedPrice:     q.DiscountedPrice,
		BiweeklyPrice:       q.Frequencies.Biweekly,
		WeeklyPrice:         q.Frequencies.Weekly,
		WalletPrice:         q.PaymentMethods.Wallet,
		CashPrice:           q.PaymentMethods.Cash,
		Deposit:             q.Deposit,
		Margin:              q.Margin,
		MarginStatus:        string(q.MarginStatus),
	}
	if q.RentToOwn != nil {
		out.TotalPaid24Mo = &q.RentToOwn.TotalPaid
		out.DiffVsCost = &q.RentToOwn.DifferenceVsCost
		out.EffectiveAnnualRate = &q.RentToOwn.EffectiveAnnualPct
	}
	return out
}

// saveAuditLog records one audit trail row. Flows call it on both the
// success and failure branches of every mutation.
func saveAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, actor, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	if actor == "" {
		actor = "system"
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		Actor:        actor,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	if err := auditRepo.Save(ctx, audit); err != nil {
		return err
	}

	return nil
}
