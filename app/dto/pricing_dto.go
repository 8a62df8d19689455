package dto

// MarkupPreviewRequest represents the request to preview markup candidates for a part set
type MarkupPreviewRequest struct {
	PriceListCode string  `json:"price_list_code" validate:"required,max=32"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=64"`
	OEM           *bool   `json:"oem,omitempty"`
	PartIDs       []uint  `json:"part_ids,omitempty" validate:"omitempty,max=500,dive,gt=0"`
}

// MarkupCandidateDTO represents one proposed price change
type MarkupCandidateDTO struct {
	PartID       uint     `json:"part_id"`
	SKU          string   `json:"sku"`
	Category     string   `json:"category"`
	Cost         float64  `json:"cost"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	NewPrice     float64  `json:"new_price"`
	RuleID       *uint    `json:"rule_id,omitempty"`
	RuleName     string   `json:"rule_name"`
	Margin       float64  `json:"margin"`
	DeltaPct     *float64 `json:"delta_pct,omitempty"`
}

// MarkupPreviewResponse represents the markup candidates for the requested filter
type MarkupPreviewResponse struct {
	Message    string               `json:"message"`
	PriceList  string               `json:"price_list"`
	Candidates []MarkupCandidateDTO `json:"candidates"`
}

// MarkupProposeRequest represents the request to persist a draft price change batch
type MarkupProposeRequest struct {
	Actor         string  `json:"-"`
	PriceListCode string  `json:"price_list_code" validate:"required,max=32"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=64"`
	OEM           *bool   `json:"oem,omitempty"`
	PartIDs       []uint  `json:"part_ids,omitempty" validate:"omitempty,max=500,dive,gt=0"`
	Reason        string  `json:"reason" validate:"required,min=3,max=500"`
}

// MarkupProposeResponse represents the persisted draft batch
type MarkupProposeResponse struct {
	Message   string `json:"message"`
	BatchUUID string `json:"batch_uuid"`
	Status    string `json:"status"`
	Entries   int    `json:"entries"`
	CreatedAt string `json:"created_at"`
}

// ResolvePriceRequest represents the request to resolve a channel price for a part
type ResolvePriceRequest struct {
	PartID        uint    `json:"part_id" validate:"required,gt=0"`
	PriceListCode string  `json:"price_list_code" validate:"required,max=32"`
	PlanTier      *string `json:"plan_tier,omitempty" validate:"omitempty,max=32"`
	TenureMonths  *int    `json:"tenure_months,omitempty" validate:"omitempty,gte=0"`
	Quantity      int     `json:"quantity" validate:"required,gt=0"`
}

// AppliedRuleDTO represents one discount rule applied during stacking
type AppliedRuleDTO struct {
	RuleID      uint    `json:"rule_id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Value       float64 `json:"value"`
	PriceBefore float64 `json:"price_before"`
	PriceAfter  float64 `json:"price_after"`
}

// ResolvePriceResponse represents a fully resolved channel price
type ResolvePriceResponse struct {
	Message       string           `json:"message"`
	PartID        uint             `json:"part_id"`
	SKU           string           `json:"sku"`
	PriceList     string           `json:"price_list"`
	BasePrice     float64          `json:"base_price"`
	FinalPrice    float64          `json:"final_price"`
	TotalDiscount float64          `json:"total_discount_pct"`
	ListDiscount  float64          `json:"list_discount_pct"`
	RuleName      string           `json:"markup_rule"`
	AppliedRules  []AppliedRuleDTO `json:"applied_rules"`
	Margin        float64          `json:"margin"`
}

// GetBatchRequest represents the request to inspect a price change batch
type GetBatchRequest struct {
	BatchUUID string `json:"-"`
}

// BatchEntryDTO represents one row of a price change batch
type BatchEntryDTO struct {
	PartID   uint     `json:"part_id"`
	OldPrice *float64 `json:"old_price,omitempty"`
	NewPrice float64  `json:"new_price"`
	RuleID   *uint    `json:"rule_id,omitempty"`
}

// GetBatchResponse represents a price change batch with its entries
type GetBatchResponse struct {
	Message   string          `json:"message"`
	BatchUUID string          `json:"batch_uuid"`
	PriceList string          `json:"price_list"`
	Status    string          `json:"status"`
	Reason    string          `json:"reason"`
	CreatedBy string          `json:"created_by"`
	CreatedAt string          `json:"created_at"`
	AppliedAt *string         `json:"applied_at,omitempty"`
	Entries   []BatchEntryDTO `json:"entries"`
}

// ApplyBatchRequest represents the request to apply a draft price change batch
type ApplyBatchRequest struct {
	BatchUUID string `json:"-"`
	Actor     string `json:"-"`
	Confirm   bool   `json:"confirm"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

// ApplyBatchResponse represents the result of an applied batch
type ApplyBatchResponse struct {
	Message   string `json:"message"`
	BatchUUID string `json:"batch_uuid"`
	Status    string `json:"status"`
	Applied   int    `json:"applied"`
	AppliedAt string `json:"applied_at"`
}

// PercentAdjustmentRequest represents a percentage adjustment over a filtered part set
type PercentAdjustmentRequest struct {
	Actor         string  `json:"-"`
	PriceListCode string  `json:"price_list_code" validate:"required,max=32"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=64"`
	OEM           *bool   `json:"oem,omitempty"`
	PartIDs       []uint  `json:"part_ids,omitempty" validate:"omitempty,max=500,dive,gt=0"`
	AdjustmentPct float64 `json:"adjustment_pct" validate:"required,gt=-0.9,lte=10"`
	Confirm       bool    `json:"confirm"`
	Reason        string  `json:"reason" validate:"required,min=3,max=500"`
}

// PriceHistoryItemDTO represents one immutable price change record
type PriceHistoryItemDTO struct {
	PartID       uint     `json:"part_id"`
	OldPrice     *float64 `json:"old_price,omitempty"`
	NewPrice     float64  `json:"new_price"`
	CostAtTime   float64  `json:"cost_at_time"`
	MarginAtTime float64  `json:"margin_at_time"`
	Source       string   `json:"source"`
	ChangedBy    string   `json:"changed_by"`
	ChangedAt    string   `json:"changed_at"`
}

// ListPriceHistoryRequest represents a paginated price history query
type ListPriceHistoryRequest struct {
	PriceListCode string `json:"-"`
	PartID        uint   `json:"-"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

// ListPriceHistoryResponse represents a paginated list of price history records
type ListPriceHistoryResponse struct {
	Message    string                `json:"message"`
	Items      []PriceHistoryItemDTO `json:"items"`
	Pagination PaginationInfo        `json:"pagination"`
}
