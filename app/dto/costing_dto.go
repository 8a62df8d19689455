// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SimulateCostingRequest represents the request to preview a shipment cost allocation
type SimulateCostingRequest struct {
	ShipmentUUID string   `json:"-"`
	Method       *string  `json:"method,omitempty" validate:"omitempty,oneof=by_value by_weight by_volume hybrid"`
	ExchangeRate *float64 `json:"exchange_rate,omitempty" validate:"omitempty,gt=0"`
}

// AllocationLineDTO represents the frozen cost breakdown for a single shipment item
type AllocationLineDTO struct {
	ShipmentItemID uint    `json:"shipment_item_id"`
	PartID         uint    `json:"part_id"`
	SKU            string  `json:"sku"`
	Category       string  `json:"category"`
	Quantity       float64 `json:"quantity"`
	Factor         float64 `json:"factor"`
	FOBSubtotal    float64 `json:"fob_subtotal"`
	Freight        float64 `json:"freight"`
	Insurance      float64 `json:"insurance"`
	CIF            float64 `json:"cif"`
	Duty           float64 `json:"duty"`
	StatsTax       float64 `json:"stats_tax"`
	FixedFees      float64 `json:"fixed_fees"`
	Logistics      float64 `json:"logistics"`
	Recoverable    float64 `json:"recoverable"`
	LandedTotal    float64 `json:"landed_total"`
	LandedPerUnit  float64 `json:"landed_per_unit"`
	Disbursement   float64 `json:"disbursement"`
	MarginStatus   string  `json:"margin_status"`
}

// CategorySummaryDTO aggregates landed cost per part category
type CategorySummaryDTO struct {
	Category    string  `json:"category"`
	Units       float64 `json:"units"`
	LandedTotal float64 `json:"landed_total"`
}

// SimulateCostingResponse represents the allocation preview for a shipment
type SimulateCostingResponse struct {
	Message          string               `json:"message"`
	ShipmentUUID     string               `json:"shipment_uuid"`
	Reference        string               `json:"reference"`
	Method           string               `json:"method"`
	ExchangeRate     float64              `json:"exchange_rate"`
	FOBTotal         float64              `json:"fob_total"`
	Freight          float64              `json:"freight"`
	Insurance        float64              `json:"insurance"`
	CIFTotal         float64              `json:"cif_total"`
	NonRecoverable   float64              `json:"non_recoverable_total"`
	RecoverableTotal float64              `json:"recoverable_total"`
	Disbursement     float64              `json:"disbursement_total"`
	Lines            []AllocationLineDTO  `json:"lines"`
	Categories       []CategorySummaryDTO `json:"categories"`
}

// ConfirmCostingRequest represents the request to confirm a shipment costing
type ConfirmCostingRequest struct {
	ShipmentUUID string  `json:"-"`
	Actor        string  `json:"-"`
	Confirm      bool    `json:"confirm"`
	Reason       string  `json:"reason" validate:"required,min=3,max=500"`
	Method       *string `json:"method,omitempty" validate:"omitempty,oneof=by_value by_weight by_volume hybrid"`
}

// CostBasisChangeDTO represents one weighted-average update produced by a confirmation
type CostBasisChangeDTO struct {
	PartID          uint    `json:"part_id"`
	SKU             string  `json:"sku"`
	QuantityAdded   float64 `json:"quantity_added"`
	CostBeforeUSD   float64 `json:"cost_before_usd"`
	IncomingCostUSD float64 `json:"incoming_cost_usd"`
	CostAfterUSD    float64 `json:"cost_after_usd"`
	CostBeforeARS   float64 `json:"cost_before_ars"`
	IncomingCostARS float64 `json:"incoming_cost_ars"`
	CostAfterARS    float64 `json:"cost_after_ars"`
}

// ConfirmCostingResponse represents the result of a confirmed shipment costing
type ConfirmCostingResponse struct {
	Message       string               `json:"message"`
	ShipmentUUID  string               `json:"shipment_uuid"`
	ConfirmedAt   string               `json:"confirmed_at"`
	PartsUpdated  int                  `json:"parts_updated"`
	LedgerEntries int                  `json:"ledger_entries"`
	Changes       []CostBasisChangeDTO `json:"changes"`
}
