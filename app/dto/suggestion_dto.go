package dto

// SuggestionDTO represents one actionable pricing anomaly
type SuggestionDTO struct {
	Tier         int     `json:"tier"`
	Severity     string  `json:"severity"`
	Code         string  `json:"code"`
	Message      string  `json:"message"`
	PartRef      string  `json:"part_ref,omitempty"`
	ModelName    string  `json:"model_name,omitempty"`
	PlanName     string  `json:"plan_name,omitempty"`
	Category     string  `json:"category,omitempty"`
	Margin       float64 `json:"margin"`
	TargetMargin float64 `json:"target_margin"`
}

// ListSuggestionsRequest represents the query for the suggestion list
type ListSuggestionsRequest struct {
	Severity *string `json:"-" validate:"omitempty,oneof=critical warning review info"`
	MaxTier  *int    `json:"-" validate:"omitempty,gte=1,lte=6"`
}

// ListSuggestionsResponse represents the ordered suggestion list
type ListSuggestionsResponse struct {
	Message     string          `json:"message"`
	GeneratedAt string          `json:"generated_at"`
	Suggestions []SuggestionDTO `json:"suggestions"`
}
