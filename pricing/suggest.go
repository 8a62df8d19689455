package pricing

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Suggestion tiers, 1 = most urgent. The numbering is part of the reporting
// contract; consumers sort and group by it.
const (
	TierCriticalMargin = 1
	TierLowMargin      = 2
	TierStaleRate      = 3
	TierMissingPrice   = 4
	TierOverrideDrift  = 5
	TierExcessMargin   = 6
)

// SuggestionSeverity mirrors the tier as a coarse label.
type SuggestionSeverity string

const (
	SeverityCritical SuggestionSeverity = "critical"
	SeverityWarning  SuggestionSeverity = "warning"
	SeverityReview   SuggestionSeverity = "review"
	SeverityInfo     SuggestionSeverity = "info"
)

// Suggestion is one actionable pricing anomaly. It carries enough context
// (identifiers and both margin figures) to act on without a follow-up query.
type Suggestion struct {
	Tier     int
	Severity SuggestionSeverity
	Code     string
	Message  string

	PartRef   string
	ModelName string
	PlanName  string
	Category  string

	Margin       float64
	TargetMargin float64
}

// PricePoint is one resolved part price the engine scans.
type PricePoint struct {
	PartRef  string
	Category string
	Price    float64
	Cost     float64
}

// ModelPlanPrice is one rental (model, plan) price the engine scans.
// ComputedPrice is the engine's figure; Override is the manual price in
// effect when non-nil. Resolved is false when the pair has no price at all.
type ModelPlanPrice struct {
	ModelName     string
	PlanName      string
	Resolved      bool
	ComputedPrice float64
	Override      *float64
	Margin        float64
	TargetMargin  float64
}

// BuildSuggestions scans resolved part prices and rental model prices and
// emits the prioritized anomaly list. Output is sorted by tier ascending;
// entries within a tier keep input order (parts first, then models).
func BuildSuggestions(parts []PricePoint, models []ModelPlanPrice, cfg Config) []Suggestion {
	out := make([]Suggestion, 0)

	for _, p := range parts {
		policy := cfg.MarginFor(p.Category)
		if p.Price <= 0 {
			out = append(out, Suggestion{
				Tier:     TierMissingPrice,
				Severity: SeverityWarning,
				Code:     "PART_PRICE_MISSING",
				Message:  fmt.Sprintf("part %s has no resolved price", p.PartRef),
				PartRef:  p.PartRef,
				Category: p.Category,
			})
			continue
		}
		margin := Margin(p.Price, p.Cost)
		out = append(out, marginSuggestions(margin, policy, cfg, Suggestion{
			PartRef:  p.PartRef,
			Category: p.Category,
		})...)
	}

	if stale, code, msg := rateStatus(cfg); stale {
		out = append(out, Suggestion{
			Tier:     TierStaleRate,
			Severity: SeverityWarning,
			Code:     code,
			Message:  msg,
		})
	}

	for _, m := range models {
		base := Suggestion{ModelName: m.ModelName, PlanName: m.PlanName}
		if !m.Resolved {
			s := base
			s.Tier = TierMissingPrice
			s.Severity = SeverityWarning
			s.Code = "MODEL_PRICE_PENDING"
			s.Message = fmt.Sprintf("model %s has no price for plan %s", m.ModelName, m.PlanName)
			out = append(out, s)
			continue
		}

		target := m.TargetMargin
		if target <= 0 {
			target = cfg.TargetMargin
		}
		policy := MarginPolicy{MinMargin: cfg.MinMargin, TargetMargin: target}
		out = append(out, marginSuggestions(m.Margin, policy, cfg, base)...)

		if m.Override != nil && m.ComputedPrice > 0 {
			drift := math.Abs(*m.Override-m.ComputedPrice) / m.ComputedPrice
			if drift > cfg.OverrideDrift {
				s := base
				s.Tier = TierOverrideDrift
				s.Severity = SeverityReview
				s.Code = "MODEL_OVERRIDE_DRIFT"
				s.Message = fmt.Sprintf("manual price for %s/%s differs %.0f%% from computed",
					m.ModelName, m.PlanName, drift*100)
				s.Margin = m.Margin
				s.TargetMargin = target
				out = append(out, s)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

func marginSuggestions(margin float64, policy MarginPolicy, cfg Config, base Suggestion) []Suggestion {
	s := base
	s.Margin = margin
	s.TargetMargin = policy.TargetMargin

	subject := base.PartRef
	if subject == "" {
		subject = base.ModelName + "/" + base.PlanName
	}

	switch ClassifyMargin(margin, policy) {
	case MarginStatusCritical:
		s.Tier = TierCriticalMargin
		s.Severity = SeverityCritical
		s.Code = "MARGIN_CRITICAL"
		s.Message = fmt.Sprintf("%s margin %.1f%% is below the %.0f%% floor", subject, margin*100, policy.MinMargin*100)
		return []Suggestion{s}
	case MarginStatusLow:
		s.Tier = TierLowMargin
		s.Severity = SeverityWarning
		s.Code = "MARGIN_BELOW_TARGET"
		s.Message = fmt.Sprintf("%s margin %.1f%% is below the %.0f%% target", subject, margin*100, policy.TargetMargin*100)
		return []Suggestion{s}
	}

	if margin > cfg.ExcessMargin {
		s.Tier = TierExcessMargin
		s.Severity = SeverityInfo
		s.Code = "MARGIN_EXCESSIVE"
		s.Message = fmt.Sprintf("%s margin %.1f%% exceeds %.0f%%, price may be uncompetitive", subject, margin*100, cfg.ExcessMargin*100)
		return []Suggestion{s}
	}
	return nil
}

func rateStatus(cfg Config) (stale bool, code, msg string) {
	if cfg.ExchangeRateUpdatedAt == nil {
		return true, "RATE_NEVER_SET", "reference exchange rate was never set"
	}
	staleAfter := cfg.RateStaleAfter
	if staleAfter <= 0 {
		return false, "", ""
	}
	age := time.Since(cfg.ExchangeRateUpdatedAt.UTC())
	if age > staleAfter {
		return true, "RATE_STALE", fmt.Sprintf("reference exchange rate is %d days old", int(age.Hours()/24))
	}
	return false, "", ""
}
