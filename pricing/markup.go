package pricing

import (
	"math"
	"sort"
)

// RoundingPolicy controls how a candidate retail price is rounded.
type RoundingPolicy string

const (
	RoundingNone      RoundingPolicy = "none"
	RoundingNearest10 RoundingPolicy = "nearest_10"
	RoundingNearest50 RoundingPolicy = "nearest_50"
	// RoundingEnding99 rounds down to the nearest 100 and adds 99, producing
	// charm prices like 1999.
	RoundingEnding99 RoundingPolicy = "ending_99"
)

// ValidRoundingPolicy reports whether p is one of the known policies.
func ValidRoundingPolicy(p RoundingPolicy) bool {
	switch p {
	case RoundingNone, RoundingNearest10, RoundingNearest50, RoundingEnding99:
		return true
	}
	return false
}

// ApplyRounding applies the policy to price. Applying a policy to an already
// conforming price returns the same price.
func ApplyRounding(price float64, policy RoundingPolicy) (float64, error) {
	switch policy {
	case RoundingNone:
		return price, nil
	case RoundingNearest10:
		return math.Round(price/10) * 10, nil
	case RoundingNearest50:
		return math.Round(price/50) * 50, nil
	case RoundingEnding99:
		if price <= 0 {
			return 0, nil
		}
		// A price already ending in 99 maps onto itself.
		return math.Floor(price/100)*100 + 99, nil
	default:
		return 0, newValidationError("rounding_policy", ErrUnknownRoundingPolicy)
	}
}

// MarkupRule is a banded multiplier rule. A nil Category or OEM matches
// everything; a nil BandUpper means the band is unbounded above. The band is
// half-open: cost in [BandLower, BandUpper).
type MarkupRule struct {
	ID        uint
	Name      string
	Category  *string
	BandLower float64
	BandUpper *float64
	OEM       *bool

	Multiplier float64
	Rounding   RoundingPolicy
	Priority   int
}

func (r MarkupRule) matches(attrs ItemAttributes) bool {
	if r.Category != nil && *r.Category != attrs.Category {
		return false
	}
	if attrs.Cost < r.BandLower {
		return false
	}
	if r.BandUpper != nil && attrs.Cost >= *r.BandUpper {
		return false
	}
	if r.OEM != nil && *r.OEM != attrs.OEM {
		return false
	}
	return true
}

// ItemAttributes are the part attributes markup resolution dispatches on.
// Cost is the weighted-average cost in local currency.
type ItemAttributes struct {
	Category     string
	Cost         float64
	OEM          bool
	CurrentPrice float64
}

// MarkupResult is the proposed price for one part.
type MarkupResult struct {
	Price            float64
	// RuleID and RuleName identify the matched rule; RuleID is nil when the
	// price came from a category or global default multiplier.
	RuleID           *uint
	RuleName         string
	Multiplier       float64
	Margin           float64
	// DeltaFromCurrent is the relative change versus CurrentPrice, 0 when
	// the part has no current price.
	DeltaFromCurrent float64
}

// ResolveMarkup selects the best matching rule for the item and produces the
// rounded candidate price.
//
// Selection is deterministic: rules with an explicit category beat
// category-agnostic ones, then highest priority wins, then the lowest rule ID
// breaks remaining ties. Definition order never matters. With no match the
// category default multiplier applies, then the global default.
func ResolveMarkup(attrs ItemAttributes, rules []MarkupRule, cfg Config) (*MarkupResult, error) {
	if attrs.Cost < 0 {
		return nil, newValidationError("cost", ErrNegativeAmount)
	}

	best := bestMatch(attrs, rules)

	res := &MarkupResult{}
	rounding := RoundingNone
	if best != nil {
		id := best.ID
		res.RuleID = &id
		res.RuleName = best.Name
		res.Multiplier = best.Multiplier
		rounding = best.Rounding
	} else {
		res.Multiplier = cfg.MultiplierFor(attrs.Category)
	}

	price, err := ApplyRounding(attrs.Cost*res.Multiplier, rounding)
	if err != nil {
		return nil, err
	}
	res.Price = price
	res.Margin = Margin(price, attrs.Cost)
	if attrs.CurrentPrice > 0 {
		res.DeltaFromCurrent = (price - attrs.CurrentPrice) / attrs.CurrentPrice
	}
	return res, nil
}

func bestMatch(attrs ItemAttributes, rules []MarkupRule) *MarkupRule {
	matched := make([]MarkupRule, 0, len(rules))
	for _, r := range rules {
		if r.matches(attrs) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		aSpecific, bSpecific := a.Category != nil, b.Category != nil
		if aSpecific != bSpecific {
			return aSpecific
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
	return &matched[0]
}
