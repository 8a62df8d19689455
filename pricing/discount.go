package pricing

import "sort"

// DiscountKind is how a rule's magnitude is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DiscountCondition is the single condition type a rule is keyed by.
type DiscountCondition string

const (
	ConditionPlanTier    DiscountCondition = "plan_tier"
	ConditionTenure      DiscountCondition = "tenure_months"
	ConditionMinQuantity DiscountCondition = "min_quantity"
)

// DiscountRule is one stackable discount (or, with a negative magnitude,
// surcharge). Percentage values are fractions: 0.10 means 10% off.
type DiscountRule struct {
	ID   uint
	Name string

	Condition DiscountCondition
	// PlanTiers lists the rental plan tiers the rule applies to
	// (ConditionPlanTier only).
	PlanTiers []string
	// MinTenureMonths is the customer tenure threshold (ConditionTenure).
	MinTenureMonths int
	// MinQuantity is the order quantity threshold (ConditionMinQuantity).
	MinQuantity int

	Kind        DiscountKind
	Value       float64
	Accumulable bool
	Priority    int
}

// Matches reports whether the rule's condition holds for the context.
func (r DiscountRule) Matches(ctx CustomerContext) bool {
	switch r.Condition {
	case ConditionPlanTier:
		for _, tier := range r.PlanTiers {
			if tier == ctx.PlanTier {
				return true
			}
		}
		return false
	case ConditionTenure:
		return ctx.TenureMonths >= r.MinTenureMonths
	case ConditionMinQuantity:
		return ctx.Quantity >= r.MinQuantity
	}
	return false
}

// CustomerContext is the segment information discounts dispatch on.
type CustomerContext struct {
	PlanTier     string
	TenureMonths int
	Quantity     int
}

// AppliedDiscount traces one applied rule: the price it saw, the amount it
// took off and the price it produced.
type AppliedDiscount struct {
	RuleID      uint
	RuleName    string
	Kind        DiscountKind
	Value       float64
	Amount      float64
	PriceBefore float64
	PriceAfter  float64
}

// StackResult is the outcome of discount stacking for one base price.
type StackResult struct {
	BasePrice          float64
	FinalPrice         float64
	Applied            []AppliedDiscount
	// CumulativeDiscount is the effective total reduction relative to the
	// base price, as a fraction.
	CumulativeDiscount float64
}

// StackDiscounts applies the matching rules to basePrice.
//
// At most one non-accumulable rule applies, chosen by highest priority
// (lowest ID on ties). All matching accumulable rules then apply in priority
// order, each against the already-discounted running price: stacking 5% and
// 10% yields base × 0.95 × 0.90, never base × 0.85. The price list's flat
// discount, when non-zero, is applied last. Prices never go below zero.
func StackDiscounts(basePrice float64, rules []DiscountRule, ctx CustomerContext, listDiscount float64) (*StackResult, error) {
	if basePrice < 0 {
		return nil, newValidationError("base_price", ErrNegativeAmount)
	}

	var primary *DiscountRule
	accumulable := make([]DiscountRule, 0, len(rules))
	for i := range rules {
		r := rules[i]
		if !r.Matches(ctx) {
			continue
		}
		if r.Accumulable {
			accumulable = append(accumulable, r)
			continue
		}
		if primary == nil || r.Priority > primary.Priority ||
			(r.Priority == primary.Priority && r.ID < primary.ID) {
			primary = &rules[i]
		}
	}

	sort.Slice(accumulable, func(i, j int) bool {
		if accumulable[i].Priority != accumulable[j].Priority {
			return accumulable[i].Priority > accumulable[j].Priority
		}
		return accumulable[i].ID < accumulable[j].ID
	})

	res := &StackResult{BasePrice: basePrice, FinalPrice: basePrice}

	if primary != nil {
		applyRule(res, *primary)
	}
	for _, r := range accumulable {
		applyRule(res, r)
	}

	if listDiscount != 0 {
		before := res.FinalPrice
		after := clampPrice(before * (1 - listDiscount))
		res.Applied = append(res.Applied, AppliedDiscount{
			RuleName:    "price_list",
			Kind:        DiscountPercentage,
			Value:       listDiscount,
			Amount:      before - after,
			PriceBefore: before,
			PriceAfter:  after,
		})
		res.FinalPrice = after
	}

	if basePrice > 0 {
		res.CumulativeDiscount = (basePrice - res.FinalPrice) / basePrice
	}
	return res, nil
}

func applyRule(res *StackResult, r DiscountRule) {
	before := res.FinalPrice
	var after float64
	switch r.Kind {
	case DiscountFixed:
		after = clampPrice(before - r.Value)
	default:
		after = clampPrice(before * (1 - r.Value))
	}
	res.Applied = append(res.Applied, AppliedDiscount{
		RuleID:      r.ID,
		RuleName:    r.Name,
		Kind:        r.Kind,
		Value:       r.Value,
		Amount:      before - after,
		PriceBefore: before,
		PriceAfter:  after,
	})
	res.FinalPrice = after
}

func clampPrice(p float64) float64 {
	if p < 0 {
		return 0
	}
	return p
}
