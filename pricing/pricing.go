// Package pricing implements the costing and pricing calculations of the
// back office: landed-cost allocation for imported shipments, weighted-average
// inventory costing, markup rule resolution, discount stacking, rental plan
// quoting and margin anomaly detection.
//
// Every function in this package is pure arithmetic over its inputs. Rule sets
// and configuration are always passed in explicitly; there is no package-level
// state and no I/O. Persistence and transport live in business_flow and app.
package pricing

import "time"

// MarginStatus classifies a realized margin against the configured thresholds.
type MarginStatus string

const (
	MarginStatusOK       MarginStatus = "ok"
	MarginStatusLow      MarginStatus = "low"
	MarginStatusCritical MarginStatus = "critical"
)

// MarginPolicy holds the per-category thresholds used to classify margins.
// Values are fractions: 0.10 means 10%.
type MarginPolicy struct {
	MinMargin    float64
	TargetMargin float64
}

// Config is the ambient pricing configuration, passed explicitly into every
// calculation entry point so the formulas stay pure and testable.
type Config struct {
	// DefaultMultiplier is the global markup fallback when no rule and no
	// category default matches. Business default is 2.0.
	DefaultMultiplier   float64
	// CategoryMultipliers maps a part category to its default multiplier,
	// consulted before DefaultMultiplier.
	CategoryMultipliers map[string]float64

	// MinMargin is the critical threshold (fraction). Margins below it are
	// critical; a margin exactly at it is not.
	MinMargin       float64
	// TargetMargin is the default target used when a category has no policy
	// of its own and for rental pricing.
	TargetMargin    float64
	// ExcessMargin flags possible over-pricing. Business default is 0.50.
	ExcessMargin    float64
	// CategoryMargins overrides MinMargin/TargetMargin per category.
	CategoryMargins map[string]MarginPolicy

	// OverrideDrift is the relative difference between a manual override and
	// the computed price beyond which a review suggestion is raised (0.20).
	OverrideDrift float64

	// ExchangeRate is the reference foreign→local rate with the time it was
	// last refreshed. A nil UpdatedAt means the rate was never set.
	ExchangeRate          float64
	ExchangeRateUpdatedAt *time.Time
	// RateStaleAfter is how old the reference rate may get before the
	// suggestion engine raises a rate alert. Business default is 7 days.
	RateStaleAfter        time.Duration
}

// MarginFor returns the effective policy for a category.
func (c Config) MarginFor(category string) MarginPolicy {
	if p, ok := c.CategoryMargins[category]; ok {
		return p
	}
	return MarginPolicy{MinMargin: c.MinMargin, TargetMargin: c.TargetMargin}
}

// MultiplierFor returns the fallback multiplier for a category.
func (c Config) MultiplierFor(category string) float64 {
	if m, ok := c.CategoryMultipliers[category]; ok && m > 0 {
		return m
	}
	if c.DefaultMultiplier > 0 {
		return c.DefaultMultiplier
	}
	return 2.0
}

// Margin computes (price − cost) / price as a fraction. A zero or negative
// price is a documented degenerate case and yields 0 rather than dividing.
func Margin(price, cost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - cost) / price
}

// ClassifyMargin maps a margin fraction onto the three-state alert scale.
// Boundaries are inclusive on the safe side: exactly MinMargin is low, not
// critical; exactly TargetMargin is ok.
func ClassifyMargin(margin float64, policy MarginPolicy) MarginStatus {
	switch {
	case margin < policy.MinMargin:
		return MarginStatusCritical
	case margin < policy.TargetMargin:
		return MarginStatusLow
	default:
		return MarginStatusOK
	}
}
