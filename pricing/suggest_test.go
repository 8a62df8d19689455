package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestConfig() Config {
	now := time.Now().UTC()
	cfg := testConfig()
	cfg.ExchangeRate = 1000
	cfg.ExchangeRateUpdatedAt = &now
	cfg.RateStaleAfter = 7 * 24 * time.Hour
	return cfg
}

func TestBuildSuggestions(t *testing.T) {
	t.Run("CriticalBeforeInfo", func(t *testing.T) {
		parts := []PricePoint{
			{PartRef: "FLT-9", Category: "filters", Price: 1000, Cost: 400}, // 60% margin, info
			{PartRef: "BRK-1", Category: "brakes", Price: 1000, Cost: 920},  // 8% margin, critical
		}
		got := BuildSuggestions(parts, nil, suggestConfig())
		require.Len(t, got, 2)

		assert.Equal(t, TierCriticalMargin, got[0].Tier)
		assert.Equal(t, "BRK-1", got[0].PartRef)
		assert.Equal(t, SeverityCritical, got[0].Severity)

		assert.Equal(t, TierExcessMargin, got[1].Tier)
		assert.Equal(t, "FLT-9", got[1].PartRef)
		assert.Equal(t, SeverityInfo, got[1].Severity)
	})

	t.Run("MarginExactlyAtFloorIsNotCritical", func(t *testing.T) {
		parts := []PricePoint{{PartRef: "P", Category: "c", Price: 1000, Cost: 900}} // exactly 10%
		got := BuildSuggestions(parts, nil, suggestConfig())
		require.Len(t, got, 1)
		assert.Equal(t, TierLowMargin, got[0].Tier)
	})

	t.Run("HealthyMarginEmitsNothing", func(t *testing.T) {
		parts := []PricePoint{{PartRef: "P", Category: "c", Price: 1000, Cost: 700}} // 30%
		got := BuildSuggestions(parts, nil, suggestConfig())
		assert.Empty(t, got)
	})

	t.Run("RateNeverSet", func(t *testing.T) {
		cfg := suggestConfig()
		cfg.ExchangeRateUpdatedAt = nil
		got := BuildSuggestions(nil, nil, cfg)
		require.Len(t, got, 1)
		assert.Equal(t, TierStaleRate, got[0].Tier)
		assert.Equal(t, "RATE_NEVER_SET", got[0].Code)
	})

	t.Run("RateStaleBeyondWindow", func(t *testing.T) {
		cfg := suggestConfig()
		old := time.Now().UTC().Add(-10 * 24 * time.Hour)
		cfg.ExchangeRateUpdatedAt = &old
		got := BuildSuggestions(nil, nil, cfg)
		require.Len(t, got, 1)
		assert.Equal(t, "RATE_STALE", got[0].Code)
	})

	t.Run("PendingModelPrice", func(t *testing.T) {
		models := []ModelPlanPrice{{ModelName: "GX200", PlanName: "flex", Resolved: false}}
		got := BuildSuggestions(nil, models, suggestConfig())
		require.Len(t, got, 1)
		assert.Equal(t, TierMissingPrice, got[0].Tier)
		assert.Equal(t, "MODEL_PRICE_PENDING", got[0].Code)
		assert.Equal(t, "GX200", got[0].ModelName)
	})

	t.Run("OverrideDrift", func(t *testing.T) {
		override := 130000.0
		models := []ModelPlanPrice{{
			ModelName:     "GX200",
			PlanName:      "flex",
			Resolved:      true,
			ComputedPrice: 100000,
			Override:      &override,
			Margin:        0.30,
			TargetMargin:  0.25,
		}}
		got := BuildSuggestions(nil, models, suggestConfig())
		require.Len(t, got, 1)
		assert.Equal(t, TierOverrideDrift, got[0].Tier)
		assert.Equal(t, SeverityReview, got[0].Severity)
	})

	t.Run("SmallOverrideDriftTolerated", func(t *testing.T) {
		override := 110000.0
		models := []ModelPlanPrice{{
			ModelName:     "GX200",
			PlanName:      "flex",
			Resolved:      true,
			ComputedPrice: 100000,
			Override:      &override,
			Margin:        0.30,
			TargetMargin:  0.25,
		}}
		got := BuildSuggestions(nil, models, suggestConfig())
		assert.Empty(t, got)
	})

	t.Run("TiersSortedStably", func(t *testing.T) {
		parts := []PricePoint{
			{PartRef: "A", Category: "c", Price: 1000, Cost: 950}, // critical
			{PartRef: "B", Category: "c", Price: 1000, Cost: 930}, // critical
		}
		models := []ModelPlanPrice{
			{ModelName: "M1", PlanName: "p", Resolved: true, Margin: 0.05, TargetMargin: 0.25}, // critical
		}
		got := BuildSuggestions(parts, models, suggestConfig())
		require.Len(t, got, 3)
		// input order preserved within the tier: parts first, then models
		assert.Equal(t, "A", got[0].PartRef)
		assert.Equal(t, "B", got[1].PartRef)
		assert.Equal(t, "M1", got[2].ModelName)
	})

	t.Run("MissingPartPrice", func(t *testing.T) {
		parts := []PricePoint{{PartRef: "NEW-1", Category: "c", Price: 0, Cost: 100}}
		got := BuildSuggestions(parts, nil, suggestConfig())
		require.Len(t, got, 1)
		assert.Equal(t, "PART_PRICE_MISSING", got[0].Code)
	})
}
