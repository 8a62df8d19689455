package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
func f64p(f float64) *float64 {
	return &f
}

func TestApplyRounding(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		policy RoundingPolicy
		want   float64
	}{
		{"none keeps price", 1234.56, RoundingNone, 1234.56},
		{"nearest 10 up", 1236, RoundingNearest10, 1240},
		{"nearest 10 down", 1234, RoundingNearest10, 1230},
		{"nearest 50", 1274, RoundingNearest50, 1250},
		{"nearest 50 up", 1275, RoundingNearest50, 1300},
		{"99 ending", 2000, RoundingEnding99, 1999},
		{"99 ending mid band", 2050, RoundingEnding99, 2099},
		{"99 ending zero", 0, RoundingEnding99, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyRounding(tt.price, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Idempotent", func(t *testing.T) {
		for _, policy := range []RoundingPolicy{RoundingNone, RoundingNearest10, RoundingNearest50, RoundingEnding99} {
			for _, price := range []float64{0, 49, 1234.56, 1999, 2350, 87650} {
				once, err := ApplyRounding(price, policy)
				require.NoError(t, err)
				twice, err := ApplyRounding(once, policy)
				require.NoError(t, err)
				assert.Equal(t, once, twice, "policy %s price %v", policy, price)
			}
		}
	})

	t.Run("UnknownPolicy", func(t *testing.T) {
		_, err := ApplyRounding(100, "banker")
		assert.ErrorIs(t, err, ErrUnknownRoundingPolicy)
	})
}

func TestResolveMarkup(t *testing.T) {
	t.Run("GlobalDefaultWithCharmRounding", func(t *testing.T) {
		// cost 1000, no rules, default 2.0, 99-ending → 1999
		res, err := ResolveMarkup(
			ItemAttributes{Category: "electrics", Cost: 1000},
			nil,
			Config{DefaultMultiplier: 2.0},
		)
		require.NoError(t, err)
		assert.Equal(t, 2000.0, res.Price) // default path carries no rounding policy
		assert.Nil(t, res.RuleID)

		rounded, err := ApplyRounding(res.Price, RoundingEnding99)
		require.NoError(t, err)
		assert.Equal(t, 1999.0, rounded)
	})

	t.Run("RuleRoundingApplied", func(t *testing.T) {
		rules := []MarkupRule{
			{ID: 1, Name: "general", BandLower: 0, Multiplier: 2.0, Rounding: RoundingEnding99, Priority: 1},
		}
		res, err := ResolveMarkup(ItemAttributes{Category: "electrics", Cost: 1000}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, 1999.0, res.Price)
		require.NotNil(t, res.RuleID)
		assert.Equal(t, uint(1), *res.RuleID)
	})

	t.Run("CategorySpecificBeatsGeneric", func(t *testing.T) {
		rules := []MarkupRule{
			{ID: 1, Name: "generic high priority", BandLower: 0, Multiplier: 3.0, Rounding: RoundingNone, Priority: 100},
			{ID: 2, Name: "brakes", Category: strp("brakes"), BandLower: 0, Multiplier: 1.8, Rounding: RoundingNone, Priority: 1},
		}
		res, err := ResolveMarkup(ItemAttributes{Category: "brakes", Cost: 100}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, "brakes", res.RuleName)
		assert.InDelta(t, 180.0, res.Price, 1e-9)
	})

	t.Run("PriorityThenLowestID", func(t *testing.T) {
		rules := []MarkupRule{
			{ID: 7, Name: "late", BandLower: 0, Multiplier: 2.5, Rounding: RoundingNone, Priority: 5},
			{ID: 3, Name: "early", BandLower: 0, Multiplier: 2.2, Rounding: RoundingNone, Priority: 5},
			{ID: 9, Name: "weak", BandLower: 0, Multiplier: 4.0, Rounding: RoundingNone, Priority: 1},
		}
		res, err := ResolveMarkup(ItemAttributes{Category: "brakes", Cost: 100}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, "early", res.RuleName)
	})

	t.Run("BandIsHalfOpen", func(t *testing.T) {
		rules := []MarkupRule{
			{ID: 1, Name: "low band", BandLower: 0, BandUpper: f64p(500), Multiplier: 3.0, Rounding: RoundingNone, Priority: 1},
			{ID: 2, Name: "high band", BandLower: 500, Multiplier: 2.0, Rounding: RoundingNone, Priority: 1},
		}
		res, err := ResolveMarkup(ItemAttributes{Cost: 500}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, "high band", res.RuleName) // upper bound excluded, lower included

		res, err = ResolveMarkup(ItemAttributes{Cost: 499.99}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, "low band", res.RuleName)
	})

	t.Run("OEMFilter", func(t *testing.T) {
		rules := []MarkupRule{
			{ID: 1, Name: "oem", OEM: boolp(true), BandLower: 0, Multiplier: 1.6, Rounding: RoundingNone, Priority: 1},
		}
		res, err := ResolveMarkup(ItemAttributes{Cost: 100, OEM: false}, rules, testConfig())
		require.NoError(t, err)
		assert.Nil(t, res.RuleID) // filtered out, fell back to default
		assert.InDelta(t, 200.0, res.Price, 1e-9)

		res, err = ResolveMarkup(ItemAttributes{Cost: 100, OEM: true}, rules, testConfig())
		require.NoError(t, err)
		assert.Equal(t, "oem", res.RuleName)
	})

	t.Run("CategoryDefaultBeforeGlobal", func(t *testing.T) {
		cfg := testConfig()
		cfg.CategoryMultipliers = map[string]float64{"tyres": 1.5}
		res, err := ResolveMarkup(ItemAttributes{Category: "tyres", Cost: 100}, nil, cfg)
		require.NoError(t, err)
		assert.InDelta(t, 150.0, res.Price, 1e-9)
	})

	t.Run("DeltaAgainstCurrentPrice", func(t *testing.T) {
		res, err := ResolveMarkup(ItemAttributes{Cost: 100, CurrentPrice: 160}, nil, testConfig())
		require.NoError(t, err)
		assert.InDelta(t, 0.25, res.DeltaFromCurrent, 1e-9) // 200 vs 160
		assert.InDelta(t, 0.5, res.Margin, 1e-9)
	})

	t.Run("NegativeCostRejected", func(t *testing.T) {
		_, err := ResolveMarkup(ItemAttributes{Cost: -1}, nil, testConfig())
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}
