package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	threshold := 3 * time.Hour

	tests := []struct {
		name        string
		price       string
		category    FreshnessCategory
		age         time.Duration
		wantPrice   string
		wantDecayed bool
	}{
		{"fresh at exact threshold decays", "100", Fresh, 3 * time.Hour, "98.00", true},
		{"fresh past threshold decays", "100", Fresh, 7 * time.Hour, "98.00", true},
		{"fresh just under threshold keeps price", "100", Fresh, 3*time.Hour - time.Second, "100.00", false},
		{"fresh newly listed keeps price", "100", Fresh, time.Minute, "100.00", false},
		{"wasted decays immediately", "50", Wasted, 0, "49.00", true},
		{"wasted decays regardless of age", "50", Wasted, 48 * time.Hour, "49.00", true},
		{"frozen never decays", "75.50", Frozen, 100 * time.Hour, "75.50", false},
		{"dried never decays", "75.50", Dried, 100 * time.Hour, "75.50", false},
		{"processed never decays", "75.50", Processed, 100 * time.Hour, "75.50", false},
		{"decay rounds half up", "10.75", Wasted, 0, "10.54", true}, // 10.75 * 0.98 = 10.535
		{"decay rounds down below midpoint", "33.33", Wasted, 0, "32.66", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			got, decayed := EffectivePrice(price, tt.category, ref.Add(-tt.age), threshold, ref)

			assert.True(t, got.Equal(decimal.RequireFromString(tt.wantPrice)),
				"effective price = %s, want %s", got, tt.wantPrice)
			assert.Equal(t, tt.wantDecayed, decayed)
		})
	}
}

func TestEffectivePriceDeterministic(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	listed := ref.Add(-5 * time.Hour)
	price := decimal.RequireFromString("124.99")

	first, firstDecayed := EffectivePrice(price, Fresh, listed, 3*time.Hour, ref)
	second, secondDecayed := EffectivePrice(price, Fresh, listed, 3*time.Hour, ref)

	assert.True(t, first.Equal(second))
	assert.Equal(t, firstDecayed, secondDecayed)
}

func TestFreshnessCategoryValid(t *testing.T) {
	for _, c := range []FreshnessCategory{Fresh, Frozen, Dried, Processed, Wasted} {
		assert.True(t, c.Valid(), "%s should be valid", c)
	}
	assert.False(t, FreshnessCategory("Rotten").Valid())
	assert.False(t, FreshnessCategory("").Valid())
	assert.False(t, FreshnessCategory("fresh").Valid())
}
