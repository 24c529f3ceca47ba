package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// FreshnessCategory classifies a catch at listing time.
type FreshnessCategory string

const (
	Fresh     FreshnessCategory = "Fresh"
	Frozen    FreshnessCategory = "Frozen"
	Dried     FreshnessCategory = "Dried"
	Processed FreshnessCategory = "Processed"
	Wasted    FreshnessCategory = "Wasted"
)

// Valid reports whether the category is one of the five known values.
func (c FreshnessCategory) Valid() bool {
	switch c {
	case Fresh, Frozen, Dried, Processed, Wasted:
		return true
	}
	return false
}

// DefaultDecayThreshold is the age at which a Fresh catch starts decaying.
const DefaultDecayThreshold = 3 * time.Hour

var decayFactor = decimal.NewFromFloat(0.98)

// EffectivePrice returns the decay-adjusted sale price of a catch, rounded
// half-up to 2 decimal places, and whether the 2% markdown was applied.
//
// The markdown applies to any Wasted catch, and to a Fresh catch whose age
// (ref minus listedAt) has reached the threshold. Frozen, Dried and Processed
// catches never decay. Deterministic for fixed inputs.
func EffectivePrice(price decimal.Decimal, category FreshnessCategory, listedAt time.Time, threshold time.Duration, ref time.Time) (decimal.Decimal, bool) {
	if decays(category, listedAt, threshold, ref) {
		return price.Mul(decayFactor).Round(2), true
	}
	return price.Round(2), false
}

func decays(category FreshnessCategory, listedAt time.Time, threshold time.Duration, ref time.Time) bool {
	if category == Wasted {
		return true
	}
	return category == Fresh && ref.Sub(listedAt) >= threshold
}
