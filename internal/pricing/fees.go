package pricing

import "github.com/shopspring/decimal"

var (
	buyerFeeRate  = decimal.NewFromFloat(0.10)
	fisherFeeRate = decimal.NewFromFloat(0.05)
)

// FeeSplit is the platform's commission breakdown of one effective sale price.
// The buyer fee is charged on top of the price at checkout and is never
// subtracted from the fisher's take.
type FeeSplit struct {
	BuyerFee    decimal.Decimal
	FisherFee   decimal.Decimal
	NetToFisher decimal.Decimal
}

// SplitFees derives the platform commissions from an effective price.
// Each value is rounded half-up to 2 decimal places independently so that a
// fisher-facing report and a platform-facing income report built from the
// same sales never drift apart.
func SplitFees(effective decimal.Decimal) FeeSplit {
	buyer := effective.Mul(buyerFeeRate).Round(2)
	fisher := effective.Mul(fisherFeeRate).Round(2)
	return FeeSplit{
		BuyerFee:    buyer,
		FisherFee:   fisher,
		NetToFisher: effective.Sub(fisher).Round(2),
	}
}
