package models

import "time"

// SettlementEvent is one row of the append-only settlement log, written
// exactly once when an order's payment completes. Amounts are fixed at
// completion time; later edits to the catch never touch a settled event.
type SettlementEvent struct {
	OrderID        string    `bson:"order_id" json:"order_id"`
	FisherID       string    `bson:"fisher_id" json:"fisher_id"`
	CatchID        string    `bson:"catch_id" json:"catch_id"`
	GrossEffective float64   `bson:"gross_effective" json:"gross_effective"`
	BuyerFee       float64   `bson:"buyer_fee" json:"buyer_fee"`
	FisherFee      float64   `bson:"fisher_fee" json:"fisher_fee"`
	NetToFisher    float64   `bson:"net_to_fisher" json:"net_to_fisher"`
	DecayApplied   bool      `bson:"decay_applied" json:"decay_applied"`
	OccurredAt     time.Time `bson:"occurred_at" json:"occurred_at"`
}

// LedgerSummary is the per-fisher aggregation of settlement events.
type LedgerSummary struct {
	Gross float64 `json:"gross"`
	Fees  float64 `json:"fees"`
	Net   float64 `json:"net"`
	Count int     `json:"count"`
}

// Balance is a fisher's earnings report. Withdrawn sums lifetime APPROVED and
// PAID payouts regardless of the report window; Available is Net minus
// Withdrawn and may be negative when the window is narrower than lifetime.
type Balance struct {
	Gross     float64 `json:"gross"`
	Fees      float64 `json:"fees"`
	Net       float64 `json:"net"`
	Withdrawn float64 `json:"withdrawn"`
	Available float64 `json:"available"`
}
