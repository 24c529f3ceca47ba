package models

import (
	"time"
)

const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Order is a buyer's purchase of a single catch. ChargeAmount is what the
// buyer pays at checkout: the effective price at order time plus the buyer
// fee. PaymentStatus moves PENDING -> COMPLETED or PENDING -> FAILED through
// the gateway webhook/verify path, never twice.
type Order struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	BuyerID       string     `bson:"buyer_id" json:"buyer_id"`
	CatchID       string     `bson:"catch_id" json:"catch_id"`
	FisherID      string     `bson:"fisher_id" json:"fisher_id"`
	ChargeAmount  float64    `bson:"charge_amount" json:"charge_amount"`
	TxRef         string     `bson:"tx_ref" json:"tx_ref"` // gateway idempotency key
	PaymentStatus string     `bson:"payment_status" json:"payment_status"`
	CheckoutURL   string     `bson:"checkout_url" json:"checkout_url"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
