package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutStatus tracks where a payout request is in its approval workflow.
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutApproved PayoutStatus = "APPROVED"
	PayoutPaid     PayoutStatus = "PAID"
	PayoutRejected PayoutStatus = "REJECTED"
)

// ParsePayoutStatus validates an administrator-supplied target status.
func ParsePayoutStatus(s string) (PayoutStatus, error) {
	switch PayoutStatus(s) {
	case PayoutPending, PayoutApproved, PayoutPaid, PayoutRejected:
		return PayoutStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// transitions is the full edge set of the payout workflow. PAID and REJECTED
// are terminal, and nothing moves back to PENDING.
var transitions = map[PayoutStatus][]PayoutStatus{
	PayoutPending:  {PayoutApproved, PayoutRejected},
	PayoutApproved: {PayoutPaid},
	PayoutPaid:     {},
	PayoutRejected: {},
}

// CanTransition reports whether the workflow allows moving from s to target.
func (s PayoutStatus) CanTransition(target PayoutStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves this status.
func (s PayoutStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Payout is a fisher-initiated withdrawal request against available balance.
// Created by a fisher with status PENDING; mutated only by an administrator.
type Payout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FisherID    string             `bson:"fisher_id" json:"fisher_id"`
	Amount      float64            `bson:"amount" json:"amount"` // ETB, > 0
	Method      string             `bson:"method" json:"method"`
	Account     string             `bson:"account" json:"account"`
	Status      PayoutStatus       `bson:"status" json:"status"`
	Notes       string             `bson:"notes" json:"notes"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	ProcessedAt *time.Time         `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}
