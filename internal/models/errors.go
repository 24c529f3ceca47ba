package models

import "errors"

// Settlement and payout domain errors. Handlers map these to machine-readable
// error kinds; everything else surfaces as a storage failure.
var (
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrMissingField        = errors.New("a required field is missing")
	ErrInsufficientBalance = errors.New("amount exceeds available balance")
	ErrInvalidStatus       = errors.New("status must be PENDING, APPROVED, PAID or REJECTED")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrCatchNotFound       = errors.New("catch not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidFreshness    = errors.New("freshness category must be Fresh, Frozen, Dried, Processed or Wasted")
)
