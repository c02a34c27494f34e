package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the economy core. Handlers and the bot map
// these to responses with errors.Is; none of them is retried internally.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnknownAccount      = errors.New("account not found")
	ErrUnknownInviter      = errors.New("inviter not found")
	ErrSelfReferral        = errors.New("cannot use your own referral code")
	ErrAlreadyReferred     = errors.New("account already has a referrer")
	ErrBonusAlreadyClaimed = errors.New("daily bonus already claimed")
	ErrBelowMinimum        = errors.New("amount below the configured minimum")
	ErrNotPending          = errors.New("withdrawal request is not pending")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAccountBlocked      = errors.New("account is blocked")
	ErrInvalidDetails      = errors.New("invalid payout details")
	ErrUnknownPlan         = errors.New("unknown investment plan")

	// ErrStorageUnavailable wraps driver-level failures: fatal to the current
	// operation, never to the process.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
