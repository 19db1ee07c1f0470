package services

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded    = errors.New("daily click quota exceeded")
	ErrAccountNotFound  = errors.New("account not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrAlreadyCompleted = errors.New("activity already completed")
	ErrConfiguration    = errors.New("invalid reward configuration")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidCounter   = errors.New("invalid counter value")
	ErrReferralExists   = errors.New("referred user already has a referrer")
	ErrInvalidReferral  = errors.New("invalid referral")
)

// unavailable marks an infrastructure failure as transient for callers.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
