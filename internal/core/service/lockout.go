package service

import (
	"time"

	"github.com/rollertrack/access-api/internal/core/domain"
)

const (
	// DefaultMaxAttempts is the failed-attempt threshold that locks an account.
	DefaultMaxAttempts = 3
	// DefaultLockDuration is how long a triggered lock lasts.
	DefaultLockDuration = 5 * time.Minute
)

// LockoutPolicy is the pure state-transition function over an account's
// lockout fields. It mutates only the account passed in; persistence is the
// caller's responsibility. Lock expiry is purely a function of the stored
// timestamp versus the supplied clock — no background sweep exists.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// NewLockoutPolicy builds a policy, substituting defaults for non-positive
// parameters.
func NewLockoutPolicy(maxAttempts int, lockDuration time.Duration) LockoutPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return LockoutPolicy{MaxAttempts: maxAttempts, LockDuration: lockDuration}
}

// Locked reports whether the account is under an unexpired lock at now, and
// if so, how long remains.
func (p LockoutPolicy) Locked(account *domain.Account, now time.Time) (bool, time.Duration) {
	if account.LockedUntil == nil || !now.Before(*account.LockedUntil) {
		return false, 0
	}
	return true, account.LockedUntil.Sub(now)
}

// ClearExpired transitions Locked(until<=now) to Unlocked(0) in place.
// It reports whether an expired lock was cleared so the caller knows the
// record carries unpersisted state.
func (p LockoutPolicy) ClearExpired(account *domain.Account, now time.Time) bool {
	if account.LockedUntil == nil || now.Before(*account.LockedUntil) {
		return false
	}
	account.LockedUntil = nil
	account.FailedAttempts = 0
	return true
}

// RecordFailure applies one failed attempt. Reaching the threshold locks the
// account for LockDuration and yields a locked_out outcome; otherwise the
// counter increments and the outcome reports the attempts remaining.
func (p LockoutPolicy) RecordFailure(account *domain.Account, now time.Time) domain.LoginOutcome {
	account.FailedAttempts++
	if account.FailedAttempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		account.LockedUntil = &until
		return domain.LockedOutOutcome(p.LockDuration)
	}
	return domain.InvalidCredentialOutcome(p.MaxAttempts - account.FailedAttempts)
}

// RecordSuccess resets the failure counter and clears any lock.
func (p LockoutPolicy) RecordSuccess(account *domain.Account) {
	account.FailedAttempts = 0
	account.LockedUntil = nil
}
