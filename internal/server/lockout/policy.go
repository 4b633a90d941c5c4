// Package lockout implements the per-account failed-login policy: when an
// account counts as locked, how a failed or successful verification changes
// its counters, and which message tier the caller shows.
//
// Everything here is pure. The caller owns the clock and the persistence of
// the mutated account.
package lockout

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

const (
	DefaultWarningThreshold = 3
	DefaultLockThreshold    = 5
	DefaultLockDuration     = 20 * time.Minute
)

var ErrInvalidPolicy = errors.New("invalid lockout policy")

// State is the lock state of an account as observed at the start of an attempt.
type State int

const (
	Unlocked State = iota
	Locked
	// LockExpired allows a verification attempt like Unlocked, but the lock
	// flag is still set and gets cleared on the next successful login.
	LockExpired
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case LockExpired:
		return "lock_expired"
	default:
		return "unlocked"
	}
}

// Tier selects the user-facing rejection message.
type Tier int

const (
	TierGeneric Tier = iota
	TierWarning
	// TierLockNotice is returned by the failure that triggers the lock.
	TierLockNotice
	// TierLocked is used for attempts made inside the lock window.
	TierLocked
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "warning"
	case TierLockNotice:
		return "lock_notice"
	case TierLocked:
		return "locked"
	default:
		return "generic"
	}
}

// Policy holds the thresholds. WarningThreshold must be below LockThreshold.
type Policy struct {
	WarningThreshold int
	LockThreshold    int
	LockDuration     time.Duration
}

// DefaultPolicy returns the 3 / 5 / 20 minutes policy.
func DefaultPolicy() Policy {
	return Policy{
		WarningThreshold: DefaultWarningThreshold,
		LockThreshold:    DefaultLockThreshold,
		LockDuration:     DefaultLockDuration,
	}
}

// NewPolicy builds a validated Policy.
func NewPolicy(warning, lock int, duration time.Duration) (Policy, error) {
	p := Policy{WarningThreshold: warning, LockThreshold: lock, LockDuration: duration}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.WarningThreshold <= 0 || p.LockThreshold <= 0 {
		return fmt.Errorf("%w: thresholds must be positive (warning=%d, lock=%d)", ErrInvalidPolicy, p.WarningThreshold, p.LockThreshold)
	}
	if p.WarningThreshold >= p.LockThreshold {
		return fmt.Errorf("%w: warning threshold %d must be below lock threshold %d", ErrInvalidPolicy, p.WarningThreshold, p.LockThreshold)
	}
	if p.LockDuration <= 0 {
		return fmt.Errorf("%w: lock duration must be positive, got %s", ErrInvalidPolicy, p.LockDuration)
	}
	return nil
}

// State reports the lock state of a at time now. Expiry is derived, never swept.
func (p Policy) State(a *models.Account, now time.Time) State {
	if !a.AccountLocked {
		return Unlocked
	}
	if now.Before(a.AccountLockedUntil) {
		return Locked
	}
	return LockExpired
}

// OnFailure records one failed verification on a and returns the message tier.
// Crossing the lock threshold wins over the warning threshold.
func (p Policy) OnFailure(a *models.Account, now time.Time) Tier {
	a.FailedLoginAttempts++

	switch {
	case a.FailedLoginAttempts >= p.LockThreshold:
		a.AccountLocked = true
		a.AccountLockedUntil = now.Add(p.LockDuration)
		return TierLockNotice
	case a.FailedLoginAttempts >= p.WarningThreshold:
		return TierWarning
	default:
		return TierGeneric
	}
}

// OnSuccess clears the failure counter and any (expired) lock.
func (p Policy) OnSuccess(a *models.Account) {
	a.FailedLoginAttempts = 0
	a.AccountLocked = false
	a.AccountLockedUntil = time.Time{}
}

// Unlock is the administrative reset. It has the same effect as a successful
// login on the lock fields but leaves login tracking untouched.
func (p Policy) Unlock(a *models.Account) {
	p.OnSuccess(a)
}
