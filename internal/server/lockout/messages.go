package lockout

import (
	"fmt"
	"time"
)

// User-facing texts. MessageGeneric is shared by "no such account" and
// "wrong password" so the two cannot be told apart.
const (
	MessageMissingInput = "Please enter your email/username and password"
	MessageGeneric      = "Invalid user or password"
	MessageWarning      = "Invalid user or password. Your account will be locked soon."
	MessageLocked       = "The account is temporarily locked"
)

// Message returns the text for tier t.
func (p Policy) Message(t Tier) string {
	switch t {
	case TierWarning:
		return MessageWarning
	case TierLockNotice:
		return "Invalid user or password. Your account is now locked for " + HumanDuration(p.LockDuration)
	case TierLocked:
		return MessageLocked
	default:
		return MessageGeneric
	}
}

// HumanDuration renders whole hours, minutes or seconds in words
// ("20 minutes", "1 hour") and falls back to time.Duration's format.
func HumanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return plural(int64(d/time.Second), "second")
	default:
		return d.String()
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
