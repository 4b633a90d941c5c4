package services

import (
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// ApplySuccessfulLogin shifts the login tracking fields of a and stamps the
// new login. It returns the failure count the account had before this login,
// which the caller keeps in the session.
//
// On a first login the previous values equal the new ones.
func ApplySuccessfulLogin(a *models.Account, now time.Time, ip string) int {
	previousFailures := a.FailedLoginAttempts

	a.PreviousLoginTime = a.CurrentLoginTime
	if a.PreviousLoginTime.IsZero() {
		a.PreviousLoginTime = now
	}
	a.PreviousLoginIP = a.CurrentLoginIP
	if a.PreviousLoginIP == "" {
		a.PreviousLoginIP = ip
	}

	a.CurrentLoginTime = now
	a.CurrentLoginIP = ip

	return previousFailures
}
