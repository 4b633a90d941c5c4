// Package models defines server-side data models persisted by the account
// store backends.
package models

import "time"

// LookupField names the indexed column an account is fetched by.
type LookupField string

const (
	FieldUsername LookupField = "username"
	FieldEmail    LookupField = "email"
)

// Account is the persisted user record the login engine reads and mutates.
// A fetched Account is a working copy valid for one login attempt only.
type Account struct {
	ID            string `db:"id" json:"id"`
	Username      string `db:"username" json:"username"`
	Email         string `db:"email" json:"email"`
	EmailVerified bool   `db:"email_verified" json:"email_verified"`

	// CredentialHash is an opaque one-way hash; only the verifier looks at it.
	CredentialHash []byte `db:"credential_hash" json:"credential_hash"`

	FailedLoginAttempts int       `db:"failed_login_attempts" json:"failed_login_attempts"`
	AccountLocked       bool      `db:"account_locked" json:"account_locked"`
	AccountLockedUntil  time.Time `db:"account_locked_until" json:"account_locked_until"`

	CurrentLoginTime  time.Time `db:"current_login_time" json:"current_login_time"`
	PreviousLoginTime time.Time `db:"previous_login_time" json:"previous_login_time"`
	CurrentLoginIP    string    `db:"current_login_ip" json:"current_login_ip"`
	PreviousLoginIP   string    `db:"previous_login_ip" json:"previous_login_ip"`

	// Version is bumped by every successful store update and guards against
	// lost updates between overlapping attempts.
	Version int64 `db:"version" json:"version"`
}
