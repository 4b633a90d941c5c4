// Package accounts is the account store adapter used by the login engine.
//
// All backends do point lookups by username or email and persist the
// lockout/tracking fields with an optimistic version check: Update only
// succeeds when the stored version still matches the working copy, so two
// overlapping attempts can never silently overwrite each other's counters.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// ErrUnknownField is returned for a lookup field no backend indexes.
var ErrUnknownField = errors.New("unknown lookup field")

type Repository interface {
	// Find returns common.ErrorNotFound when no account matches.
	// Any other failure is a store error and is never reported as not found.
	Find(ctx context.Context, field models.LookupField, value string) (*models.Account, error)
	// Update writes the lockout and login tracking fields of a. It returns
	// common.ErrVersionConflict when the stored version moved since a was read.
	Update(ctx context.Context, a *models.Account) (*models.Account, error)
	// Unlock resets the failure counter and lock of the matching account.
	Unlock(ctx context.Context, field models.LookupField, value string) (*models.Account, error)
}

// lookupColumn whitelists the column used in WHERE clauses.
func lookupColumn(field models.LookupField) (string, error) {
	switch field {
	case models.FieldUsername:
		return "username", nil
	case models.FieldEmail:
		return "email", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

const accountColumns = `id, username, email, email_verified, credential_hash,
		failed_login_attempts, account_locked, account_locked_until,
		current_login_time, previous_login_time, current_login_ip, previous_login_ip, version`
