// Package common defines shared constants and sentinel errors used across
// the gatekeeper server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Login pipeline failures. These are infrastructure errors, never a
	// business rejection: the caller must not map them to "invalid credentials".
	ErrLookup      = errors.New("account lookup failed")
	ErrVerifier    = errors.New("credential verifier failed")
	ErrPersistence = errors.New("account update failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
