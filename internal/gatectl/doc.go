// Package gatectl implements the operator command line for gatekeeper:
// hashing a password for seeding an account, inspecting an account's
// lockout state and lifting a lock.
package gatectl
