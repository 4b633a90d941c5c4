package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Verifier compares a plaintext password with a stored credential hash.
// A mismatch is (false, nil); an error means the comparison itself failed.
type Verifier interface {
	Compare(plaintext string, hash []byte) (bool, error)
}

type BcryptVerifier struct{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (v *BcryptVerifier) Compare(plaintext string, hash []byte) (bool, error) {
	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	err := bcrypt.CompareHashAndPassword(hash, pw)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", common.ErrVerifier, err)
	}
}

// HashPassword produces a credential hash accepted by BcryptVerifier.
// cost 0 selects bcrypt.DefaultCost.
func HashPassword(password []byte, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword(password, cost)
}
