package services

import (
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	hash, err := HashPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier()

	ok, err := v.Compare("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Compare("wrong", hash)
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, ok)
}

func TestBcryptVerifier_CorruptHash(t *testing.T) {
	v := NewBcryptVerifier()

	for _, hash := range [][]byte{nil, []byte("not-a-bcrypt-hash"), []byte("$2a$10$short")} {
		ok, err := v.Compare("anything", hash)
		assert.False(t, ok)
		assert.ErrorIs(t, err, common.ErrVerifier)
	}
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword([]byte("pw"), 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
