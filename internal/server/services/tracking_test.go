package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestApplySuccessfulLogin_ShiftsTracking(t *testing.T) {
	before := testNow.Add(-24 * time.Hour)
	a := &models.Account{
		FailedLoginAttempts: 2,
		CurrentLoginTime:    before,
		CurrentLoginIP:      "10.0.0.1",
		PreviousLoginTime:   before.Add(-time.Hour),
		PreviousLoginIP:     "10.0.0.9",
	}

	prev := ApplySuccessfulLogin(a, testNow, "192.168.1.5")

	assert.Equal(t, 2, prev)
	assert.Equal(t, before, a.PreviousLoginTime)
	assert.Equal(t, "10.0.0.1", a.PreviousLoginIP)
	assert.Equal(t, testNow, a.CurrentLoginTime)
	assert.Equal(t, "192.168.1.5", a.CurrentLoginIP)
	assert.Equal(t, 2, a.FailedLoginAttempts, "counter reset belongs to the lockout policy")
}

func TestApplySuccessfulLogin_FirstLogin(t *testing.T) {
	a := &models.Account{}

	prev := ApplySuccessfulLogin(a, testNow, "::1")

	assert.Equal(t, 0, prev)
	assert.Equal(t, testNow, a.PreviousLoginTime)
	assert.Equal(t, "::1", a.PreviousLoginIP)
	assert.Equal(t, testNow, a.CurrentLoginTime)
	assert.Equal(t, "::1", a.CurrentLoginIP)
}
