package services

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// fakeAccounts is an in-memory accounts.Repository with the same version
// semantics as the real stores.
type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[string]models.Account
	findErr   error
	updateErr error

	// conflicts makes the next n updates fail with ErrVersionConflict.
	conflicts int

	finds   int
	updates int
	// updateCtxErr records ctx.Err() seen by the last Update.
	updateCtxErr error
}

func newFakeAccounts(accounts ...models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[string]models.Account{}}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Find(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.byID {
		if (field == models.FieldUsername && a.Username == value) || (field == models.FieldEmail && a.Email == value) {
			cp := a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.updateCtxErr = ctx.Err()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return nil, common.ErrVersionConflict
	}
	stored, ok := f.byID[a.ID]
	if !ok || stored.Version != a.Version {
		return nil, common.ErrVersionConflict
	}
	cp := *a
	cp.Version++
	f.byID[a.ID] = cp
	out := cp
	return &out, nil
}

func (f *fakeAccounts) Unlock(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	a, err := f.Find(ctx, field, value)
	if err != nil {
		return nil, err
	}
	a.FailedLoginAttempts = 0
	a.AccountLocked = false
	a.AccountLockedUntil = time.Time{}
	return f.Update(ctx, a)
}

func (f *fakeAccounts) get(id string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeAccounts) counts() (finds, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds, f.updates
}

// fakeVerifier accepts exactly one password.
type fakeVerifier struct {
	password string
	err      error
	calls    atomic.Int32
	hook     func(call int32)
}

func (v *fakeVerifier) Compare(plaintext string, hash []byte) (bool, error) {
	n := v.calls.Add(1)
	if v.hook != nil {
		v.hook(n)
	}
	if v.err != nil {
		return false, v.err
	}
	return plaintext == v.password, nil
}

func testLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "error")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestLoginService(repo *fakeAccounts, v Verifier, cfg *config.Config) *LoginService {
	s := NewLoginService(repo, v, cfg, testLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func bob() models.Account {
	return models.Account{
		ID: "acc-bob", Username: "bob", Email: "bob@example.com", EmailVerified: true,
		CredentialHash: []byte("hash"), Version: 1,
	}
}
