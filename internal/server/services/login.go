// Package services contains server-side business logic. This file implements
// LoginService, which decides a single login attempt: it classifies the
// identifier, loads the account, applies the lockout policy around the
// credential check and writes the resulting account state back.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/lockout"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
)

// ReasonCode classifies a rejected attempt.
type ReasonCode string

const (
	ReasonMissingInput       ReasonCode = "missing_input"
	ReasonInvalidCredentials ReasonCode = "invalid_credentials"
	ReasonAccountLocked      ReasonCode = "account_locked"
)

// Attempt is one login request as seen by the engine.
type Attempt struct {
	Login          string
	Password       string
	ClientIP       string
	RedirectTarget string
}

// Decision is the business outcome of an Attempt. For a rejection Account is
// nil and Message is one of the fixed lockout messages.
type Decision struct {
	Accepted               bool
	Account                *models.Account
	RedirectTarget         string
	PreviousFailedAttempts int
	Reason                 ReasonCode
	Message                string
}

type LoginService struct {
	repo     accounts.Repository
	verifier Verifier
	log      logging.Logger

	policy              lockout.Policy
	defaultRedirect     string
	persistTimeout      time.Duration
	maxUpdateRetries    int
	countVerifierErrors bool

	now func() time.Time
}

// NewLoginService wires a LoginService from the server config. cfg is
// expected to have passed Validate.
func NewLoginService(repo accounts.Repository, verifier Verifier, cfg *config.Config, log logging.Logger) *LoginService {
	return &LoginService{
		repo:                repo,
		verifier:            verifier,
		log:                 log.With("module", "login"),
		policy:              cfg.LockoutPolicy(),
		defaultRedirect:     cfg.DefaultRedirect,
		persistTimeout:      cfg.PersistTimeout,
		maxUpdateRetries:    max(cfg.MaxUpdateRetries, 1),
		countVerifierErrors: cfg.CountVerifierErrors,
		now:                 time.Now,
	}
}

// Login decides at. A non-nil error means the decision could not be made
// (lookup, verifier or persistence failure) and wraps common.ErrorInternal
// plus the matching cause; every business outcome is a Decision.
func (s *LoginService) Login(ctx context.Context, at Attempt) (*Decision, error) {
	target := at.RedirectTarget
	if target == "" {
		target = s.defaultRedirect
	}

	if at.Login == "" || at.Password == "" {
		s.log.Info(ctx, "login rejected", "reason", ReasonMissingInput)
		return reject(ReasonMissingInput, lockout.MessageMissingInput, target), nil
	}

	field := ClassifyIdentifier(at.Login)
	log := s.log.With("field", string(field))

	for try := 1; ; try++ {
		d, err := s.decide(ctx, log, at, field, target)
		if errors.Is(err, common.ErrVersionConflict) {
			if try < s.maxUpdateRetries {
				log.Debug(ctx, "account changed concurrently, retrying", "try", try)
				continue
			}
			log.Error(ctx, "account update kept conflicting", "tries", try)
			return nil, fmt.Errorf("%w: %w: %w", common.ErrorInternal, common.ErrPersistence, err)
		}
		return d, err
	}
}

// decide runs one read-decide-write cycle. A common.ErrVersionConflict
// return means nothing was written and the cycle may be repeated.
func (s *LoginService) decide(ctx context.Context, log logging.Logger, at Attempt, field models.LookupField, target string) (*Decision, error) {
	a, err := s.repo.Find(ctx, field, at.Login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			log.Info(ctx, "login rejected", "reason", ReasonInvalidCredentials, "cause", "no_account")
			return reject(ReasonInvalidCredentials, lockout.MessageGeneric, target), nil
		}
		log.Error(ctx, "account lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %w: %w", common.ErrorInternal, common.ErrLookup, err)
	}
	log = log.With("account_id", a.ID)

	if !a.EmailVerified {
		log.Info(ctx, "login rejected", "reason", ReasonInvalidCredentials, "cause", "email_unverified")
		return reject(ReasonInvalidCredentials, lockout.MessageGeneric, target), nil
	}

	now := s.now()
	if s.policy.State(a, now) == lockout.Locked {
		log.Info(ctx, "login rejected", "reason", ReasonAccountLocked, "locked_until", a.AccountLockedUntil)
		return reject(ReasonAccountLocked, s.policy.Message(lockout.TierLocked), target), nil
	}

	valid, err := s.verifier.Compare(at.Password, a.CredentialHash)
	if err != nil {
		log.Error(ctx, "credential verifier failed", "error", err)
		if !s.countVerifierErrors {
			return reject(ReasonInvalidCredentials, lockout.MessageGeneric, target), nil
		}
		valid = false
	}

	if !valid {
		tier := s.policy.OnFailure(a, now)
		if _, err := s.persist(ctx, a); err != nil {
			return nil, err
		}
		log.Info(ctx, "login rejected", "reason", ReasonInvalidCredentials,
			"tier", tier.String(), "failed_attempts", a.FailedLoginAttempts)
		return reject(ReasonInvalidCredentials, s.policy.Message(tier), target), nil
	}

	previousFailures := ApplySuccessfulLogin(a, now, at.ClientIP)
	s.policy.OnSuccess(a)

	updated, err := s.persist(ctx, a)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "login accepted", "previous_failed_attempts", previousFailures)

	return &Decision{
		Accepted:               true,
		Account:                updated,
		RedirectTarget:         target,
		PreviousFailedAttempts: previousFailures,
	}, nil
}

// persist writes a back on a context that survives client cancellation, so
// an abandoned request still records the failure it caused.
func (s *LoginService) persist(ctx context.Context, a *models.Account) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, err
		}
		s.log.Error(ctx, "account update failed", "account_id", a.ID, "error", err)
		return nil, fmt.Errorf("%w: %w: %w", common.ErrorInternal, common.ErrPersistence, err)
	}
	return updated, nil
}

func reject(reason ReasonCode, message, target string) *Decision {
	return &Decision{Reason: reason, Message: message, RedirectTarget: target}
}
