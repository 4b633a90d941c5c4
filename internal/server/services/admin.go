package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
)

var ErrEmptyIdentifier = errors.New("identifier is required")

// AdminService holds operator actions on accounts.
type AdminService struct {
	repo accounts.Repository
	log  logging.Logger
}

func NewAdminService(repo accounts.Repository, log logging.Logger) *AdminService {
	return &AdminService{repo: repo, log: log.With("module", "admin")}
}

// Unlock clears the failure counter and lock of the account behind login,
// which may be a username or an email address.
func (s *AdminService) Unlock(ctx context.Context, login string) (*models.Account, error) {
	if login == "" {
		return nil, ErrEmptyIdentifier
	}
	field := ClassifyIdentifier(login)

	a, err := s.repo.Unlock(ctx, field, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error unlocking account: %w", err)
	}

	s.log.Info(ctx, "account unlocked", "account_id", a.ID, "field", string(field))
	return a, nil
}
