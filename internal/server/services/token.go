package services

import (
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// TokenService mints and checks the access tokens of the JSON login API.
type TokenService struct {
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func (s *TokenService) Issue(a *models.Account) (string, error) {
	return auth.GenerateToken(a.ID, a.Username, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *TokenService) Verify(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}
