package auth

import (
	"context"
	"errors"
	"time"

	"github.com/fiberhub/portal/internal/config"
	"github.com/fiberhub/portal/internal/identity"
)

// Service issues and refreshes token pairs bound to an account's token
// version; bumping the version invalidates everything issued before.
type Service struct {
	cfg      config.Config
	accounts identity.Repository
}

// NewService constructs a token service.
func NewService(cfg config.Config, accounts identity.Repository) *Service {
	return &Service{cfg: cfg, accounts: accounts}
}

// TokenPair bundles an access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issue signs a token pair for the authenticated account.
func (s *Service) Issue(account identity.Account) (TokenPair, error) {
	access, accessExp, err := s.sign(account, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(account, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(account identity.Account, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":      account.ID,
		"username": account.Username,
		"role":     account.Role,
		"ver":      account.TokenVersion,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and returns a new access token if the
// token version is still current.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)
	ver := int(verFloat)

	account, err := s.accounts.FindByID(ctx, sub)
	if err != nil {
		return "", 0, errors.New("account not found")
	}
	if account.TokenVersion != ver {
		return "", 0, errors.New("token version invalidated")
	}

	signed, _, err := s.sign(account, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments the token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	return s.accounts.UpdateTokenVersion(ctx, account.ID, account.TokenVersion+1)
}
