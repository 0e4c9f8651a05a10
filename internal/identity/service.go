package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fiberhub/portal/internal/profile"
)

const (
	// syntheticDomain completes bare usernames into the email form the
	// identity store requires.
	syntheticDomain = "portal.local"

	defaultInternetSpeed = 20
	minPasswordLength    = 6
)

var (
	// ErrInvalidCredentials indicates a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated indicates the account exists in the identity
	// store but its profile was deleted by an administrator.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrPasswordMismatch indicates a sign-up conflict where the existing
	// account's password does not match, so it cannot be resurrected.
	ErrPasswordMismatch = errors.New("account exists and password does not match")
	// ErrWeakPassword indicates the password is below the minimum length.
	ErrWeakPassword = errors.New("password too short")
)

// Service manages the account lifecycle and its pairing with profile rows.
type Service struct {
	accounts Repository
	profiles profile.Repository
	logger   *slog.Logger
}

// NewService creates a new identity service.
func NewService(accounts Repository, profiles profile.Repository, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, profiles: profiles, logger: logger}
}

// SyntheticEmail maps a login name to the email form stored in the identity
// store. Inputs that already look like an email pass through unchanged.
func SyntheticEmail(username string) string {
	if strings.Contains(username, "@") {
		return username
	}
	return strings.ReplaceAll(username, " ", "") + "@" + syntheticDomain
}

// NormalizeRole collapses account metadata to one of the two known roles,
// defaulting to resident.
func NormalizeRole(role string) string {
	if role == profile.RoleAdmin {
		return profile.RoleAdmin
	}
	return profile.RoleResident
}

// Register creates an account plus its profile row. On an email conflict it
// attempts to resurrect a zombie account: an identity-store entry whose
// profile was deleted. Resurrection requires the original password.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	if len(creds.Password) < minPasswordLength {
		return Account{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	role := NormalizeRole(creds.Role)
	account := Account{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		Email:        SyntheticEmail(creds.Username),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return s.resurrect(ctx, account.Email, creds)
		}
		return Account{}, err
	}

	if err := s.createProfile(ctx, account.ID, creds.Username, role); err != nil {
		return Account{}, err
	}
	return account, nil
}

// resurrect handles a sign-up conflict. If the password matches the existing
// account and the profile row is missing (deleted via the admin view), the
// profile is recreated with defaults and the metadata refreshed. If the
// profile is intact the account is simply already registered.
func (s *Service) resurrect(ctx context.Context, email string, creds Credentials) (Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, ErrAlreadyRegistered
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		return Account{}, ErrPasswordMismatch
	}

	exists, err := s.profiles.Exists(ctx, account.ID)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, ErrAlreadyRegistered
	}

	role := NormalizeRole(creds.Role)
	s.logger.Info("resurrecting zombie account", "account_id", account.ID, "username", creds.Username)
	if err := s.createProfile(ctx, account.ID, creds.Username, role); err != nil {
		return Account{}, err
	}
	if err := s.accounts.UpdateMetadata(ctx, account.ID, creds.Username, role); err != nil {
		s.logger.Warn("refresh account metadata", "account_id", account.ID, "error", err)
	}
	account.Username = creds.Username
	account.Role = role
	return account, nil
}

// Authenticate verifies credentials and denies accounts whose profile row is
// gone, signing the deleted user out instead of letting a half-dead identity
// through.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	account, err := s.accounts.FindByEmail(ctx, SyntheticEmail(creds.Username))
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	p, err := s.profiles.Get(ctx, account.ID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return Account{}, ErrAccountDeactivated
		}
		return Account{}, err
	}
	// Profile role wins over sign-up metadata.
	if p.Role != "" {
		account.Role = p.Role
	}
	account.Role = NormalizeRole(account.Role)

	account.LastLogin = time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, account.LastLogin); err != nil {
		s.logger.Warn("record last login", "account_id", account.ID, "error", err)
	}
	return account, nil
}

// Delete removes the profile rows and then the identity-store entry. When the
// identity-store delete fails the profile stays gone: the account becomes a
// zombie until the owner re-registers, which resurrects it.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, userID); err != nil {
		s.logger.Warn("delete identity entry, zombie account left behind", "account_id", userID, "error", err)
	}
	return nil
}

func (s *Service) createProfile(ctx context.Context, id, username, role string) error {
	return s.profiles.Create(ctx, profile.Profile{
		ID:            id,
		Username:      username,
		Role:          role,
		PaymentStatus: profile.StatusPaid,
		InternetSpeed: defaultInternetSpeed,
	})
}
