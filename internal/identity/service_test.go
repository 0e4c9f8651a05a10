package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/fiberhub/portal/internal/logging"
	"github.com/fiberhub/portal/internal/profile"
)

func newTestService() (*Service, Repository, profile.Repository) {
	accounts := NewMemoryRepository()
	profiles := profile.NewMemoryRepository()
	return NewService(accounts, profiles, logging.Discard()), accounts, profiles
}

func TestSyntheticEmail(t *testing.T) {
	cases := map[string]string{
		"carlos":            "carlos@portal.local",
		"casa 12":           "casa12@portal.local",
		"real@example.com":  "real@example.com",
		"Depto 4B Torre II": "Depto4BTorreII@portal.local",
	}
	for in, want := range cases {
		if got := SyntheticEmail(in); got != want {
			t.Fatalf("SyntheticEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegisterCreatesAccountAndProfile(t *testing.T) {
	svc, _, profiles := newTestService()

	account, err := svc.Register(context.Background(), Credentials{Username: "carlos", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Role != profile.RoleResident {
		t.Fatalf("expected resident default, got %q", account.Role)
	}

	p, err := profiles.Get(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("profile missing after register: %v", err)
	}
	if p.PaymentStatus != profile.StatusPaid {
		t.Fatalf("expected paid default, got %s", p.PaymentStatus)
	}
	if p.InternetSpeed != 20 {
		t.Fatalf("expected default speed 20, got %d", p.InternetSpeed)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Register(context.Background(), Credentials{Username: "carlos", Password: "abc"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterConflictWithIntactProfile(t *testing.T) {
	svc, _, _ := newTestService()
	creds := Credentials{Username: "carlos", Password: "secret1"}
	if _, err := svc.Register(context.Background(), creds); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), creds); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegisterResurrectsZombieAccount(t *testing.T) {
	svc, _, profiles := newTestService()
	creds := Credentials{Username: "carlos", Password: "secret1"}
	account, err := svc.Register(context.Background(), creds)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Admin deletes the profile but the identity entry survives.
	if err := profiles.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), creds); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected deactivated login denial, got %v", err)
	}

	revived, err := svc.Register(context.Background(), creds)
	if err != nil {
		t.Fatalf("resurrect: %v", err)
	}
	if revived.ID != account.ID {
		t.Fatalf("expected same account id, got %s vs %s", revived.ID, account.ID)
	}

	p, err := profiles.Get(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("profile not recreated: %v", err)
	}
	if p.PaymentStatus != profile.StatusPaid || p.InternetSpeed != 20 {
		t.Fatalf("expected fresh defaults, got %s speed %d", p.PaymentStatus, p.InternetSpeed)
	}
}

func TestRegisterConflictWrongPassword(t *testing.T) {
	svc, _, profiles := newTestService()
	account, err := svc.Register(context.Background(), Credentials{Username: "carlos", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := profiles.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	_, err = svc.Register(context.Background(), Credentials{Username: "carlos", Password: "another1"})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	// The zombie stays zombie: no profile was recreated.
	if exists, _ := profiles.Exists(context.Background(), account.ID); exists {
		t.Fatal("profile must not be recreated on a failed resurrection")
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	creds := Credentials{Username: "carlos", Password: "secret1"}
	if _, err := svc.Register(context.Background(), creds); err != nil {
		t.Fatalf("register: %v", err)
	}

	account, err := svc.Authenticate(context.Background(), creds)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.LastLogin.IsZero() {
		t.Fatal("expected last login to be stamped")
	}

	if _, err := svc.Authenticate(context.Background(), Credentials{Username: "carlos", Password: "wrong1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), Credentials{Username: "nobody", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthenticateProfileRoleWins(t *testing.T) {
	svc, _, profiles := newTestService()
	account, err := svc.Register(context.Background(), Credentials{Username: "carlos", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	// Promote via profile row only; sign-up metadata still says resident.
	if err := profiles.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if err := profiles.Create(context.Background(), profile.Profile{
		ID: account.ID, Username: "carlos", Role: profile.RoleAdmin,
	}); err != nil {
		t.Fatalf("recreate profile: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), Credentials{Username: "carlos", Password: "secret1"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Role != profile.RoleAdmin {
		t.Fatalf("expected profile role to win, got %q", got.Role)
	}
}

func TestDeleteRemovesProfileAndAccount(t *testing.T) {
	svc, accounts, profiles := newTestService()
	account, err := svc.Register(context.Background(), Credentials{Username: "carlos", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if exists, _ := profiles.Exists(context.Background(), account.ID); exists {
		t.Fatal("profile should be gone")
	}
	if _, err := accounts.FindByID(context.Background(), account.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("account should be gone, got %v", err)
	}
}
