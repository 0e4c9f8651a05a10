package identity

import "time"

// Account is an identity-store entry. The role here is metadata set at
// sign-up; the profile row's role wins when the two disagree.
type Account struct {
	ID           string
	Username     string
	Email        string
	Role         string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Credentials is a sign-in/sign-up request.
type Credentials struct {
	Username string
	Password string
	Role     string
}
