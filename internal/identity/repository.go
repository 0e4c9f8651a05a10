package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrAlreadyRegistered indicates the email is already taken in the
	// identity store. The caller decides whether that account is a zombie.
	ErrAlreadyRegistered = errors.New("account already registered")
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	UpdateTokenVersion(ctx context.Context, id string, version int) error
	UpdateMetadata(ctx context.Context, id, username, role string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account. Returns ErrAlreadyRegistered on an email
// uniqueness conflict.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	id, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, username, email, role, password_hash, token_version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, account.Username, account.Email, account.Role, account.PasswordHash,
		account.TokenVersion, account.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyRegistered
	}
	return err
}

// FindByEmail fetches an account by its (possibly synthetic) email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT id, username, email, role, password_hash, token_version, created_at, last_login
        FROM accounts WHERE email = $1`, email))
}

// FindByID fetches an account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return r.scan(r.db.QueryRow(ctx, `SELECT id, username, email, role, password_hash, token_version, created_at, last_login
        FROM accounts WHERE id = $1`, accountID))
}

// UpdateTokenVersion bumps the token version, invalidating older tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	return r.exec(ctx, `UPDATE accounts SET token_version = $1 WHERE id = $2`, version, id)
}

// UpdateMetadata refreshes the username/role metadata, used when a zombie
// account is resurrected under possibly different details.
func (r *PostgresRepository) UpdateMetadata(ctx context.Context, id, username, role string) error {
	return r.exec(ctx, `UPDATE accounts SET username = $1, role = $2 WHERE id = $3`, username, role, id)
}

// UpdateLastLogin records the most recent successful sign-in.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at.UTC(), id)
}

// Delete removes the account from the identity store.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	last := args[len(args)-1].(string)
	accountID, err := uuid.Parse(last)
	if err != nil {
		return ErrNotFound
	}
	args[len(args)-1] = accountID
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scan(row pgx.Row) (Account, error) {
	var (
		a         Account
		id        uuid.UUID
		createdAt time.Time
		lastLogin *time.Time
	)
	if err := row.Scan(&id, &a.Username, &a.Email, &a.Role, &a.PasswordHash, &a.TokenVersion, &createdAt, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	if lastLogin != nil {
		a.LastLogin = lastLogin.UTC()
	}
	return a, nil
}
