package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a profile row.
func (r *PostgresRepository) Create(ctx context.Context, p Profile) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.Exec(ctx, `INSERT INTO profiles
        (id, username, alias, role, payment_status, next_payment_date, internet_speed, wifi_ssid, wifi_pass, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, p.Username, p.Alias, p.Role, string(p.PaymentStatus), p.NextPaymentDate,
		p.InternetSpeed, p.WifiSSID, p.WifiPass, createdAt)
	return err
}

// Get fetches one profile aggregate: the profile row plus its messages
// (oldest first) and payment history (newest first).
func (r *PostgresRepository) Get(ctx context.Context, id string) (Profile, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return Profile{}, ErrNotFound
	}

	p, err := r.scanProfile(r.db.QueryRow(ctx, `SELECT id, username, alias, role, payment_status,
        next_payment_date, internet_speed, wifi_ssid, wifi_pass, created_at
        FROM profiles WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	if p.Messages, err = r.messages(ctx, userID); err != nil {
		return Profile{}, err
	}
	if p.PaymentHistory, err = r.history(ctx, userID); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ListByRole returns all profile aggregates with the given role.
func (r *PostgresRepository) ListByRole(ctx context.Context, role string) ([]Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT id, username, alias, role, payment_status,
        next_payment_date, internet_speed, wifi_ssid, wifi_pass, created_at
        FROM profiles WHERE role = $1 ORDER BY username`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range profiles {
		userID, err := uuid.Parse(profiles[i].ID)
		if err != nil {
			return nil, err
		}
		if profiles[i].Messages, err = r.messages(ctx, userID); err != nil {
			return nil, err
		}
		if profiles[i].PaymentHistory, err = r.history(ctx, userID); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// Exists reports whether a profile row is present for the id.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	var found bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, userID).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// Update applies a partial update; nil fields keep their stored value.
func (r *PostgresRepository) Update(ctx context.Context, id string, updates Updates) error {
	if updates.IsZero() {
		return nil
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	set := make([]string, 0, 6)
	args := []any{userID}
	appendSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if updates.Alias != nil {
		appendSet("alias", *updates.Alias)
	}
	if updates.PaymentStatus != nil {
		appendSet("payment_status", string(*updates.PaymentStatus))
	}
	if updates.NextPaymentDate != nil {
		appendSet("next_payment_date", *updates.NextPaymentDate)
	}
	if updates.InternetSpeed != nil {
		appendSet("internet_speed", *updates.InternetSpeed)
	}
	if updates.WifiSSID != nil {
		appendSet("wifi_ssid", *updates.WifiSSID)
	}
	if updates.WifiPass != nil {
		appendSet("wifi_pass", *updates.WifiPass)
	}

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $1", joinSet(set))
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile row and its owned messages and history.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM payment_history WHERE user_id = $1`, userID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// AddHistory inserts one billing-period record scoped to the profile.
func (r *PostgresRepository) AddHistory(ctx context.Context, userID string, item HistoryItem) (HistoryItem, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return HistoryItem{}, ErrNotFound
	}
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	_, err = r.db.Exec(ctx, `INSERT INTO payment_history (id, user_id, period, date, amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.MustParse(item.ID), uid, item.Period, item.Date, item.Amount, string(item.Status), item.CreatedAt)
	if err != nil {
		return HistoryItem{}, err
	}
	return item, nil
}

// UpdateHistory edits an existing billing-period record in place.
func (r *PostgresRepository) UpdateHistory(ctx context.Context, userID, itemID string, item HistoryItem) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE payment_history SET period = $1, date = $2, amount = $3, status = $4
        WHERE id = $5 AND user_id = $6`,
		item.Period, item.Date, item.Amount, string(item.Status), id, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHistory removes one billing-period record.
func (r *PostgresRepository) DeleteHistory(ctx context.Context, userID, itemID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM payment_history WHERE id = $1 AND user_id = $2`, id, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage appends one message to the resident's thread.
func (r *PostgresRepository) AddMessage(ctx context.Context, userID string, msg Message) (Message, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Message{}, ErrNotFound
	}
	msg.ID = uuid.NewString()
	msg.Read = false
	msg.CreatedAt = time.Now().UTC()
	_, err = r.db.Exec(ctx, `INSERT INTO messages (id, user_id, text, sender_role, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.MustParse(msg.ID), uid, msg.Text, msg.From, msg.Read, msg.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// MarkMessagesRead flags all unread messages written by senderRole as read.
func (r *PostgresRepository) MarkMessagesRead(ctx context.Context, userID, senderRole string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE messages SET read = TRUE
        WHERE user_id = $1 AND sender_role = $2 AND read = FALSE`, uid, senderRole)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanProfile(row rowScanner) (Profile, error) {
	var (
		p         Profile
		id        uuid.UUID
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &p.Username, &p.Alias, &p.Role, &status,
		&p.NextPaymentDate, &p.InternetSpeed, &p.WifiSSID, &p.WifiPass, &createdAt); err != nil {
		return Profile{}, err
	}
	p.ID = id.String()
	p.PaymentStatus = Status(status)
	p.CreatedAt = createdAt.UTC()
	return p, nil
}

func (r *PostgresRepository) messages(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	rows, err := r.db.Query(ctx, `SELECT id, text, sender_role, read, created_at
        FROM messages WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			m         Message
			id        uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &m.Text, &m.From, &m.Read, &createdAt); err != nil {
			return nil, err
		}
		m.ID = id.String()
		m.CreatedAt = createdAt.UTC()
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PostgresRepository) history(ctx context.Context, userID uuid.UUID) ([]HistoryItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, period, date, amount, status, created_at
        FROM payment_history WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []HistoryItem{}
	for rows.Next() {
		var (
			h         HistoryItem
			id        uuid.UUID
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &h.Period, &h.Date, &h.Amount, &status, &createdAt); err != nil {
			return nil, err
		}
		h.ID = id.String()
		h.Status = Status(status)
		h.CreatedAt = createdAt.UTC()
		items = append(items, h)
	}
	return items, rows.Err()
}

func joinSet(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
