package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRepo implements UserRepository.
type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) UpsertOAuthUser(ctx context.Context, subject, email string) (*User, error) {
	defer observeDB(ctx, "db.users.upsert")()

	const q = `INSERT INTO users (oauth_subject, primary_email)
VALUES ($1, $2)
ON CONFLICT (oauth_subject) DO UPDATE
SET primary_email = EXCLUDED.primary_email, last_login_at = NOW()
RETURNING id, oauth_subject, primary_email, created_at, last_login_at`

	var u User
	err := r.pool.QueryRow(ctx, q, subject, email).
		Scan(&u.ID, &u.OAuthSubject, &u.PrimaryEmail, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("upsert oauth user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	defer observeDB(ctx, "db.users.get")()

	const q = `SELECT id, oauth_subject, primary_email, created_at, last_login_at
FROM users WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.ID, &u.OAuthSubject, &u.PrimaryEmail, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// settingsRepo implements SettingsRepository.
type settingsRepo struct {
	pool *pgxpool.Pool
}

func (r *settingsRepo) Get(ctx context.Context, userID int64) ([]byte, error) {
	defer observeDB(ctx, "db.settings.get")()

	const q = `SELECT blob FROM user_settings WHERE user_id = $1`

	var blob []byte
	err := r.pool.QueryRow(ctx, q, userID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings for user %d: %w", userID, err)
	}
	return blob, nil
}

func (r *settingsRepo) Save(ctx context.Context, userID int64, blob []byte) error {
	defer observeDB(ctx, "db.settings.save")()

	const q = `INSERT INTO user_settings (user_id, blob)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE
SET blob = EXCLUDED.blob, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, q, userID, blob); err != nil {
		return fmt.Errorf("save settings for user %d: %w", userID, err)
	}
	return nil
}
