package store

import "context"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	UpsertOAuthUser(ctx context.Context, subject, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// SettingsRepository stores one reminder-configuration blob per user, keyed
// by the user id. There is no partial-write or transaction concept: Save
// replaces the whole blob.
type SettingsRepository interface {
	Get(ctx context.Context, userID int64) ([]byte, error)
	Save(ctx context.Context, userID int64, blob []byte) error
}
