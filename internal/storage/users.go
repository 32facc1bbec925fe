package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser finds or creates a user by login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// SyncUser records the profile sent by the client after sign-in.
// Empty fields keep their stored values.
func (db *DB) SyncUser(ctx context.Context, login, email, name string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(),
			    email = COALESCE(NULLIF($2, ''), users.email),
			    display_name = COALESCE(NULLIF($3, ''), users.display_name)
		RETURNING id
	`, login, email, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("syncing user %s: %w", login, err)
	}
	return id, nil
}
