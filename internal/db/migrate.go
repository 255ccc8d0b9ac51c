package db

import (
	"context"
	"database/sql"
)

// The (provider, oauth_id) unique constraint is what makes concurrent
// first-time logins safe: the losing insert surfaces a conflict the
// store retries as an update.
const usersMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    provider text NOT NULL,
    oauth_id text NOT NULL,
    email text,
    name text NOT NULL,
    role text NOT NULL DEFAULT 'USER',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT users_provider_oauth_unique
        UNIQUE (provider, oauth_id)
);

CREATE INDEX IF NOT EXISTS users_provider_idx
ON users (provider);
`

func RunUsersMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, usersMigration)
	return err
}
