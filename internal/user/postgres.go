package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when a racing
// insert hits the (provider, oauth_id) constraint.
const uniqueViolation = pq.ErrorCode("23505")

// PostgresStore is the canonical Store. Concurrency safety for Resolve
// comes from the unique constraint, not application locks, so it holds
// across process instances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Resolve(
	ctx context.Context,
	provider, oauthID, email, name string,
) (*User, error) {

	// Returning user: refresh the mutable fields.
	u, err := s.update(ctx, provider, oauthID, email, name)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: update failed: %w", err)
	}

	// First login for this (provider, oauthID).
	u, err = s.insert(ctx, provider, oauthID, email, name)
	if err == nil {
		return u, nil
	}

	// A concurrent first login won the insert; its row exists now, so
	// fall back to the update path once.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		u, err = s.update(ctx, provider, oauthID, email, name)
		if err != nil {
			return nil, fmt.Errorf("user: update after conflict failed: %w", err)
		}
		return u, nil
	}

	return nil, fmt.Errorf("user: insert failed: %w", err)
}

func (s *PostgresStore) update(
	ctx context.Context,
	provider, oauthID, email, name string,
) (*User, error) {

	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $3, name = $4, updated_at = NOW()
		WHERE provider = $1 AND oauth_id = $2
		RETURNING id, provider, oauth_id, email, name, role, created_at, updated_at
	`, provider, oauthID, nullable(email), name)

	return scanUser(row)
}

func (s *PostgresStore) insert(
	ctx context.Context,
	provider, oauthID, email, name string,
) (*User, error) {

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (provider, oauth_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, provider, oauth_id, email, name, role, created_at, updated_at
	`, provider, oauthID, nullable(email), name, RoleUser)

	return scanUser(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	// Reject garbage before it reaches the uuid column.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, provider, oauth_id, email, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: lookup failed: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u     User
		id    uuid.UUID
		email sql.NullString
	)
	err := row.Scan(
		&id,
		&u.Provider,
		&u.OAuthID,
		&email,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID = id.String()
	u.Email = email.String
	return &u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
