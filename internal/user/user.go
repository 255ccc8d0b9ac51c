// Package user owns the durable identity record created from social
// logins and the stores that persist it.
package user

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var ErrNotFound = errors.New("user: not found")

// User is this system's record of a real-world person, keyed by
// (Provider, OAuthID). ID is assigned on first insert and never
// changes; it is the only key tokens are minted against.
type User struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	OAuthID   string    `json:"oauth_id"`
	Email     string    `json:"email,omitempty"` // empty when the provider withheld it
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists users. Resolve is an upsert with last-writer-wins
// semantics on email and name; id, provider, oauth_id, role and
// created_at are never overwritten after creation. Implementations
// must keep Resolve safe under concurrent logins for the same
// (provider, oauthID).
type Store interface {
	Resolve(ctx context.Context, provider, oauthID, email, name string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
