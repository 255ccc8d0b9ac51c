package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users in a mutex-guarded map. Useful for local
// development and tests; production uses Postgres.
type MemoryStore struct {
	mu     sync.Mutex
	byKey  map[string]*User // provider + "\x00" + oauthID
	byID   map[string]*User
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey: make(map[string]*User),
		byID:  make(map[string]*User),
		now:   time.Now,
	}
}

func key(provider, oauthID string) string {
	return provider + "\x00" + oauthID
}

func (s *MemoryStore) Resolve(
	ctx context.Context,
	provider, oauthID, email, name string,
) (*User, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byKey[key(provider, oauthID)]; ok {
		existing.Email = email
		existing.Name = name
		existing.UpdatedAt = s.now()
		return copyUser(existing), nil
	}

	now := s.now()
	u := &User{
		ID:        uuid.NewString(),
		Provider:  provider,
		OAuthID:   oauthID,
		Email:     email,
		Name:      name,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byKey[key(provider, oauthID)] = u
	s.byID[u.ID] = u
	return copyUser(u), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

// Delete removes a user. Only exercised by tests simulating an
// identity removed after token issuance.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byKey, key(u.Provider, u.OAuthID))
	return nil
}

func copyUser(u *User) *User {
	c := *u
	return &c
}
