// Package token mints and verifies the stateless bearer credential
// issued after a social login. Validity is entirely a function of the
// HMAC signature and the expiry claim; nothing is stored server-side.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers anything that is not a structurally valid,
	// well-signed token: wrong segment count, bad base64, unknown alg.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired means the signature checked out but exp has passed.
	ErrExpired = errors.New("token: expired")
	// ErrForged means the signature does not match the signing key.
	ErrForged = errors.New("token: signature mismatch")
)

// Claims carried by every issued credential. Subject is the local
// user id; Provider records which social provider the login came from.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

// minSecretLen enforces the 256-bit minimum for the HS256 key.
const minSecretLen = 32

// Service signs and verifies credentials with a single symmetric key
// loaded once at startup. It is immutable and safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token: signing secret must be at least %d bytes", minSecretLen)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token: ttl must not be negative")
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Mint issues a compact HS256 token for the given user.
func (s *Service) Mint(userID, email, provider string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:    email,
		Provider: provider,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: signing failed: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// It always returns one of ErrExpired, ErrForged or ErrMalformed on
// failure; callers decide policy.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrForged
		default:
			return nil, ErrMalformed
		}
	}
	if !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Subject returns the user id carried by the token. The token is fully
// verified first; an unverified payload is never trusted.
func (s *Service) Subject(tokenString string) (string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
