// Package middleware authenticates inbound requests from the bearer
// token and enforces access on protected paths. Authentication never
// aborts a request by itself; it only establishes (or withholds) the
// request principal. Rejection is RequireAuth's job.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SW2-receipt/SW-2-backend/internal/auth/token"
	"github.com/SW2-receipt/SW-2-backend/internal/logger"
	"github.com/SW2-receipt/SW-2-backend/internal/user"
)

// Principal is the authenticated caller attached to the request
// context. The JWT subject, re-checked against the store, is the
// single source of truth for "current user".
type Principal struct {
	UserID string
	Role   user.Role
}

// unexported, collision-proof context key
type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

type Authenticator struct {
	tokens *token.Service
	store  user.Store
}

func NewAuthenticator(tokens *token.Service, store user.Store) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		store:  store,
	}
}

// Authenticate resolves the bearer token into a principal. A missing,
// invalid or orphaned token degrades to anonymous; the request always
// continues.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.Request)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := a.tokens.Verify(raw)
		if err != nil {
			logger.Warn("bearer token rejected", map[string]any{
				"reason": err.Error(),
				"path":   c.Request.URL.Path,
			})
			c.Next()
			return
		}

		u, err := a.store.FindByID(c.Request.Context(), claims.Subject)
		if err != nil {
			// Valid token whose user has since been removed, or a
			// store fault: either way, anonymous.
			if !errors.Is(err, user.ErrNotFound) {
				logger.Error("user load failed during authentication", map[string]any{
					"user_id": claims.Subject,
					"error":   err.Error(),
				})
			}
			c.Next()
			return
		}

		p := Principal{UserID: u.ID, Role: u.Role}
		ctx := context.WithValue(c.Request.Context(), principalKey, p)
		c.Request = c.Request.WithContext(ctx)
		c.Set("userID", u.ID)

		c.Next()
	}
}

// RequireAuth rejects anonymous requests: structured 401 JSON on API
// paths, a redirect to the login page everywhere else.
func RequireAuth(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authentication required. Please login first.",
			})
			return
		}

		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

func bearerToken(r *http.Request) string {
	t, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return t
}
