package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SW2-receipt/SW-2-backend/internal/auth/handler"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider/google"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider/kakao"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider/naver"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/token"
	"github.com/SW2-receipt/SW-2-backend/internal/config"
	"github.com/SW2-receipt/SW-2-backend/internal/middleware"
	"github.com/SW2-receipt/SW-2-backend/internal/user"
)

const loginPath = "/oauth/kakao/login"

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tokens, err := token.New(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		return nil, nil, err
	}

	kakaoProvider, err := kakao.New(
		cfg.Kakao.ClientID,
		cfg.Kakao.ClientSecret,
		cfg.Kakao.RedirectURL,
		cfg.Kakao.Scopes,
	)
	if err != nil {
		return nil, nil, err
	}

	naverProvider, err := naver.New(
		cfg.Naver.ClientID,
		cfg.Naver.ClientSecret,
		cfg.Naver.RedirectURL,
		cfg.Naver.Scopes,
	)
	if err != nil {
		return nil, nil, err
	}

	providers := []provider.OAuthProvider{kakaoProvider, naverProvider}

	// Google stays optional; it needs OIDC discovery at startup.
	if cfg.Google.ClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			cfg.Google.RedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, googleProvider)
	}

	registry := provider.NewRegistry(providers...)

	authHandler := handler.NewHandler(
		registry,
		infra.Store,
		tokens,
		cfg.FrontendBase,
	)

	authenticator := middleware.NewAuthenticator(tokens, infra.Store)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(authenticator.Authenticate())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"message": "Server is running",
		})
	})

	router.GET("/", loginPage)

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(loginPath))

	api.GET("/users/me", currentUser(infra.Store))

	return router, infra.cleanup, nil
}

// currentUser returns the authenticated user's stored record.
func currentUser(store user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c.Request.Context())
		if !ok {
			// RequireAuth already gates this path; kept for direct use.
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authentication required. Please login first.",
			})
			return
		}

		u, err := store.FindByID(c.Request.Context(), p.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to load user",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"role":      u.Role,
			"provider":  u.Provider,
			"createdAt": u.CreatedAt,
		})
	}
}

const loginPageHTML = `<!DOCTYPE html>
<html lang="ko">
<head><meta charset="UTF-8"><title>로그인</title></head>
<body>
<h1>가계부 로그인</h1>
<p><a href="/oauth/kakao/login">카카오로 로그인</a></p>
<p><a href="/oauth/naver/login">네이버로 로그인</a></p>
</body>
</html>`

func loginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPageHTML))
}
