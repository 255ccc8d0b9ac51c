package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OAuthClient holds the per-provider registration handed to the
// authorization redirect. Scope is an opaque pass-through.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type Config struct {
	AppPort string

	// JWTSecret signs issued tokens. Must be at least 256 bits.
	// Never logged.
	JWTSecret     string
	JWTExpiration time.Duration

	// FrontendBase is where the browser lands after login,
	// e.g. http://localhost:8081.
	FrontendBase string

	Kakao  OAuthClient
	Naver  OAuthClient
	Google OAuthClient

	// StoreDriver selects the user store: "postgres" (default) or
	// "memory" for local development without a database.
	StoreDriver string
	DatabaseDSN string

	// RedisAddr is optional; when set, user lookups on the request
	// authentication path are served through a Redis cache.
	RedisAddr     string
	RedisPassword string
}

func Load() Config {
	// Best-effort: a missing .env just means plain env vars.
	_ = godotenv.Load()

	cfg := Config{
		AppPort: getenv("APP_PORT", "8080"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: durationMS("JWT_EXPIRATION_MS", 24*time.Hour),

		FrontendBase: getenv("FRONTEND_BASE", "http://localhost:8081"),

		Kakao: OAuthClient{
			ClientID:     os.Getenv("KAKAO_CLIENT_ID"),
			ClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("KAKAO_REDIRECT_URL"),
			Scopes:       scopes("KAKAO_SCOPE", "profile_nickname", "account_email"),
		},
		Naver: OAuthClient{
			ClientID:     os.Getenv("NAVER_CLIENT_ID"),
			ClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("NAVER_REDIRECT_URL"),
			Scopes:       scopes("NAVER_SCOPE", "name", "email"),
		},
		Google: OAuthClient{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},

		StoreDriver: getenv("STORE_DRIVER", "postgres"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationMS reads a millisecond count from the environment.
func durationMS(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func scopes(key string, fallback ...string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
