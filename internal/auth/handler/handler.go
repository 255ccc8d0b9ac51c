// Package handler drives the social login handshake: initiate,
// provider callback, identity resolution, token issuance and the final
// redirect back to the frontend. Every callback failure terminates in
// a redirect; a browser mid-handshake never sees a raw server error.
package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/token"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/userinfo"
	"github.com/SW2-receipt/SW-2-backend/internal/logger"
	"github.com/SW2-receipt/SW-2-backend/internal/user"
)

type Handler struct {
	providers    *provider.Registry
	store        user.Store
	tokens       *token.Service
	frontendBase string
}

func NewHandler(
	registry *provider.Registry,
	store user.Store,
	tokens *token.Service,
	frontendBase string,
) *Handler {
	return &Handler{
		providers:    registry,
		store:        store,
		tokens:       tokens,
		frontendBase: frontendBase,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/:provider/login", h.login)
	r.GET("/login/oauth2/code/:provider", h.callback)
}

// login validates the provider and redirects the browser to its
// authorization page.
func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

// callback finishes the handshake: code exchange, normalization,
// upsert, token mint, redirect with the token appended.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		logger.Warn("oauth callback for unknown provider", map[string]any{
			"provider": providerName,
		})
		h.redirectFailure(c)
		return
	}

	// Provider reported an error (user denied consent, etc.):
	// short-circuit without touching identity resolution.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.redirectFailure(c)
		return
	}

	if !validateState(c) {
		logger.Warn("oauth state mismatch", map[string]any{
			"provider": providerName,
		})
		h.redirectFailure(c)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", map[string]any{
			"provider": providerName,
		})
		h.redirectFailure(c)
		return
	}

	attrs, err := p.FetchUserInfo(c.Request.Context(), code)
	if err != nil {
		logger.Error("oauth user info fetch failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.redirectFailure(c)
		return
	}

	info, err := userinfo.Normalize(providerName, attrs)
	if err != nil {
		logger.Error("oauth payload normalization failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.redirectFailure(c)
		return
	}

	u, err := h.store.Resolve(
		c.Request.Context(),
		providerName,
		info.ExternalID,
		info.Email,
		info.Name,
	)
	if err != nil {
		logger.Error("user resolution failed", map[string]any{
			"provider": providerName,
			"oauth_id": info.ExternalID,
			"error":    err.Error(),
		})
		h.redirectFailure(c)
		return
	}

	signed, err := h.tokens.Mint(u.ID, u.Email, providerName)
	if err != nil {
		logger.Error("token mint failed", map[string]any{
			"provider": providerName,
			"user_id":  u.ID,
		})
		h.redirectFailure(c)
		return
	}

	logger.Info("login success", map[string]any{
		"provider": providerName,
		"user_id":  u.ID,
	})

	// The provider tag in the path lets the frontend disambiguate its
	// callback routing.
	c.Redirect(
		http.StatusFound,
		h.frontendBase+"/auth/"+providerName+"/callback?token="+url.QueryEscape(signed),
	)
}

func (h *Handler) redirectFailure(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendBase+"/auth/error")
}
