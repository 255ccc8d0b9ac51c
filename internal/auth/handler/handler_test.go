package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SW2-receipt/SW-2-backend/internal/auth/provider"
	"github.com/SW2-receipt/SW-2-backend/internal/auth/token"
	"github.com/SW2-receipt/SW-2-backend/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testSecret   = "test-secret-key-0123456789abcdef-0123456789"
	frontendBase = "http://localhost:8081"
)

// stubProvider stands in for a real OAuth provider so the handshake
// can be exercised without network access.
type stubProvider struct {
	name  string
	attrs map[string]any
	err   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}

func (s *stubProvider) FetchUserInfo(context.Context, string) (map[string]any, error) {
	return s.attrs, s.err
}

func newRouter(t *testing.T, providers ...provider.OAuthProvider) (*gin.Engine, *token.Service, *user.MemoryStore) {
	t.Helper()

	tokens, err := token.New(testSecret, time.Hour)
	require.NoError(t, err)
	store := user.NewMemoryStore()

	h := NewHandler(provider.NewRegistry(providers...), store, tokens, frontendBase)

	router := gin.New()
	h.RegisterRoutes(router)
	return router, tokens, store
}

func kakaoPayload() map[string]any {
	return map[string]any{
		"id": float64(123),
		"kakao_account": map[string]any{
			"email": "a@b.com",
			"profile": map[string]any{
				"nickname": "Ann",
			},
		},
	}
}

func stateCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("state cookie not set")
	return nil
}

func TestLoginRedirectsToProvider(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{name: "kakao"})

	req := httptest.NewRequest(http.MethodGet, "/oauth/kakao/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	cookie := stateCookie(t, w)
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://provider.example/authorize?state="), loc)
	assert.Contains(t, loc, url.QueryEscape(cookie.Value))
}

func TestLoginUnknownProviderIs404(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{name: "kakao"})

	req := httptest.NewRequest(http.MethodGet, "/oauth/facebook/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallbackHappyPath(t *testing.T) {
	t.Parallel()

	router, tokens, store := newRouter(t, &stubProvider{
		name:  "kakao",
		attrs: kakaoPayload(),
	})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/kakao/callback", loc.Path)

	signed := loc.Query().Get("token")
	require.NotEmpty(t, signed)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "kakao", claims.Provider)

	// The token subject is a persisted user keyed by the provider id.
	u, err := store.FindByID(context.Background(), claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, "123", u.OAuthID)
	assert.Equal(t, "Ann", u.Name)
}

func TestCallbackSecondLoginKeepsLocalID(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "kakao", attrs: kakaoPayload()}
	router, tokens, store := newRouter(t, stub)

	first := doCallback(t, router, "s1")
	firstClaims, err := tokens.Verify(first)
	require.NoError(t, err)

	// Consent withdrawn before the second login.
	stub.attrs = map[string]any{
		"id":            float64(123),
		"kakao_account": map[string]any{},
	}

	second := doCallback(t, router, "s2")
	secondClaims, err := tokens.Verify(second)
	require.NoError(t, err)

	assert.Equal(t, firstClaims.Subject, secondClaims.Subject)

	u, err := store.FindByID(context.Background(), secondClaims.Subject)
	require.NoError(t, err)
	assert.Empty(t, u.Email)
	assert.Equal(t, "KakaoUser", u.Name)
}

func doCallback(t *testing.T, router *gin.Engine, state string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state="+state, nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: state})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	signed := loc.Query().Get("token")
	require.NotEmpty(t, signed)
	return signed
}

func TestCallbackProviderErrorShortCircuits(t *testing.T) {
	t.Parallel()

	// A provider error must short-circuit before identity resolution;
	// the stub's FetchUserInfo would fail if it were ever reached.
	router, _, _ := newRouter(t, &stubProvider{
		name: "kakao",
		err:  errors.New("exchange must not be called"),
	})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?error=access_denied&error_description=denied", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}

func TestCallbackStateMismatchFails(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{name: "kakao", attrs: kakaoPayload()})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "original"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}

func TestCallbackMissingCodeFails(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{name: "kakao", attrs: kakaoPayload()})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}

func TestCallbackFetchFailureRedirectsNot500(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{
		name: "kakao",
		err:  errors.New("provider unreachable"),
	})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}

func TestCallbackUnknownProviderRedirectsToFailure(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{name: "kakao", attrs: kakaoPayload()})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/facebook?code=auth-code&state=s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}

func TestCallbackPayloadMissingIDRedirectsToFailure(t *testing.T) {
	t.Parallel()

	router, _, _ := newRouter(t, &stubProvider{
		name:  "kakao",
		attrs: map[string]any{"kakao_account": map[string]any{}},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendBase+"/auth/error", w.Header().Get("Location"))
}
