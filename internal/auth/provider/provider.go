package provider

import "context"

// OAuthProvider is the contract every social login provider
// implements. Implementations return the provider's raw user payload
// only; normalization, user creation and token issuance happen
// elsewhere.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "kakao", "naver").
	Name() string

	// AuthCodeURL returns the provider authorization URL the browser
	// is redirected to. The CSRF state is provided by the caller.
	AuthCodeURL(state string) string

	// FetchUserInfo exchanges the authorization code and returns the
	// provider's raw attribute payload.
	FetchUserInfo(ctx context.Context, code string) (map[string]any, error)
}
