// Package kakao implements OAuth 2.0 authentication with Kakao.
// Kakao is plain OAuth2, not OIDC: after the code exchange a separate
// call to the user-me API fetches the profile payload.
package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	providerName     = "kakao"
	userInfoEndpoint = "https://kapi.kakao.com/v2/user/me"
)

var endpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

type Provider struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

// New configures the Kakao provider. The client secret may be empty;
// Kakao only issues one when it is enabled in the developer console.
func New(clientID, clientSecret, redirectURL string, scopes []string) (*Provider, error) {
	if clientID == "" || redirectURL == "" {
		return nil, errors.New("kakao oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchUserInfo exchanges the code and fetches the raw profile payload
// from the Kakao user-me API.
func (p *Provider) FetchUserInfo(ctx context.Context, code string) (map[string]any, error) {
	tok, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao user info returned status %d", resp.StatusCode)
	}

	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("kakao user info decode failed: %w", err)
	}
	return attrs, nil
}
