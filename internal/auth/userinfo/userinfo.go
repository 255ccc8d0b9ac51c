// Package userinfo converts provider-specific user payloads into one
// canonical shape. Each social provider nests the same three facts at
// different depths; the mapping for each lives in one pure extractor
// selected by provider name.
package userinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedProvider = errors.New("userinfo: unsupported provider")
	ErrNoExternalID        = errors.New("userinfo: payload missing user id")
)

// Normalized is the canonical identity extracted from a provider
// payload. Email may be empty (the user can withhold consent);
// Name never is.
type Normalized struct {
	ExternalID string
	Email      string
	Name       string
}

// extractor maps one provider's raw attribute payload onto the
// canonical fields. Extractors hold no state and make no decisions
// beyond field lookup.
type extractor struct {
	id          func(attrs map[string]any) string
	email       func(attrs map[string]any) string
	name        func(attrs map[string]any) string
	defaultName string
}

// Adding a provider means one table entry plus its extractor functions.
var extractors = map[string]extractor{
	"kakao":  {id: kakaoID, email: kakaoEmail, name: kakaoName, defaultName: "KakaoUser"},
	"naver":  {id: naverID, email: naverEmail, name: naverName, defaultName: "NaverUser"},
	"google": {id: googleID, email: googleEmail, name: googleName, defaultName: "GoogleUser"},
}

// Normalize extracts the canonical identity from a raw provider payload.
// A missing user id is a hard failure; a missing email is not.
func Normalize(provider string, attrs map[string]any) (Normalized, error) {
	ex, ok := extractors[provider]
	if !ok {
		return Normalized{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	id := ex.id(attrs)
	if id == "" {
		return Normalized{}, fmt.Errorf("%w (provider %s)", ErrNoExternalID, provider)
	}

	email := ex.email(attrs)

	name := ex.name(attrs)
	if name == "" {
		name = fallbackName(email, ex.defaultName)
	}

	return Normalized{
		ExternalID: id,
		Email:      email,
		Name:       name,
	}, nil
}

// fallbackName derives a display name from the email local-part, or
// uses the provider placeholder. The result is never empty.
func fallbackName(email, placeholder string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return placeholder
}

// asString renders a payload value as a string. Provider ids arrive as
// JSON numbers (Kakao) or strings (Naver); numeric ids must not pick up
// a decimal point.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func nested(attrs map[string]any, key string) map[string]any {
	m, _ := attrs[key].(map[string]any)
	return m
}
