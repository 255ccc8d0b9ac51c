package userinfo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKakao(t *testing.T) {
	t.Parallel()

	t.Run("full payload", func(t *testing.T) {
		t.Parallel()

		attrs := map[string]any{
			"id": float64(123456789),
			"kakao_account": map[string]any{
				"email": "a@b.com",
				"profile": map[string]any{
					"nickname": "Ann",
				},
			},
		}

		got, err := Normalize("kakao", attrs)
		require.NoError(t, err)
		assert.Equal(t, "123456789", got.ExternalID)
		assert.Equal(t, "a@b.com", got.Email)
		assert.Equal(t, "Ann", got.Name)
	})

	t.Run("numeric id keeps no decimal point", func(t *testing.T) {
		t.Parallel()

		// Decoding through encoding/json is how payloads really arrive.
		var attrs map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"id":123}`), &attrs))

		got, err := Normalize("kakao", attrs)
		require.NoError(t, err)
		assert.Equal(t, "123", got.ExternalID)
	})

	t.Run("missing id is a hard failure", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize("kakao", map[string]any{
			"kakao_account": map[string]any{"email": "a@b.com"},
		})
		assert.ErrorIs(t, err, ErrNoExternalID)
	})

	t.Run("missing email is not an error", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize("kakao", map[string]any{
			"id": float64(1),
			"kakao_account": map[string]any{
				"profile": map[string]any{"nickname": "Ann"},
			},
		})
		require.NoError(t, err)
		assert.Empty(t, got.Email)
		assert.Equal(t, "Ann", got.Name)
	})

	t.Run("name falls back to email local-part", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize("kakao", map[string]any{
			"id": float64(1),
			"kakao_account": map[string]any{
				"email": "ann@example.com",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "ann", got.Name)
	})

	t.Run("name falls back to placeholder when email absent", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize("kakao", map[string]any{
			"id":            float64(123),
			"kakao_account": map[string]any{},
		})
		require.NoError(t, err)
		assert.Equal(t, "123", got.ExternalID)
		assert.Empty(t, got.Email)
		assert.Equal(t, "KakaoUser", got.Name)
	})

	t.Run("name is never empty", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize("kakao", map[string]any{"id": float64(7)})
		require.NoError(t, err)
		assert.NotEmpty(t, got.Name)
	})
}

func TestNormalizeNaver(t *testing.T) {
	t.Parallel()

	t.Run("identity sits under the response wrapper", func(t *testing.T) {
		t.Parallel()

		attrs := map[string]any{
			"resultcode": "00",
			"message":    "success",
			"response": map[string]any{
				"id":    "naver-abc-123",
				"email": "user@naver.com",
				"name":  "홍길동",
			},
		}

		got, err := Normalize("naver", attrs)
		require.NoError(t, err)
		assert.Equal(t, "naver-abc-123", got.ExternalID)
		assert.Equal(t, "user@naver.com", got.Email)
		assert.Equal(t, "홍길동", got.Name)
	})

	t.Run("missing response wrapper fails extraction", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize("naver", map[string]any{"resultcode": "00"})
		assert.ErrorIs(t, err, ErrNoExternalID)
	})

	t.Run("placeholder fallback", func(t *testing.T) {
		t.Parallel()

		got, err := Normalize("naver", map[string]any{
			"response": map[string]any{"id": "n1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "NaverUser", got.Name)
	})
}

func TestNormalizeGoogle(t *testing.T) {
	t.Parallel()

	got, err := Normalize("google", map[string]any{
		"sub":   "109876543210",
		"email": "g@example.com",
		"name":  "G User",
	})
	require.NoError(t, err)
	assert.Equal(t, "109876543210", got.ExternalID)
	assert.Equal(t, "g@example.com", got.Email)
	assert.Equal(t, "G User", got.Name)
}

func TestNormalizeUnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, err := Normalize("facebook", map[string]any{"id": "1"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNormalizeConsentRevokedOnSecondLogin(t *testing.T) {
	t.Parallel()

	// First login carries email and nickname; the second login for the
	// same id carries neither. The canonical identity must degrade to
	// the placeholder name, not fail.
	first, err := Normalize("kakao", map[string]any{
		"id": float64(123),
		"kakao_account": map[string]any{
			"email":   "a@b.com",
			"profile": map[string]any{"nickname": "Ann"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "123", first.ExternalID)

	second, err := Normalize("kakao", map[string]any{
		"id":            float64(123),
		"kakao_account": map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ExternalID, second.ExternalID)
	assert.Empty(t, second.Email)
	assert.Equal(t, "KakaoUser", second.Name)
}
