package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWTToken(t *testing.T) {
	t.Run("round-trips through validation", func(t *testing.T) {
		token, err := GenerateJWTToken("chat-keeper", 42, time.Hour, "secret")
		require.NoError(t, err)
		require.NotEmpty(t, token.SignedString)
		assert.Equal(t, int64(42), token.UserID)

		parsed, err := ValidateAndParseJWTToken(token.SignedString, "secret", "chat-keeper")
		require.NoError(t, err)
		assert.Equal(t, int64(42), parsed.UserID)
	})

	t.Run("rejects empty params", func(t *testing.T) {
		_, err := GenerateJWTToken("", 42, time.Hour, "secret")
		assert.Error(t, err)

		_, err = GenerateJWTToken("chat-keeper", 42, 0, "secret")
		assert.Error(t, err)

		_, err = GenerateJWTToken("chat-keeper", 42, time.Hour, "")
		assert.Error(t, err)
	})
}

func TestValidateAndParseJWTToken(t *testing.T) {
	token, err := GenerateJWTToken("chat-keeper", 7, time.Hour, "secret")
	require.NoError(t, err)

	t.Run("wrong sign key", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken(token.SignedString, "other-secret", "chat-keeper")
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken(token.SignedString, "secret", "someone-else")
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := GenerateJWTToken("chat-keeper", 7, -time.Minute, "secret")
		require.NoError(t, err)

		_, err = ValidateAndParseJWTToken(expired.SignedString, "secret", "chat-keeper")
		assert.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ValidateAndParseJWTToken("not.a.token", "secret", "chat-keeper")
		assert.Error(t, err)
	})
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "abc.def.ghi"} {
		_, err := ParseBearerToken(header)
		assert.Error(t, err, "header %q", header)
	}
}
