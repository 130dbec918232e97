package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret-b"))
	require.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateToken("user-123", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt", []byte("secret"))
	require.Error(t, err)
}
