package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "paygate", "paygate", time.Hour)

	token, err := a.GenerateToken("ops")
	require.NoError(t, err)

	parsed, err := a.ValidateToken(token)
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "paygate", "paygate", time.Hour)
	good, err := a.GenerateToken("ops")
	require.NoError(t, err)

	otherSecret, err := NewJWTAuthenticator("other", "paygate", "paygate", time.Hour).GenerateToken("ops")
	require.NoError(t, err)
	otherIssuer, err := NewJWTAuthenticator("secret", "paygate", "someone-else", time.Hour).GenerateToken("ops")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(-time.Minute).Unix(),
		"iss": "paygate",
		"aud": "paygate",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops", "iss": "paygate", "aud": "paygate",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"expired":      expired,
		"no expiry":    noExpiry,
		"garbage":      "not.a.token",
		"tampered":     good + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestJWTAuthenticator_RequiresConfig(t *testing.T) {
	_, err := NewJWTAuthenticator("", "a", "i", 0).GenerateToken("ops")
	assert.Error(t, err)

	_, err = NewJWTAuthenticator("secret", "a", "i", 0).GenerateToken("  ")
	assert.Error(t, err)

	_, err = NewJWTAuthenticator("", "a", "i", 0).ValidateToken("x")
	assert.Error(t, err)
}
