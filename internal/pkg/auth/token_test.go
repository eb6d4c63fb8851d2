package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientID = "1234.apps.googleusercontent.com"

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectCredential(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	valid := CredentialClaims{
		Email: "asha@example.com",
		Name:  "Asha",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Audience:  jwt.ClaimStrings{clientID},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	claims, err := InspectCredential(sign(t, valid), clientID, now)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", claims.Email)

	tests := []struct {
		name   string
		mutate func(c *CredentialClaims)
		want   error
	}{
		{"other audience", func(c *CredentialClaims) { c.Audience = jwt.ClaimStrings{"other"} }, ErrAudienceMismatch},
		{"expired", func(c *CredentialClaims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute)) }, ErrCredentialExpired},
		{"foreign issuer", func(c *CredentialClaims) { c.Issuer = "https://evil.example" }, ErrUntrustedIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			_, err := InspectCredential(sign(t, c), clientID, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInspectCredentialRejectsGarbage(t *testing.T) {
	for _, credential := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		_, err := InspectCredential(credential, clientID, time.Now())
		assert.ErrorIs(t, err, ErrMalformedCredential, credential)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute))})

	exp, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(10*time.Minute)))

	assert.False(t, ExpiresWithin(token, now, 5*time.Minute))
	assert.True(t, ExpiresWithin(token, now, 15*time.Minute))

	_, ok = TokenExpiry("opaque-session-token")
	assert.False(t, ok)
	assert.False(t, ExpiresWithin("opaque-session-token", now, time.Hour))
}
