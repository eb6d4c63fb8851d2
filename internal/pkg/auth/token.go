// internal/pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedCredential is returned when a credential is not a JWT
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrAudienceMismatch is returned when a credential was issued for another client
	ErrAudienceMismatch = errors.New("credential issued for a different client")
	// ErrCredentialExpired is returned when a credential is past its expiry
	ErrCredentialExpired = errors.New("credential expired")
	// ErrUntrustedIssuer is returned when a credential was not issued by Google
	ErrUntrustedIssuer = errors.New("credential issuer not trusted")
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// CredentialClaims represents the claims of a Google ID token
type CredentialClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Nonce         string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// InspectCredential reads a Google ID token without verifying its signature.
// Signature verification is the backend's job; this only rejects credentials
// that can never be accepted so the round trip is skipped.
func InspectCredential(credential, clientID string, now time.Time) (*CredentialClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMalformedCredential
	}

	claims := &CredentialClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	if claims.Issuer != "" && !slices.Contains(googleIssuers, claims.Issuer) {
		return nil, ErrUntrustedIssuer
	}
	if clientID != "" && !slices.Contains(claims.Audience, clientID) {
		return nil, ErrAudienceMismatch
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrCredentialExpired
	}

	return claims, nil
}

// TokenExpiry returns the exp claim of a backend access token. Opaque tokens
// report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExpiresWithin reports whether token expires before now+window. Tokens
// without a readable expiry never do.
func ExpiresWithin(token string, now time.Time, window time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !now.Add(window).Before(exp)
}
