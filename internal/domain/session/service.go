// internal/domain/session/service.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

var (
	// ErrInvalidResponse is returned when an auth answer carries no token
	ErrInvalidResponse = errors.New("invalid response")
	// ErrSessionExpired is returned when the backend no longer accepts the token
	ErrSessionExpired = errors.New("your session has expired, please log in again")
	// ErrNotAuthenticated is returned when an operation needs a token and there is none
	ErrNotAuthenticated = errors.New("not authenticated")
)

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshWindow is how close to expiry a token gets refreshed proactively
const RefreshWindow = 5 * time.Minute

// Service exchanges credentials with the backend and keeps the session store in sync
type Service struct {
	backend *backend.Client
	log     *logrus.Logger
	now     func() time.Time
}

// NewService creates a new session service
func NewService(backendClient *backend.Client, log *logrus.Logger) *Service {
	return &Service{
		backend: backendClient,
		log:     log,
		now:     time.Now,
	}
}

// Login authenticates with email and password. The session is only touched
// when the backend answers with a token.
func (s *Service) Login(ctx context.Context, store *Store, req LoginRequest) (*User, error) {
	req.Email = strings.TrimSpace(req.Email)

	var raw json.RawMessage
	if err := s.backend.Post(ctx, "/auth/login", "", req, &raw); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	token, user, err := DecodeAuthResponse(raw)
	if err != nil {
		s.log.WithField("email", req.Email).Warn("Login response carried no token")
		return nil, err
	}

	store.Login(ctx, token, user)
	return user, nil
}

// Logout tells the backend (best effort) and always clears the local session
func (s *Service) Logout(ctx context.Context, store *Store) {
	if token := store.Token(); token != "" {
		if err := s.backend.Post(ctx, "/auth/logout", token, nil, nil); err != nil {
			s.log.WithError(err).Debug("Backend logout failed")
		}
	}
	store.Logout(ctx)
}

// Refresh rotates the stored token through /auth/refresh and re-reads the
// profile from /auth/me when the refresh answer carries none. A rejected
// token logs the session out. A backend without a refresh endpoint (404)
// keeps the current token.
func (s *Service) Refresh(ctx context.Context, store *Store) (*User, error) {
	token := store.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var raw json.RawMessage
	err := s.backend.Post(ctx, "/auth/refresh", token, nil, &raw)
	switch {
	case err == nil:
		rotated, user, decodeErr := DecodeAuthResponse(raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to refresh session: %w", decodeErr)
		}
		token = rotated
		if user != nil {
			store.Login(ctx, token, user)
			return user, nil
		}
	case backend.IsUnauthorized(err):
		store.Logout(ctx)
		return nil, ErrSessionExpired
	case backend.IsNotFound(err):
		s.log.Debug("Backend has no refresh endpoint, keeping token")
	default:
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	user, err := s.profile(ctx, token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			store.Logout(ctx)
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	store.Login(ctx, token, user)
	return user, nil
}

// RefreshIfExpiring refreshes when the stored token expires within window.
// Opaque tokens without a readable expiry are left alone.
func (s *Service) RefreshIfExpiring(ctx context.Context, store *Store, window time.Duration) error {
	token := store.Token()
	if token == "" || !auth.ExpiresWithin(token, s.now(), window) {
		return nil
	}

	if _, err := s.Refresh(ctx, store); err != nil {
		if !errors.Is(err, ErrSessionExpired) {
			s.log.WithError(err).Warn("Proactive session refresh failed")
		}
		return err
	}
	s.log.Debug("Refreshed session ahead of token expiry")
	return nil
}

func (s *Service) profile(ctx context.Context, token string) (*User, error) {
	var raw json.RawMessage
	if err := s.backend.Get(ctx, "/auth/me", nil, token, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

type wireAuth struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"accessToken"`
	AccessSnake string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
	Error       string          `json:"error"`
}

// DecodeAuthResponse pulls the token and user out of a login style answer.
// Token spellings token, accessToken and access_token are accepted.
func DecodeAuthResponse(raw json.RawMessage) (string, *User, error) {
	var w wireAuth
	if err := json.Unmarshal(raw, &w); err != nil {
		return "", nil, ErrInvalidResponse
	}
	if w.Error != "" {
		return "", nil, &backend.APIError{StatusCode: http.StatusOK, Message: w.Error}
	}

	token := strings.TrimSpace(firstNonEmpty(w.Token, w.AccessToken, w.AccessSnake))
	if token == "" {
		return "", nil, ErrInvalidResponse
	}

	var user *User
	if len(w.User) > 0 && string(w.User) != "null" {
		u, err := decodeUser(w.User)
		if err == nil {
			user = u
		}
	}
	return token, user, nil
}

type wireUser struct {
	MongoID        string          `json:"_id"`
	ID             json.RawMessage `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	FirstNameSnake string          `json:"first_name"`
	LastNameSnake  string          `json:"last_name"`
	OrderCount     *int            `json:"orderCount"`
	TotalOrders    *int            `json:"totalOrders"`
	User           json.RawMessage `json:"user"`
}

// decodeUser accepts a bare user object or one nested under "user"
func decodeUser(raw json.RawMessage) (*User, error) {
	var w wireUser
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("invalid user payload: %w", err)
	}
	if len(w.User) > 0 && string(w.User) != "null" && w.Email == "" {
		return decodeUser(w.User)
	}

	u := &User{
		ID:    firstNonEmpty(idString(w.ID), w.MongoID),
		Email: w.Email,
		Name:  strings.TrimSpace(w.Name),
	}
	if u.Name == "" {
		first := firstNonEmpty(w.FirstName, w.FirstNameSnake)
		last := firstNonEmpty(w.LastName, w.LastNameSnake)
		u.Name = strings.TrimSpace(first + " " + last)
	}
	switch {
	case w.OrderCount != nil:
		u.OrderCount = *w.OrderCount
	case w.TotalOrders != nil:
		u.OrderCount = *w.TotalOrders
	}
	return u, nil
}

// idString accepts string and numeric ids
func idString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
