package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewService(backend.New(srv.URL, srv.Client(), 0, logger.Discard()), logger.Discard())
	store := Load(context.Background(), storage.NewMemory(0), testKey, logger.Discard())
	return svc, store
}

func TestLoginNormalizesTokenAndUser(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"Login successful","data":{
			"access_token":"tok-1",
			"user":{"id":42,"email":"asha@example.com","first_name":"Asha","last_name":"Rao","totalOrders":3}
		}}`))
	})

	user, err := svc.Login(context.Background(), store, LoginRequest{Email: " asha@example.com ", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, &User{ID: "42", Email: "asha@example.com", Name: "Asha Rao", OrderCount: 3}, user)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-1", store.Token())
}

func TestLoginWithoutTokenLeavesSessionUntouched(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"_id":"u1","email":"a@b.test"}}`))
	})

	_, err := svc.Login(context.Background(), store, LoginRequest{Email: "a@b.test", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, "invalid response", err.Error())
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.User())
}

func TestLoginRejected(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
	})

	_, err := svc.Login(context.Background(), store, LoginRequest{Email: "a@b.test", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", backend.MessageOf(err, "Login failed"))
	assert.False(t, store.IsAuthenticated())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	var sawToken string
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		sawToken = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusInternalServerError)
	})
	store.Login(context.Background(), "tok", &User{ID: "u1"})

	svc.Logout(context.Background(), store)

	assert.Equal(t, "Bearer tok", sawToken)
	assert.False(t, store.IsAuthenticated())
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r.Method+" "+r.URL.Path)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func TestRefreshRotatesToken(t *testing.T) {
	var calls callLog
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.add(r)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok-2","user":{"_id":"u1","email":"a@b.test","orderCount":7}}}`))
	})
	store.Login(context.Background(), "tok", &User{ID: "u1", OrderCount: 1})

	user, err := svc.Refresh(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /auth/refresh"}, calls.list())
	assert.Equal(t, 7, user.OrderCount)
	assert.Equal(t, "tok-2", store.Token())
	assert.Equal(t, 7, store.User().OrderCount)
}

func TestRefreshReadsProfileWhenRefreshHasNoUser(t *testing.T) {
	var calls callLog
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.add(r)
		switch r.URL.Path {
		case "/auth/refresh":
			_, _ = w.Write([]byte(`{"accessToken":"tok-2"}`))
		case "/auth/me":
			assert.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"Asha","orderCount":3}}`))
		}
	})
	store.Login(context.Background(), "tok", &User{ID: "u1"})

	user, err := svc.Refresh(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /auth/refresh", "GET /auth/me"}, calls.list())
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, "tok-2", store.Token())
}

func TestRefreshWithoutRefreshEndpointKeepsToken(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "/auth/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"_id":"u1","email":"a@b.test","name":"Asha","orderCount":7}}}`))
	})
	store.Login(context.Background(), "tok", &User{ID: "u1", OrderCount: 1})

	user, err := svc.Refresh(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 7, user.OrderCount)
	assert.Equal(t, "tok", store.Token())
}

func expiringToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestRefreshIfExpiring(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		token   string
		refresh bool
	}{
		{"expires soon", expiringToken(t, now.Add(time.Minute)), true},
		{"already expired", expiringToken(t, now.Add(-time.Minute)), true},
		{"plenty of time", expiringToken(t, now.Add(time.Hour)), false},
		{"opaque token", "opaque-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var refreshed atomic.Bool
			svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/refresh", r.URL.Path)
				refreshed.Store(true)
				_, _ = w.Write([]byte(`{"token":"fresh","user":{"id":"u1"}}`))
			})
			svc.now = func() time.Time { return now }
			store.Login(context.Background(), tt.token, &User{ID: "u1"})

			require.NoError(t, svc.RefreshIfExpiring(context.Background(), store, RefreshWindow))
			assert.Equal(t, tt.refresh, refreshed.Load())
			if tt.refresh {
				assert.Equal(t, "fresh", store.Token())
			}
		})
	}
}

func TestRefreshIfExpiringLogsOutRejectedToken(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	store.Login(context.Background(), expiringToken(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)), &User{ID: "u1"})

	err := svc.RefreshIfExpiring(context.Background(), store, RefreshWindow)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, store.IsAuthenticated())
}

func TestRefreshUnauthorizedLogsOut(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store.Login(context.Background(), "expired", &User{ID: "u1"})

	_, err := svc.Refresh(context.Background(), store)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, store.IsAuthenticated())
}

func TestRefreshWithoutToken(t *testing.T) {
	svc, store := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	})

	_, err := svc.Refresh(context.Background(), store)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDecodeAuthResponseErrorField(t *testing.T) {
	_, _, err := DecodeAuthResponse([]byte(`{"error":"Google account not linked"}`))
	require.Error(t, err)
	assert.Equal(t, "Google account not linked", backend.MessageOf(err, "fallback"))

	_, _, err = DecodeAuthResponse([]byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
