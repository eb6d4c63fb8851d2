package identity

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
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

const testClientID = "1234.apps.googleusercontent.com"

type fixture struct {
	bridge      *Bridge
	scriptLoads *int32
	store       *session.Store
}

func newFixture(t *testing.T, scriptStatus int, backendHandler http.HandlerFunc) fixture {
	t.Helper()

	var loads int32
	script := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(scriptStatus)
	}))
	t.Cleanup(script.Close)

	if backendHandler == nil {
		backendHandler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected backend call %s", r.URL.Path)
		}
	}
	api := httptest.NewServer(backendHandler)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		App: config.AppConfig{PublicURL: "https://shop.example"},
		Google: config.GoogleConfig{
			ClientID:    testClientID,
			ScriptURL:   script.URL + "/gsi/client",
			LoadTimeout: time.Second,
		},
	}

	b := NewBridge(cfg, backend.New(api.URL, api.Client(), 0, logger.Discard()), logger.Discard())
	b.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	store := session.Load(context.Background(), storage.NewMemory(0), "storefront:c1:auth-storage", logger.Discard())
	return fixture{bridge: b, scriptLoads: &loads, store: store}
}

func credential(t *testing.T, aud string, exp time.Time) string {
	t.Helper()
	claims := auth.CredentialClaims{
		Email: "asha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestInitLoadsScriptOnceForConcurrentCallers(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.bridge.Init(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, Ready, f.bridge.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(f.scriptLoads))

	require.NoError(t, f.bridge.Init(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(f.scriptLoads))
}

func TestInitFailureCanBeRetried(t *testing.T) {
	f := newFixture(t, http.StatusServiceUnavailable, nil)

	require.Error(t, f.bridge.Init(context.Background()))
	assert.Equal(t, Failed, f.bridge.State())
	assert.True(t, f.bridge.Status().Fallback)
	assert.NotEmpty(t, f.bridge.Status().Error)

	require.Error(t, f.bridge.Init(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(f.scriptLoads))
}

func TestSignInPromptWhenReady(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)

	action, err := f.bridge.SignIn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, action.Prompt)
	assert.Empty(t, action.RedirectURL)
	assert.Equal(t, testClientID, action.Prompt.ClientID)
	assert.Equal(t, "https://shop.example/api/v1/auth/google/callback", action.Prompt.LoginURI)
	assert.NotEmpty(t, action.Prompt.Nonce)
	assert.Equal(t, "ready", f.bridge.Status().State)
}

func TestSignInFallsBackToRedirect(t *testing.T) {
	f := newFixture(t, http.StatusNotFound, nil)

	action, err := f.bridge.SignIn(context.Background())
	require.NoError(t, err)
	assert.Nil(t, action.Prompt)
	assert.Contains(t, action.RedirectURL, "https://accounts.google.com/o/oauth2/v2/auth?")
	assert.Contains(t, action.RedirectURL, "client_id="+testClientID)
}

func TestSignInNotConfigured(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)
	f.bridge.clientID = ""

	_, err := f.bridge.SignIn(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveSignsIn(t *testing.T) {
	f := newFixture(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/google", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"accessToken":"tok-g","user":{"_id":"u7","email":"asha@example.com","name":"Asha"}}}`))
	})

	cred := credential(t, testClientID, f.bridge.now().Add(time.Hour))
	user, err := f.bridge.Resolve(context.Background(), cred, f.store)
	require.NoError(t, err)

	assert.Equal(t, "u7", user.ID)
	assert.True(t, f.store.IsAuthenticated())
	assert.Equal(t, "tok-g", f.store.Token())
}

func TestResolveFailuresLeaveSessionUntouched(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		cred    func(f fixture) string
	}{
		{
			name: "error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"Account disabled"}`))
			},
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid Google token"}`))
			},
		},
		{
			name: "no token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"user":{"id":"u1"}}`))
			},
		},
		{
			name: "wrong audience",
			cred: func(f fixture) string {
				return credential(t, "someone-else", f.bridge.now().Add(time.Hour))
			},
		},
		{
			name: "expired",
			cred: func(f fixture) string {
				return credential(t, testClientID, f.bridge.now().Add(-time.Hour))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, tt.handler)
			cred := credential(t, testClientID, f.bridge.now().Add(time.Hour))
			if tt.cred != nil {
				cred = tt.cred(f)
			}

			_, err := f.bridge.Resolve(context.Background(), cred, f.store)
			require.Error(t, err)
			assert.False(t, f.store.IsAuthenticated())
			assert.Nil(t, f.store.User())
		})
	}
}

func TestResolveEmptyCredential(t *testing.T) {
	f := newFixture(t, http.StatusOK, nil)
	_, err := f.bridge.Resolve(context.Background(), "  ", f.store)
	assert.ErrorIs(t, err, ErrCredentialRequired)
}

func TestSignOut(t *testing.T) {
	var logouts int32
	f := newFixture(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		atomic.AddInt32(&logouts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	f.store.Login(context.Background(), "tok", &session.User{ID: "u1"})

	f.bridge.SignOut(context.Background(), f.store)
	assert.False(t, f.store.IsAuthenticated())
	assert.Equal(t, int32(1), atomic.LoadInt32(&logouts))

	// Already signed out: nothing to tell the backend
	f.bridge.SignOut(context.Background(), f.store)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logouts))
}

func TestVerifyCSRF(t *testing.T) {
	assert.NoError(t, VerifyCSRF("abc", "abc"))
	assert.ErrorIs(t, VerifyCSRF("abc", "xyz"), ErrCSRFMismatch)
	assert.ErrorIs(t, VerifyCSRF("", ""), ErrCSRFMismatch)
}
