// internal/domain/identity/bridge.go
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
	"github.com/your-org/ecommerce-storefront/internal/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle of the Google Identity Services library
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	// DefaultErrorMessage is shown when the backend gives no reason
	DefaultErrorMessage = "Google login failed"
	// CSRFCookieName is the double-submit cookie set by Google Identity Services
	CSRFCookieName = "g_csrf_token"
)

var (
	// ErrNotConfigured is returned when no Google client id is set
	ErrNotConfigured = errors.New("google sign-in is not configured")
	// ErrCredentialRequired is returned for an empty credential
	ErrCredentialRequired = errors.New("missing google credential")
	// ErrCSRFMismatch is returned when the double-submit token does not match
	ErrCSRFMismatch = errors.New("failed to verify double submit cookie")
)

// Prompt carries what the browser needs to show the One Tap prompt
type Prompt struct {
	ClientID  string `json:"clientId"`
	ScriptURL string `json:"scriptUrl"`
	LoginURI  string `json:"loginUri"`
	Nonce     string `json:"nonce"`
}

// Action is the outcome of SignIn: exactly one of Prompt or RedirectURL is set
type Action struct {
	Prompt      *Prompt `json:"prompt,omitempty"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
}

// Status is the readiness report exposed to clients
type Status struct {
	State     string `json:"state"`
	Ready     bool   `json:"ready"`
	Error     string `json:"error,omitempty"`
	Fallback  bool   `json:"fallback"`
	CheckedAt string `json:"checkedAt,omitempty"`
}

// Bridge connects the storefront to Google Identity Services and exchanges
// credentials for backend sessions
type Bridge struct {
	clientID    string
	scriptURL   string
	redirectURL string
	loginURI    string
	loadTimeout time.Duration

	httpClient *http.Client
	backend    *backend.Client
	log        *logrus.Logger
	now        func() time.Time

	group     singleflight.Group
	mu        sync.RWMutex
	state     State
	lastErr   error
	checkedAt time.Time
}

// NewBridge creates a new identity bridge
func NewBridge(cfg *config.Config, backendClient *backend.Client, log *logrus.Logger) *Bridge {
	loginURI := strings.TrimRight(cfg.App.PublicURL, "/") + "/api/v1/auth/google/callback"
	loadTimeout := cfg.Google.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 10 * time.Second
	}
	return &Bridge{
		clientID:    cfg.Google.ClientID,
		scriptURL:   cfg.Google.ScriptURL,
		redirectURL: cfg.Google.RedirectURL,
		loginURI:    loginURI,
		loadTimeout: loadTimeout,
		httpClient:  &http.Client{Timeout: loadTimeout},
		backend:     backendClient,
		log:         log,
		now:         time.Now,
	}
}

// State returns the current library state
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Status reports the library state for the status endpoint
func (b *Bridge) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := Status{
		State:    b.state.String(),
		Ready:    b.state == Ready,
		Fallback: b.state != Ready,
	}
	if b.lastErr != nil {
		st.Error = b.lastErr.Error()
	}
	if !b.checkedAt.IsZero() {
		st.CheckedAt = b.checkedAt.UTC().Format(time.RFC3339)
	}
	return st
}

// Init loads the Google Identity Services script once. Concurrent callers
// share a single load; a Ready bridge returns immediately and a Failed one
// tries again.
func (b *Bridge) Init(ctx context.Context) error {
	if b.clientID == "" {
		b.setState(Failed, ErrNotConfigured)
		return ErrNotConfigured
	}
	if b.State() == Ready {
		return nil
	}

	ch := b.group.DoChan("init", func() (interface{}, error) {
		if b.State() == Ready {
			return nil, nil
		}
		b.setState(Initializing, nil)

		// Detached from any single caller so one cancelled request does not
		// fail the load for everyone sharing it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.loadTimeout)
		defer cancel()

		if err := b.loadScript(loadCtx); err != nil {
			b.setState(Failed, err)
			b.log.WithError(err).Warn("⚠️ Google Identity Services failed to load, redirect flow will be used")
			return nil, err
		}

		b.setState(Ready, nil)
		b.log.Info("✅ Google Identity Services ready")
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitReady runs Init if needed and reports whether the prompt flow is usable
func (b *Bridge) WaitReady(ctx context.Context) bool {
	if b.State() == Ready {
		return true
	}
	return b.Init(ctx) == nil
}

// SignIn picks the prompt flow when the library is ready and the redirect
// flow otherwise
func (b *Bridge) SignIn(ctx context.Context) (*Action, error) {
	if b.clientID == "" {
		metrics.SignIns.WithLabelValues("not_configured").Inc()
		return nil, ErrNotConfigured
	}

	if b.WaitReady(ctx) {
		metrics.SignIns.WithLabelValues("prompt").Inc()
		return &Action{Prompt: &Prompt{
			ClientID:  b.clientID,
			ScriptURL: b.scriptURL,
			LoginURI:  b.loginURI,
			Nonce:     uuid.NewString(),
		}}, nil
	}

	metrics.SignIns.WithLabelValues("redirect").Inc()
	return &Action{RedirectURL: b.redirect()}, nil
}

// Resolve exchanges a Google credential for a backend session and signs the
// store in. The store is left untouched on any failure.
func (b *Bridge) Resolve(ctx context.Context, credential string, store *session.Store) (*session.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		metrics.SignIns.WithLabelValues("failed").Inc()
		return nil, ErrCredentialRequired
	}

	if _, err := auth.InspectCredential(credential, b.clientID, b.now()); err != nil {
		metrics.SignIns.WithLabelValues("failed").Inc()
		b.log.WithError(err).Warn("Rejected Google credential before exchange")
		return nil, fmt.Errorf("%s: %w", DefaultErrorMessage, err)
	}

	var raw json.RawMessage
	body := map[string]string{"credential": credential, "token": credential}
	if err := b.backend.Post(ctx, "/auth/google", "", body, &raw); err != nil {
		metrics.SignIns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	token, user, err := session.DecodeAuthResponse(raw)
	if err != nil {
		metrics.SignIns.WithLabelValues("failed").Inc()
		return nil, err
	}

	store.Login(ctx, token, user)
	metrics.SignIns.WithLabelValues("success").Inc()

	fields := logrus.Fields{}
	if user != nil {
		fields["user_id"] = user.ID
	}
	b.log.WithFields(fields).Info("Google sign-in completed")
	return user, nil
}

// SignOut tells the backend (best effort) and clears the session. The
// browser still has to disable Google auto-select or One Tap signs the
// shopper straight back in.
func (b *Bridge) SignOut(ctx context.Context, store *session.Store) {
	if token := store.Token(); token != "" {
		if err := b.backend.Post(ctx, "/auth/logout", token, nil, nil); err != nil {
			b.log.WithError(err).Debug("Backend logout failed")
		}
	}
	store.Logout(ctx)
}

// VerifyCSRF enforces the double-submit check on the GIS callback
func VerifyCSRF(cookieValue, formValue string) error {
	if cookieValue == "" || formValue == "" || cookieValue != formValue {
		return ErrCSRFMismatch
	}
	return nil
}

func (b *Bridge) redirect() string {
	if b.redirectURL != "" {
		return b.redirectURL
	}
	q := url.Values{}
	q.Set("client_id", b.clientID)
	q.Set("redirect_uri", b.loginURI)
	q.Set("response_type", "id_token")
	q.Set("scope", "openid email profile")
	q.Set("response_mode", "form_post")
	q.Set("nonce", uuid.NewString())
	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode()
}

func (b *Bridge) loadScript(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.scriptURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build script request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load google identity script: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to load google identity script: status %d", resp.StatusCode)
	}
	return nil
}

func (b *Bridge) setState(state State, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.lastErr = err
	b.checkedAt = b.now()
}
