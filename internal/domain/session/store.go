// internal/domain/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
)

// Store owns one client's session and mirrors every mutation to storage.
// Mutations never fail: persistence errors are logged and the in-memory
// state still changes.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	key     string
	state   Session
	log     *logrus.Entry
}

// Load restores the session persisted under key. A missing or corrupt
// value yields a logged-out session.
func Load(ctx context.Context, st storage.Storage, key string, log *logrus.Logger) *Store {
	s := &Store{
		storage: st,
		key:     key,
		log:     log.WithField("slot", key),
	}

	raw, err := st.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).Warn("Failed to load session, treating as logged out")
		}
		return s
	}

	var persisted Session
	if err := json.Unmarshal(raw, &persisted); err != nil {
		s.log.WithError(err).Warn("Corrupt session blob, treating as logged out")
		return s
	}

	s.state = persisted.normalize()
	if !s.state.IsAuthenticated {
		s.state.User = nil
	}
	return s
}

// Login sets the authenticated state. An empty token leaves the session
// logged out.
func (s *Store) Login(ctx context.Context, token string, user *User) {
	s.mu.Lock()
	s.state = Session{Token: token, User: user}.normalize()
	if !s.state.IsAuthenticated {
		s.state.User = nil
	}
	snapshot := s.state
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Logout clears the session and its persisted copy
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.log.WithError(err).Warn("Failed to delete persisted session")
	}
}

// SetToken replaces the token only
func (s *Store) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.state.Token = token
	s.state = s.state.normalize()
	snapshot := s.state
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// SetUser replaces the user profile only
func (s *Store) SetUser(ctx context.Context, user *User) {
	s.mu.Lock()
	s.state.User = user
	snapshot := s.state
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// Token returns the current token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsAuthenticated reports whether a token is held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// User returns a copy of the current profile
func (s *Store) User() *User {
	return s.Snapshot().User
}

func (s *Store) persist(ctx context.Context, state Session) {
	raw, err := json.Marshal(state)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode session")
		return
	}
	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		s.log.WithError(err).Warn("Failed to persist session")
	}
}
