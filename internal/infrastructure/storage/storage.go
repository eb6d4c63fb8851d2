// internal/infrastructure/storage/storage.go
package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a slot holds no value
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable key-value slot holder for serialized client state.
// Each browser client owns a handful of keys; values are opaque blobs.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by drivers that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Key builds the storage key for a client slot
func Key(prefix, clientID, slot string) string {
	if prefix == "" {
		return clientID + ":" + slot
	}
	return prefix + ":" + clientID + ":" + slot
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory keeps client state in process memory. Used in development and tests.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-memory storage. A zero ttl keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load returns the value stored under key
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Save stores value under key
func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes key
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Ping always succeeds
func (m *Memory) Ping(context.Context) error {
	return nil
}
