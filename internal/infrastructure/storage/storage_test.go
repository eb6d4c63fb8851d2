package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, err := m.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Save(ctx, "k", []byte(`{"a":1}`)))
	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	m := NewMemory(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, "k", []byte("v")))

	now = now.Add(59 * time.Minute)
	_, err := m.Load(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "storefront:abc:auth-storage", Key("storefront", "abc", "auth-storage"))
	assert.Equal(t, "abc:cart-storage", Key("", "abc", "cart-storage"))
}
