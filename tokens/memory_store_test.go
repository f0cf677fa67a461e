package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, max int) (*MemoryStore, *time.Time) {
	t.Helper()
	s, err := NewMemoryStore(max, time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStore_RevokeAndCheck(t *testing.T) {
	s, now := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "a", now.Add(time.Minute)))

	revoked, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStore_ExpiredEntriesAreForgotten(t *testing.T) {
	s, now := newTestStore(t, 10)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, "b", now.Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "already-expired", now.Add(-time.Second)))
	assert.Equal(t, 2, s.Len())

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	revoked, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = s.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryStore_SizeBounded(t *testing.T) {
	s, now := newTestStore(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "soon", now.Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, "later", now.Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "latest", now.Add(2*time.Hour)))

	assert.Equal(t, 2, s.Len())
	revoked, _ := s.IsRevoked(ctx, "soon")
	assert.False(t, revoked)
	revoked, _ = s.IsRevoked(ctx, "latest")
	assert.True(t, revoked)
}

func TestNewMemoryStore_RejectsZeroSize(t *testing.T) {
	_, err := NewMemoryStore(0, time.Minute, nil)
	assert.Error(t, err)
}
