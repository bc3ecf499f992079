package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(client, ttl), mr
}

func TestCreateAndValidate(t *testing.T) {
	m, _ := setupManager(t, time.Hour)
	ctx := context.Background()

	token, err := m.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, ok, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)
}

func TestValidateUnknownToken(t *testing.T) {
	m, _ := setupManager(t, time.Hour)

	_, ok, err := m.Validate(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateEmptyToken(t *testing.T) {
	m, _ := setupManager(t, time.Hour)

	_, ok, err := m.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDestroyInvalidatesToken(t *testing.T) {
	m, _ := setupManager(t, time.Hour)
	ctx := context.Background()

	token, err := m.Create(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, token))

	_, ok, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDestroyAbsentTokenSucceeds(t *testing.T) {
	m, _ := setupManager(t, time.Hour)
	assert.NoError(t, m.Destroy(context.Background(), "already-gone"))
}

func TestSessionExpires(t *testing.T) {
	m, mr := setupManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, 9)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, ok, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateRenewsTTL(t *testing.T) {
	m, mr := setupManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, 9)
	require.NoError(t, err)

	// Keep touching the session just under the TTL; it must stay alive.
	for i := 0; i < 3; i++ {
		mr.FastForward(45 * time.Second)
		_, ok, err := m.Validate(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestConcurrentSessionsPerUser(t *testing.T) {
	m, _ := setupManager(t, time.Hour)
	ctx := context.Background()

	first, err := m.Create(ctx, 5)
	require.NoError(t, err)
	second, err := m.Create(ctx, 5)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Destroying one session leaves the other intact.
	require.NoError(t, m.Destroy(ctx, first))
	_, ok, err := m.Validate(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDestroySurfacesStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := NewManager(client, time.Hour)

	token, err := m.Create(context.Background(), 3)
	require.NoError(t, err)

	// Simulate the backing store going away mid-flight.
	mr.Close()
	_ = client.Close()

	assert.Error(t, m.Destroy(context.Background(), token))
}
