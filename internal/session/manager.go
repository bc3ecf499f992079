// Package session implements server-side sessions backed by Redis. Clients
// hold only an opaque token; the server-side record stores the authenticated
// user's id and nothing else, so user data is always re-fetched fresh from
// the primary store by whoever needs it.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Manager issues, validates, and destroys sessions.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewManager creates a session manager. ttl bounds the lifetime of each
// session; validation renews it (sliding expiration).
func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	return &Manager{client: client, ttl: ttl}
}

// Create issues a new session bound to userID and returns its opaque token.
// Multiple concurrent sessions per user are allowed; each token is
// independent.
func (m *Manager) Create(ctx context.Context, userID uint) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("session store unavailable")
	}

	// Two v4 UUIDs worth of entropy; the token carries no structure.
	token := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")

	err := m.client.Set(ctx, keyPrefix+token, strconv.FormatUint(uint64(userID), 10), m.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Validate resolves a token to the bound user id. The second return is false
// when the token is unknown or expired; a non-nil error means the store
// itself failed and nothing can be said about the token.
func (m *Manager) Validate(ctx context.Context, token string) (uint, bool, error) {
	if m.client == nil {
		return 0, false, fmt.Errorf("session store unavailable")
	}
	if token == "" {
		return 0, false, nil
	}

	// GETEX renews the TTL on every successful validation.
	val, err := m.client.GetEx(ctx, keyPrefix+token, m.ttl).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		// Corrupt record; treat as no session rather than failing the request.
		return 0, false, nil
	}
	return uint(userID), true, nil
}

// Destroy removes the session. A store failure is returned to the caller:
// a failed destroy must not be reported as a successful logout. Destroying
// an already-absent token succeeds.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if m.client == nil {
		return fmt.Errorf("session store unavailable")
	}
	if err := m.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
