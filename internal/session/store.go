// Package session maps opaque cookie tokens to user identifiers behind a
// pluggable backend: in-memory for single-instance deployments, Redis when
// multiple instances share traffic. Neither backend promises durability;
// losing sessions on restart is an accepted property of the memory store.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the token does not resolve to a session.
var ErrNotFound = errors.New("session not found")

// Store is the backend contract shared by the memory and redis
// implementations.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

// newToken returns an opaque session identifier. Tokens carry no claims;
// all state lives server-side.
func newToken() string {
	return uuid.NewString()
}

type memoryEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}
