package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type sessionBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// SessionStore keeps the server side record of signed-in sessions so tokens can be revoked.
type SessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

// NewSessionStore builds a session store on top of a Redis-like backend.
func NewSessionStore(backend sessionBackend, ttl time.Duration) (*SessionStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("session backend is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &SessionStore{backend: backend, ttl: ttl}, nil
}

// Create opens a session for uid and returns its id.
func (s *SessionStore) Create(ctx context.Context, uid string) (string, error) {
	if strings.TrimSpace(uid) == "" {
		return "", fmt.Errorf("uid is required")
	}
	id := uuid.NewString()
	if err := s.backend.Set(ctx, s.backend.SessionKey(id), uid, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Lookup returns the uid owning the session, or "" when it is unknown or expired.
func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", nil
	}
	uid, err := s.backend.Get(ctx, s.backend.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return uid, nil
}

// Revoke ends a session.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if err := s.backend.Del(ctx, s.backend.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
