package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type counterBackend interface {
	Get(ctx context.Context, key string) (string, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Del(ctx context.Context, keys ...string) error
	SignInAttemptsKey(email string) string
}

// Throttle locks an email out of password sign-in after too many consecutive failures.
type Throttle struct {
	backend     counterBackend
	maxAttempts int64
	window      time.Duration
}

// NewThrottle builds a fixed-window failure counter.
func NewThrottle(backend counterBackend, maxAttempts int, window time.Duration) *Throttle {
	return &Throttle{backend: backend, maxAttempts: int64(maxAttempts), window: window}
}

// Allowed reports whether email may attempt another sign-in.
func (t *Throttle) Allowed(ctx context.Context, email string) (bool, error) {
	raw, err := t.backend.Get(ctx, t.backend.SignInAttemptsKey(email))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read sign-in attempts: %w", err)
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true, nil
	}
	return count < t.maxAttempts, nil
}

// Fail records a failed attempt.
func (t *Throttle) Fail(ctx context.Context, email string) error {
	if _, err := t.backend.IncrWithTTL(ctx, t.backend.SignInAttemptsKey(email), t.window); err != nil {
		return fmt.Errorf("failed to record sign-in attempt: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful sign-in.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	if err := t.backend.Del(ctx, t.backend.SignInAttemptsKey(email)); err != nil {
		return fmt.Errorf("failed to reset sign-in attempts: %w", err)
	}
	return nil
}
