package identity

import (
	"context"
	"sync"
)

// Session is the per-request view of who is signed in. It starts out resolving and
// settles once the manager has checked the presented token. Only the Manager writes to it.
type Session struct {
	mu          sync.RWMutex
	current     Principal
	token       string
	subscribers map[int]chan Principal
	nextID      int
	published   bool

	resolved    chan struct{}
	resolveOnce sync.Once
}

func newSession(token string) *Session {
	return &Session{
		token:       token,
		subscribers: make(map[int]chan Principal),
		resolved:    make(chan struct{}),
	}
}

// NewResolvedSession returns a session that is already settled on p. It is used where the
// principal is known up front, such as background jobs.
func NewResolvedSession(p Principal, token string) *Session {
	s := newSession(token)
	s.publish(p, token)
	s.resolve()
	return s
}

// Current returns the latest published principal. Before resolution it is always nil,
// which is indistinguishable from anonymity; use WaitResolved when that matters.
func (s *Session) Current() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the access token currently backing the session.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Resolved is closed once the first resolution has completed, successful or not.
func (s *Session) Resolved() <-chan struct{} {
	return s.resolved
}

// Resolving reports whether the session is still being resolved.
func (s *Session) Resolving() bool {
	select {
	case <-s.resolved:
		return false
	default:
		return true
	}
}

// WaitResolved blocks until the session is resolved and returns the principal at that
// point.
func (s *Session) WaitResolved(ctx context.Context) (Principal, error) {
	select {
	case <-s.resolved:
		return s.Current(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe returns a channel that receives the current principal immediately and every
// later change. Slow readers only ever see the latest value. Call the returned function
// to stop receiving.
func (s *Session) Subscribe() (<-chan Principal, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Principal, 1)
	ch <- s.current
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// publish replaces the current principal and notifies subscribers.
func (s *Session) publish(p Principal, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(p, token)
}

// publishInitial publishes the outcome of token resolution unless a sign-in or sign-out
// has already published a newer value.
func (s *Session) publishInitial(p Principal, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published {
		return
	}
	s.publishLocked(p, token)
}

func (s *Session) publishLocked(p Principal, token string) {
	s.published = true
	s.current = p
	s.token = token
	for _, ch := range s.subscribers {
		// Drop a stale unread value so the newest one always fits.
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}

// resolve marks the first resolution as done. Later calls are no-ops.
func (s *Session) resolve() {
	s.resolveOnce.Do(func() { close(s.resolved) })
}

type contextKey struct{}

// WithSession attaches a session to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
