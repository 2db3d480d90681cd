package agent

import (
	"context"
	"fmt"
	"time"
)

type sessionKeyContext struct{}

const sessionNamespace = "cardioagent:session"

// WithSessionKey sets the routing key of the session in the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the routing key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

// SessionStore loads and saves the session routed by the context.
type SessionStore struct {
	store Store[*Session]
	now   func() time.Time
}

func NewSessionStore(core Cache[*Session]) *SessionStore {
	return &SessionStore{
		store: NewStore(core, sessionNamespace, SessionKeyFromContext),
		now:   time.Now,
	}
}

// Load returns the stored session, or a fresh idle one.
func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	sess, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || sess == nil {
		key, _ := SessionKeyFromContext(ctx)
		return NewSession(key), nil
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	if err := s.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context) error {
	if err := s.store.Del(ctx); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
