// Package redis provides Redis-backed adapters.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	apperrors "github.com/intervue/intervue-api/internal/errors"
	"github.com/intervue/intervue-api/internal/ports"
)

const (
	defaultSessionPrefix = "intervue:session:"
	userIndexInfix       = "by-subject:"
)

// ErrNotFound is returned when a session is missing or already expired.
var ErrNotFound = apperrors.NotFound("session not found")

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Client redis.UniversalClient // Required
	Prefix string                // Optional, defaults to "intervue:session:"
}

// SessionStore keeps sessions as JSON values whose TTL tracks Session.ExpiresAt.
// Each subject also gets a set of its session IDs so all of a user's sessions
// can be revoked at once.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(opts SessionStoreOptions) (*SessionStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	return &SessionStore{client: opts.Client, prefix: prefix, now: time.Now}, nil
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

func (s *SessionStore) subjectKey(subject string) string { return s.prefix + userIndexInfix + subject }

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.ID), data, ttl)
		if sess.Subject != "" {
			idx := s.subjectKey(sess.Subject)
			pipe.SAdd(ctx, idx, sess.ID)
			// Refreshed on every login.
			pipe.Expire(ctx, idx, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ErrNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteAllForSubject revokes every session recorded for subject and returns how many
// session keys were removed.
func (s *SessionStore) DeleteAllForSubject(ctx context.Context, subject string) (int64, error) {
	if subject == "" {
		return 0, nil
	}
	idx := s.subjectKey(subject)
	ids, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list sessions: %w", err)
	}
	// One key per DEL: session keys hash to different cluster slots.
	removed := make([]*redis.IntCmd, 0, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			removed = append(removed, pipe.Del(ctx, s.key(id)))
		}
		pipe.Del(ctx, idx)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis revoke sessions: %w", err)
	}
	var n int64
	for _, cmd := range removed {
		n += cmd.Val()
	}
	return n, nil
}
