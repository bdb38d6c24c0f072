package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// SessionRepository stores sessions as JSON in Redis and keeps a per-user
// index so every session of a user can be signed out at once.
type SessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewSessionRepository(rdb redis.Cmdable, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }
func userSessionsKey(uid string) string { return userSessionKeyPrefix + uid }

// Load returns the stored session, or a fresh one under the same id when
// nothing is stored.
func (r *SessionRepository) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	if s.ID == "" {
		s.ID = id
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = r.now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), raw, r.ttl)
		if s.UserID != "" {
			pipe.SAdd(ctx, userSessionsKey(s.UserID), s.ID)
			pipe.Expire(ctx, userSessionsKey(s.UserID), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

// RevokeUser signs out every session still belonging to userID and leaves
// notice on it. It returns how many sessions were signed out.
func (r *SessionRepository) RevokeUser(ctx context.Context, userID, notice string) (int, error) {
	ids, err := r.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("listing sessions of %s: %w", userID, err)
	}
	revoked := 0
	for _, id := range ids {
		s, err := r.Load(ctx, id)
		if err != nil {
			return revoked, err
		}
		if s.UserID != userID {
			continue
		}
		s.Logout()
		s.Notice = notice
		if err := r.Save(ctx, s); err != nil {
			return revoked, err
		}
		revoked++
	}
	if err := r.rdb.Del(ctx, userSessionsKey(userID)).Err(); err != nil {
		return revoked, err
	}
	return revoked, nil
}
