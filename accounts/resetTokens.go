package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokens holds single-use password reset tokens.
type ResetTokens interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the user for token and forgets it.
	Take(ctx context.Context, token string) (string, error)
}

const resetKeyPrefix = "password_reset:"

type RedisResetTokens struct {
	rdb redis.Cmdable
}

func NewRedisResetTokens(rdb redis.Cmdable) *RedisResetTokens {
	return &RedisResetTokens{rdb: rdb}
}

func (r *RedisResetTokens) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
}

func (r *RedisResetTokens) Take(ctx context.Context, token string) (string, error) {
	userID, err := r.rdb.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidResetToken
	}
	return userID, err
}
