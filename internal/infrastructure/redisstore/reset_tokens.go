package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taranco/contact-directory-api/internal/domain/repository"
)

// ResetTokenStore keeps hashed password-reset link tokens in Redis. The key
// TTL is the challenge expiry, so expired tokens disappear on their own.
type ResetTokenStore struct {
	rdb *redis.Client
}

func NewResetTokenStore(rdb *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{rdb: rdb}
}

func key(tokenHash string) string { return "pwd:reset:token:" + tokenHash }

func (s *ResetTokenStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(tokenHash), userID, ttl).Err()
}

// Lookup returns the user id a token hash was issued for, or
// repository.ErrNotFound when the hash is unknown or expired.
func (s *ResetTokenStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	uid, err := s.rdb.Get(ctx, key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

func (s *ResetTokenStore) Delete(ctx context.Context, tokenHash string) error {
	return s.rdb.Del(ctx, key(tokenHash)).Err()
}
