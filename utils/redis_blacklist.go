package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyRevokedToken: revoked:{sha256(token)} -> "1", TTL = remaining token lifetime
const keyRevokedToken = "revoked:"

// RedisBlacklist shares revoked tokens between server replicas.
type RedisBlacklist struct {
	rdb *redis.Client
}

func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func (b *RedisBlacklist) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, revokedKey(token), "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := b.rdb.Get(ctx, revokedKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyRevokedToken + hex.EncodeToString(sum[:])
}
