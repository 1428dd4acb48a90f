package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"iasctl/internal/tokencodec"
	"iasctl/pkg/oauth"
)

// DefaultRedisKeyPrefix namespaces token keys in Redis.
const DefaultRedisKeyPrefix = "iasctl:tokens"

// RedisStorage keeps encrypted token sets in Redis so several processes can
// share one session.
type RedisStorage struct {
	client redis.UniversalClient
	codec  *tokencodec.Codec
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithKeyPrefix overrides DefaultRedisKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStorage) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithTTL expires stored token sets after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStorage) {
		r.ttl = ttl
	}
}

// NewRedisStorage creates a RedisStorage over client.
func NewRedisStorage(client redis.UniversalClient, codec *tokencodec.Codec, opts ...RedisOption) *RedisStorage {
	r := &RedisStorage{
		client: client,
		codec:  codec,
		prefix: DefaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStorage) redisKey(key Key) string {
	return r.prefix + ":" + key.Hash()
}

// Load implements Storage.
func (r *RedisStorage) Load(ctx context.Context, key Key) (*oauth.Token, error) {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return r.codec.WithPurpose(key.purpose()...).Unprotect(raw)
}

// Save implements Storage.
func (r *RedisStorage) Save(ctx context.Context, key Key, token *oauth.Token) error {
	blob, err := r.codec.WithPurpose(key.purpose()...).Protect(token)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.redisKey(key), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements Storage.
func (r *RedisStorage) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
