package credstore

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vamshidandi/jobportal/internal/crypto"
	"github.com/vamshidandi/jobportal/internal/domain"
)

const (
	credentialsKey = "jobportal:credentials"

	fieldAccess  = "access"
	fieldRefresh = "refresh"
)

// RedisStore keeps the token pair in a Redis hash so gateway deployments
// survive restarts without local disk. Both fields are written in a single
// HSET, preserving the pair invariant.
type RedisStore struct {
	rdb    *goredis.Client
	cipher crypto.Cipher
}

func NewRedisStore(rdb *goredis.Client, cipher crypto.Cipher) *RedisStore {
	if cipher == nil {
		cipher = crypto.Noop{}
	}
	return &RedisStore{rdb: rdb, cipher: cipher}
}

// NewRedisClient creates a go-redis client from a URL
// (e.g. "redis://localhost:6379") and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Save(ctx context.Context, pair domain.TokenPair) error {
	if !pair.Complete() {
		return fmt.Errorf("refusing to save partial token pair")
	}

	access, err := s.cipher.Encrypt(pair.Access)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := s.cipher.Encrypt(pair.Refresh)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	err = s.rdb.HSet(ctx, credentialsKey, map[string]any{
		fieldAccess:  access,
		fieldRefresh: refresh,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Load returns the stored pair. A missing hash, a partial hash, or an
// unreachable Redis all report "absent"; the error is returned alongside so
// callers can log the degraded case, but absence is never fatal.
func (s *RedisStore) Load(ctx context.Context) (domain.TokenPair, bool, error) {
	values, err := s.rdb.HGetAll(ctx, credentialsKey).Result()
	if err != nil {
		return domain.TokenPair{}, false, fmt.Errorf("failed to load credentials: %w", err)
	}
	if len(values) == 0 {
		return domain.TokenPair{}, false, nil
	}

	access, err := s.cipher.Decrypt(values[fieldAccess])
	if err != nil {
		return domain.TokenPair{}, false, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refresh, err := s.cipher.Decrypt(values[fieldRefresh])
	if err != nil {
		return domain.TokenPair{}, false, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	pair := domain.TokenPair{Access: access, Refresh: refresh}
	if !pair.Complete() {
		return domain.TokenPair{}, false, nil
	}
	return pair, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, credentialsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
