package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements PreferenceStorer with one key per preference under
// storefront:<profile>:*. The recently viewed list is a Redis list kept in
// most-recent-first order.
type RedisStore struct {
	rdb     *redis.Client
	profile string
}

// NewRedisStore creates a RedisStore bound to profile.
func NewRedisStore(rdb *redis.Client, profile string) (*RedisStore, error) {
	if profile == "" {
		return nil, ErrEmptyProfile
	}
	return &RedisStore{rdb: rdb, profile: profile}, nil
}

func (s *RedisStore) key(name string) string {
	return "storefront:" + s.profile + ":" + name
}

func (s *RedisStore) getString(ctx context.Context, name string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: redis GET %s: %w", name, err)
	}
	return v, nil
}

func (s *RedisStore) Language(ctx context.Context) (string, error) {
	return s.getString(ctx, "language")
}

func (s *RedisStore) SetLanguage(ctx context.Context, lang string) error {
	if err := s.rdb.Set(ctx, s.key("language"), lang, 0).Err(); err != nil {
		return fmt.Errorf("store: redis SET language: %w", err)
	}
	return nil
}

func (s *RedisStore) RecentlyViewed(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.LRange(ctx, s.key("recent"), 0, RecentlyViewedCap-1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis LRANGE recent: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) PushRecentlyViewed(ctx context.Context, productID string) ([]string, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}
	key := s.key("recent")
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, productID)
		pipe.LPush(ctx, key, productID)
		pipe.LTrim(ctx, key, 0, RecentlyViewedCap-1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: redis push recent: %w", err)
	}
	return s.RecentlyViewed(ctx)
}

func (s *RedisStore) AuthToken(ctx context.Context) (string, error) {
	return s.getString(ctx, "token")
}

func (s *RedisStore) SetAuthToken(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key("token"), token, 0).Err(); err != nil {
		return fmt.Errorf("store: redis SET token: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearAuthToken(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key("token")).Err(); err != nil {
		return fmt.Errorf("store: redis DEL token: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
