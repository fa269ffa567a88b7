package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore 存放待验证的短信验证码，TTL 由 Redis 负责
type CodeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCodeStore(rdb *redis.Client, ttl time.Duration) *CodeStore {
	return &CodeStore{rdb: rdb, ttl: ttl}
}

func key(phone string) string { return fmt.Sprintf("verify:code:%s", phone) }

// Set 写入新验证码，同号旧码直接被覆盖
func (s *CodeStore) Set(ctx context.Context, phone, code string) error {
	return s.rdb.Set(ctx, key(phone), code, s.ttl).Err()
}

// Get 返回待验证的码；不存在或已过期返回 ("", false)
func (s *CodeStore) Get(ctx context.Context, phone string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *CodeStore) Delete(ctx context.Context, phone string) {
	_ = s.rdb.Del(ctx, key(phone)).Err()
}
