// Package redis holds the one-time password-reset code store. Codes
// live in redis with a TTL so an unused code expires on its own.
package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medbook/booking-api/internal/config"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/pkg/apperror"
)

func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

type codeStore struct {
	client *redis.Client
}

func NewCodeStore(client *redis.Client) repository.CodeStore {
	return &codeStore{client: client}
}

func resetKey(email string) string {
	return "reset_code:" + email
}

func (s *codeStore) StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKey(email), code, ttl).Err(); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (s *codeStore) CheckResetCode(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, resetKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Persistence(err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

func (s *codeStore) InvalidateResetCode(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, resetKey(email)).Err(); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}
