package nonce

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"chamba-onchain-backend/internal/domain"
)

type redisStore struct {
	client *goredis.Client
}

// NewRedisStore keeps nonces as expiring keys so they survive across replicas.
func NewRedisStore(client *goredis.Client) domain.NonceStore {
	return &redisStore{client: client}
}

func nonceKey(address string) string {
	return "chamba:nonce:" + strings.ToLower(address)
}

func (s *redisStore) Save(ctx context.Context, address, nonce string, ttl time.Duration) error {
	return s.client.Set(ctx, nonceKey(address), nonce, ttl).Err()
}

func (s *redisStore) Consume(ctx context.Context, address string) (string, bool, error) {
	nonce, err := s.client.GetDel(ctx, nonceKey(address)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return nonce, true, nil
}
