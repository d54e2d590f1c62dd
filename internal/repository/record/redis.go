package record

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"chamba-onchain-backend/internal/domain"
)

const redisKeyPrefix = "chamba:record:"

type redisStore struct {
	client *goredis.Client
}

// NewRedisStore stores records as plain string keys without expiry.
func NewRedisStore(client *goredis.Client) domain.RecordStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}
