package rates

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"currencyconverter/internal/apperrors"
)

var _ Storage = (*RedisStorage)(nil)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "rates:snapshot"

// RedisStorage keeps the snapshot as a JSON document under a single key.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// NewRedisStorage creates a RedisStorage.
func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStorage{client: client, key: key}
}

// Location identifies the Redis instance and key.
func (s *RedisStorage) Location() string {
	return "redis://" + s.client.Options().Addr + "/" + s.key
}

// Check verifies the key exists.
func (s *RedisStorage) Check(ctx context.Context) error {
	n, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "rates cache %s is not accessible", s.Location())
	}
	if n == 0 {
		return apperrors.Wrap(apperrors.KindStorage, ErrNoSnapshot, "rates cache %s", s.Location())
	}
	return nil
}

// Load reads and parses the cached snapshot.
func (s *RedisStorage) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.Wrap(apperrors.KindStorage, ErrNoSnapshot, "rates cache %s", s.Location())
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "read rates cache %s", s.Location())
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "parse rates cache %s", s.Location())
	}
	return snap, nil
}

// Save replaces the cached snapshot. SET is atomic, readers never see a partial value.
func (s *RedisStorage) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "encode snapshot")
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, err, "write rates cache %s", s.Location())
	}
	return nil
}
