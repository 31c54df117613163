package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
)

const keyPrefix = "healthlab:staging:"

// RedisStore serialises entries as JSON under keyPrefix+id with the configured expiry.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, name string, d *dataset.Dataset) (Entry, error) {
	entry := Entry{ID: uuid.New().String(), Name: name, Dataset: d, StagedAt: s.now()}
	payload, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("encode staged dataset: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+entry.ID, payload, s.ttl).Err(); err != nil {
		return Entry{}, fmt.Errorf("stage dataset: %w", err)
	}
	return entry, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Entry, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load staged dataset: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode staged dataset: %w", err)
	}
	return entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// Count scans the staging keyspace. It is only used for the staged datasets gauge.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}
