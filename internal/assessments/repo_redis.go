package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"governance-backend/internal/assessment"
)

const redisKeyPrefix = "assessment:"

// RedisRepo stores snapshots as JSON strings that expire after TTL.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepo wraps an existing client. A zero ttl keeps keys forever.
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

func (r *RedisRepo) key(id string) string {
	return redisKeyPrefix + id
}

// Save writes the snapshot and refreshes its TTL.
func (r *RedisRepo) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key(rec.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save assessment %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads the snapshot for id.
func (r *RedisRepo) Load(ctx context.Context, id string) (Record, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load assessment %s: %w", id, err)
	}

	var snap assessment.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Record{}, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return Record{ID: id, Snapshot: snap}, nil
}
