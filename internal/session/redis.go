package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

const redisKeyPrefix = "scoreboard:session:"

// RedisStore keeps sessions in Redis with a sliding TTL, so sessions survive
// restarts. Replicas sharing it must also share a RedisLocker (see WithLocker);
// the store itself does not serialize concurrent updates.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Load(ctx context.Context, id string) (*match.Session, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	return decode(id, b)
}

func (r *RedisStore) Save(ctx context.Context, s *match.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(s.ID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session %s: %w", id, err)
	}
	return nil
}

// Ping lets readiness probes include the session backend.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
