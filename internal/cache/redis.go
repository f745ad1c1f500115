package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// Redis is a Cache backed by a shared Redis instance. Reads and writes are
// fail-silent: a Redis outage degrades to cache misses, never to request
// failures.
type Redis struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedis returns a Cache storing entries under the given namespace with the
// given TTL. Capacity is left to the Redis server's eviction policy.
func NewRedis(client *redis.Client, namespace string, ttl time.Duration) *Redis {
	return &Redis{client: client, namespace: namespace, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, r.itemKey(key)).Bytes()
	if err != nil {
		r.client.HIncrBy(ctx, r.statsKey(), "misses", 1)
		return nil, false
	}
	r.client.HIncrBy(ctx, r.statsKey(), "hits", 1)
	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	r.client.Set(ctx, r.itemKey(key), value, r.ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, r.itemKey(key))
}

func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.itemKey("*"), scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return r.client.Del(ctx, r.statsKey()).Err()
}

func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	size := 0
	iter := r.client.Scan(ctx, 0, r.itemKey("*"), scanBatch).Iterator()
	for iter.Next(ctx) {
		size++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, err
	}
	counters, err := r.client.HGetAll(ctx, r.statsKey()).Result()
	if err != nil {
		return Stats{}, err
	}
	hits, _ := strconv.ParseInt(counters["hits"], 10, 64)
	misses, _ := strconv.ParseInt(counters["misses"], 10, 64)
	return Stats{
		Size:       size,
		TTLSeconds: int(r.ttl / time.Second),
		Hits:       hits,
		Misses:     misses,
	}, nil
}

func (r *Redis) itemKey(key string) string {
	return r.namespace + ":item:" + key
}

func (r *Redis) statsKey() string {
	return r.namespace + ":stats"
}
