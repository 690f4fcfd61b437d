package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db, poolSize, minIdleConns int) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	return &RedisClient{client: client}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// IncrWithin increments key and returns the new value. The key expires
// window after its first hit. INCR and PTTL run in one MULTI, and a key found
// without a TTL gets one, so a failed PEXPIRE is repaired on the next hit.
func (r *RedisClient) IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	n := incr.Val()
	if ttl.Val() < 0 {
		if err := r.client.PExpire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// PushCapped prepends value to a list, keeps at most maxLen entries and
// refreshes the list's TTL.
func (r *RedisClient) PushCapped(ctx context.Context, key string, value interface{}, maxLen int64, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, value)
	if maxLen > 0 {
		pipe.LTrim(ctx, key, 0, maxLen-1)
	}
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.LRange(ctx, key, start, stop).Result()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
