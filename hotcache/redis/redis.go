package redis

import (
	"context"
	"errors"
	"time"

	"github.com/infinitybotlist/lanyard/hotcache"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ hotcache.HotCache[int] = RedisHotCache[int]{}

// RedisHotCache stores JSON encoded values under Prefix+key
type RedisHotCache[T any] struct {
	Redis  redis.Cmdable
	Prefix string
}

// Connects to redis using a redis:// url
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)

	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func (r RedisHotCache[T]) Get(ctx context.Context, key string) (*T, error) {
	bytes, err := r.Redis.Get(ctx, r.Prefix+key).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, hotcache.ErrHotCacheDataNotFound
	}

	if err != nil {
		return nil, err
	}

	var val T

	err = json.Unmarshal(bytes, &val)

	if err != nil {
		return nil, err
	}

	return &val, nil
}

func (r RedisHotCache[T]) Delete(ctx context.Context, key string) error {
	return r.Redis.Del(ctx, r.Prefix+key).Err()
}

func (r RedisHotCache[T]) Set(ctx context.Context, key string, value *T, expiry time.Duration) error {
	bytes, err := json.Marshal(value)

	if err != nil {
		return err
	}

	return r.Redis.Set(ctx, r.Prefix+key, bytes, expiry).Err()
}

func (r RedisHotCache[T]) Increment(ctx context.Context, key string, value int64) error {
	return r.Redis.IncrBy(ctx, r.Prefix+key, value).Err()
}

func (r RedisHotCache[T]) IncrementOne(ctx context.Context, key string) error {
	return r.Redis.Incr(ctx, r.Prefix+key).Err()
}

// IncrementWithExpiry pipelines INCR, EXPIRE NX and TTL. A key that expires
// mid-pipeline is recreated by INCR and gets its expiry from EXPIRE NX
func (r RedisHotCache[T]) IncrementWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := r.Redis.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, r.Prefix+key)
		p.ExpireNX(ctx, r.Prefix+key, expiry)
		ttl = p.TTL(ctx, r.Prefix+key)
		return nil
	})

	if err != nil {
		return 0, 0, err
	}

	return incr.Val(), ttl.Val(), nil
}

func (r RedisHotCache[T]) Exists(ctx context.Context, key string) (bool, error) {
	b, err := r.Redis.Exists(ctx, r.Prefix+key).Result()

	if err != nil {
		return false, err
	}

	return b > 0, nil
}

func (r RedisHotCache[T]) Expiry(ctx context.Context, key string) (time.Duration, error) {
	return r.Redis.TTL(ctx, r.Prefix+key).Result()
}
