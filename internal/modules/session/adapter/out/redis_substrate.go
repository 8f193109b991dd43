package out

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	sessionout "demoprep/internal/modules/session/port/out"
)

// RedisSubstrate stores records as plain string keys under a namespace so
// several installs can share one server.
type RedisSubstrate struct {
	client    *redis.Client
	namespace string
	quota     int64
}

func NewRedisSubstrate(ctx context.Context, url, namespace string, quota int64) (*RedisSubstrate, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisSubstrateWithClient(client, namespace, quota), nil
}

func NewRedisSubstrateWithClient(client *redis.Client, namespace string, quota int64) *RedisSubstrate {
	return &RedisSubstrate{client: client, namespace: namespace, quota: quota}
}

var _ sessionout.Substrate = (*RedisSubstrate)(nil)

func (r *RedisSubstrate) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisSubstrate) Set(ctx context.Context, key, value string) error {
	if r.quota > 0 {
		used, err := r.usedExcluding(ctx, key)
		if err != nil {
			return err
		}
		if err := checkQuota(r.quota, used, key, value); err != nil {
			return err
		}
	}
	if err := r.client.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (r *RedisSubstrate) usedExcluding(ctx context.Context, key string) (int64, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return 0, err
	}
	pipe := r.client.Pipeline()
	lengths := make(map[string]*redis.IntCmd, len(keys))
	for _, k := range keys {
		if k == key {
			continue
		}
		lengths[k] = pipe.StrLen(ctx, r.namespace+k)
	}
	if len(lengths) == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("measure usage: %w", err)
	}
	var used int64
	for k, cmd := range lengths {
		used += int64(len(k)) + cmd.Val()
	}
	return used, nil
}

func (r *RedisSubstrate) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (r *RedisSubstrate) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	iter := r.client.Scan(ctx, 0, r.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return keys, nil
}

func (r *RedisSubstrate) Quota() int64 { return r.quota }

func (r *RedisSubstrate) Close() error {
	return r.client.Close()
}
