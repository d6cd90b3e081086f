package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis - нативная реализация хранилища поверх go-redis.
// redis.Nil нормализуется в нулевые значения, WRONGTYPE - в ErrTypeMismatch
type Redis struct {
	rdb *redis.Client
}

var _ Store = (*Redis)(nil)

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func wrap(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	if strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return ErrTypeMismatch
	}
	return err
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return wrap(r.rdb.Set(ctx, key, value, ttl).Err())
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, key, value, ttl).Result()
	return ok, wrap(err)
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrap(r.rdb.Del(ctx, keys...).Err())
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	return n > 0, wrap(err)
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return wrap(r.rdb.Expire(ctx, key, ttl).Err())
}

func (r *Redis) HSet(ctx context.Context, key, field, value string) error {
	return wrap(r.rdb.HSet(ctx, key, field, value).Err())
}

func (r *Redis) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := r.rdb.HGet(ctx, key, field).Result()
	return v, wrap(err)
}

func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	v, err := r.rdb.HGetAll(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return wrap(r.rdb.SAdd(ctx, key, args...).Err())
}

func (r *Redis) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return wrap(r.rdb.SRem(ctx, key, args...).Err())
}

func (r *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	v, err := r.rdb.SMembers(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) LPush(ctx context.Context, key string, values ...string) error {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return wrap(r.rdb.LPush(ctx, key, args...).Err())
}

func (r *Redis) RPush(ctx context.Context, key string, values ...string) error {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return wrap(r.rdb.RPush(ctx, key, args...).Err())
}

func (r *Redis) LPop(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.LPop(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) RPop(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.RPop(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) LLen(ctx context.Context, key string) (int64, error) {
	v, err := r.rdb.LLen(ctx, key).Result()
	return v, wrap(err)
}

func (r *Redis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := r.rdb.LRange(ctx, key, start, stop).Result()
	return v, wrap(err)
}

func (r *Redis) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return wrap(r.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err())
}

func (r *Redis) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return wrap(r.rdb.ZRem(ctx, key, args...).Err())
}

func (r *Redis) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	v, err := r.rdb.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap(err)
	}
	return v, true, nil
}

func (r *Redis) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := r.rdb.ZRange(ctx, key, start, stop).Result()
	return v, wrap(err)
}

func (r *Redis) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := r.rdb.ZRevRange(ctx, key, start, stop).Result()
	return v, wrap(err)
}

func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	v, err := r.rdb.Keys(ctx, pattern).Result()
	return v, wrap(err)
}
