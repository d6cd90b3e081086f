// Пакет kv - эфемерное key-value хранилище со строками, хэшами,
// множествами, списками и sorted set'ами плюс TTL на ключ.
// Две взаимозаменяемые реализации: нативный redis и in-memory эмуляция.
// Остальная система работает только против интерфейса Store
package kv

import (
	"context"
	"errors"
	"time"
)

// операция применена к ключу с другим типом значения.
// В корректной работе не возникает, считается фатальной
var ErrTypeMismatch = errors.New("kv: операция над ключом другого типа")

// Store - контракт хранилища. Отсутствующий ключ ведет себя как
// пустое/нулевое значение соответствующего типа и ошибкой не является.
// Каждый путь чтения сначала проверяет TTL и лениво удаляет истекший ключ
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX пишет значение только если ключа нет; возвращает взят ли ключ
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	LPush(ctx context.Context, key string, values ...string) error
	RPush(ctx context.Context, key string, values ...string) error
	LPop(ctx context.Context, key string) (string, error)
	RPop(ctx context.Context, key string) (string, error)
	LLen(ctx context.Context, key string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) error
	// ZScore возвращает false вторым значением если member отсутствует
	ZScore(ctx context.Context, key, member string) (float64, bool, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Keys перечисляет живые ключи по glob-шаблону ('*' - любая подстрока)
	Keys(ctx context.Context, pattern string) ([]string, error)
}
