// Пакет lock - именованные TTL-ограниченные блокировки поверх kv.Store.
// Сериализуют критические секции по id лобби/игры между stateless-воркерами.
// Тела секций должны завершаться заметно раньше аренды: аренда не продлевается
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guesswho_backend/internal/kv"

	"github.com/google/uuid"
)

// ожидание взятия блокировки превысило бюджет
var ErrTimeout = errors.New("lock: превышено время ожидания")

const (
	retryInterval = 50 * time.Millisecond
	// DefaultWait - бюджет ожидания занятой блокировки до ErrTimeout
	DefaultWait = 3 * time.Second
)

type Locker struct {
	store kv.Store
	wait  time.Duration
}

func New(store kv.Store) *Locker {
	return &Locker{store: store, wait: DefaultWait}
}

// Lease - удерживаемая аренда. Освобождение сверяет токен владельца,
// чтобы истекшая аренда не снесла блокировку следующего держателя
type Lease struct {
	store kv.Store
	key   string
	token string
}

// Acquire берет эксклюзивную блокировку name с арендой lease,
// повторяя попытки с паузой до исчерпания бюджета ожидания
func (l *Locker) Acquire(ctx context.Context, name string, lease time.Duration) (*Lease, error) {
	key := "lock:" + name
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.store.SetNX(ctx, key, token, lease)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			return &Lease{store: l.store, key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release снимает блокировку, только если она все еще наша.
// Сравнение и удаление не атомарны: между ними аренда может истечь
// и ключ достаться преемнику - тогда Del снимет чужую блокировку.
// Окно - один RTT до хранилища; уйдет с CAS-удалением в Store
func (le *Lease) Release(ctx context.Context) error {
	v, err := le.store.Get(ctx, le.key)
	if err != nil {
		return err
	}
	if v != le.token {
		// аренда истекла и ключ взят другим держателем - не трогаем
		return nil
	}
	return le.store.Del(ctx, le.key)
}

// WithLock выполняет fn под блокировкой name и гарантированно
// освобождает ее на любом пути выхода, включая ошибку fn
func WithLock(ctx context.Context, l *Locker, name string, lease time.Duration, fn func(ctx context.Context) error) error {
	held, err := l.Acquire(ctx, name, lease)
	if err != nil {
		return err
	}
	defer held.Release(ctx)
	return fn(ctx)
}
