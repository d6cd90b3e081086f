package kv

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"
)

type kind uint8

const (
	kindString kind = iota
	kindHash
	kindSet
	kindList
	kindZSet
)

// значение с типовым тегом и абсолютным моментом истечения (zero = без TTL)
type entry struct {
	kind     kind
	str      string
	hash     map[string]string
	set      map[string]struct{}
	list     []string
	zset     map[string]float64
	expireAt time.Time
}

// Memory - in-memory эмуляция хранилища для разработки и тестов без redis
type Memory struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

// live достает запись, лениво выселяя истекшую. Вызывать под mu
func (m *Memory) live(key string) *entry {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		delete(m.data, key)
		return nil
	}
	return e
}

// typed достает живую запись нужного типа, создавая пустую при отсутствии.
// Вызывать под mu
func (m *Memory) typed(key string, k kind) (*entry, error) {
	e := m.live(key)
	if e == nil {
		e = &entry{kind: k}
		switch k {
		case kindHash:
			e.hash = make(map[string]string)
		case kindSet:
			e.set = make(map[string]struct{})
		case kindZSet:
			e.zset = make(map[string]float64)
		}
		m.data[key] = e
		return e, nil
	}
	if e.kind != k {
		return nil, ErrTypeMismatch
	}
	return e, nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return "", nil
	}
	if e.kind != kindString {
		return "", ErrTypeMismatch
	}
	return e.str, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entry{kind: kindString, str: value}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live(key) != nil {
		return false, nil
	}
	e := &entry{kind: kindString, str: value}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return true, nil
}

func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(key) != nil, nil
}

func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.live(key); e != nil {
		if ttl > 0 {
			e.expireAt = m.now().Add(ttl)
		} else {
			e.expireAt = time.Time{}
		}
	}
	return nil
}

func (m *Memory) HSet(ctx context.Context, key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.typed(key, kindHash)
	if err != nil {
		return err
	}
	e.hash[field] = value
	return nil
}

func (m *Memory) HGet(ctx context.Context, key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return "", nil
	}
	if e.kind != kindHash {
		return "", ErrTypeMismatch
	}
	return e.hash[field], nil
}

func (m *Memory) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return map[string]string{}, nil
	}
	if e.kind != kindHash {
		return nil, ErrTypeMismatch
	}
	out := make(map[string]string, len(e.hash))
	for f, v := range e.hash {
		out[f] = v
	}
	return out, nil
}

func (m *Memory) SAdd(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.typed(key, kindSet)
	if err != nil {
		return err
	}
	for _, mem := range members {
		e.set[mem] = struct{}{}
	}
	return nil
}

func (m *Memory) SRem(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return nil
	}
	if e.kind != kindSet {
		return ErrTypeMismatch
	}
	for _, mem := range members {
		delete(e.set, mem)
	}
	return nil
}

func (m *Memory) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return nil, nil
	}
	if e.kind != kindSet {
		return nil, ErrTypeMismatch
	}
	out := make([]string, 0, len(e.set))
	for mem := range e.set {
		out = append(out, mem)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) LPush(ctx context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.typed(key, kindList)
	if err != nil {
		return err
	}
	for _, v := range values {
		e.list = append([]string{v}, e.list...)
	}
	return nil
}

func (m *Memory) RPush(ctx context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.typed(key, kindList)
	if err != nil {
		return err
	}
	e.list = append(e.list, values...)
	return nil
}

func (m *Memory) LPop(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return "", nil
	}
	if e.kind != kindList {
		return "", ErrTypeMismatch
	}
	if len(e.list) == 0 {
		return "", nil
	}
	v := e.list[0]
	e.list = e.list[1:]
	return v, nil
}

func (m *Memory) RPop(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return "", nil
	}
	if e.kind != kindList {
		return "", ErrTypeMismatch
	}
	if len(e.list) == 0 {
		return "", nil
	}
	v := e.list[len(e.list)-1]
	e.list = e.list[:len(e.list)-1]
	return v, nil
}

func (m *Memory) LLen(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return 0, nil
	}
	if e.kind != kindList {
		return 0, ErrTypeMismatch
	}
	return int64(len(e.list)), nil
}

func (m *Memory) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return nil, nil
	}
	if e.kind != kindList {
		return nil, ErrTypeMismatch
	}
	lo, hi, ok := normalizeRange(start, stop, int64(len(e.list)))
	if !ok {
		return nil, nil
	}
	out := make([]string, hi-lo+1)
	copy(out, e.list[lo:hi+1])
	return out, nil
}

func (m *Memory) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.typed(key, kindZSet)
	if err != nil {
		return err
	}
	e.zset[member] = score
	return nil
}

func (m *Memory) ZRem(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return nil
	}
	if e.kind != kindZSet {
		return ErrTypeMismatch
	}
	for _, mem := range members {
		delete(e.zset, mem)
	}
	return nil
}

func (m *Memory) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return 0, false, nil
	}
	if e.kind != kindZSet {
		return 0, false, ErrTypeMismatch
	}
	score, ok := e.zset[member]
	return score, ok, nil
}

func (m *Memory) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return m.zrange(key, start, stop, false)
}

func (m *Memory) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return m.zrange(key, start, stop, true)
}

func (m *Memory) zrange(key string, start, stop int64, rev bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return nil, nil
	}
	if e.kind != kindZSet {
		return nil, ErrTypeMismatch
	}
	members := make([]string, 0, len(e.zset))
	for mem := range e.zset {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if e.zset[a] != e.zset[b] {
			if rev {
				return e.zset[a] > e.zset[b]
			}
			return e.zset[a] < e.zset[b]
		}
		if rev {
			return a > b
		}
		return a < b
	})
	lo, hi, ok := normalizeRange(start, stop, int64(len(members)))
	if !ok {
		return nil, nil
	}
	return members[lo : hi+1], nil
}

func (m *Memory) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for key := range m.data {
		if m.live(key) == nil {
			continue
		}
		if matched, _ := path.Match(pattern, key); matched {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// normalizeRange приводит индексы в redis-стиле (включая отрицательные)
// к границам слайса; ok=false если диапазон пуст
func normalizeRange(start, stop, n int64) (int64, int64, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
