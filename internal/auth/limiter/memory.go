package limiter

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"userdir/pkg/requestcontext"
)

const shardCount = 64

// attempt is the accumulating window entry for one key.
type attempt struct {
	count   int
	firstAt time.Time
}

type shard struct {
	mu       sync.Mutex
	attempts map[string]attempt
	locks    map[string]time.Time // key -> lock expiry
}

// Memory is an in-process Limiter. State is partitioned across shards so
// operations on distinct keys rarely contend; operations on the same key
// are serialized by the owning shard, making increment-and-maybe-lock
// atomic without a global lock.
type Memory struct {
	cfg    Config
	shards [shardCount]*shard
}

var _ Limiter = (*Memory)(nil)

// NewMemory builds an in-process limiter. Zero config fields fall back to
// DefaultConfig.
func NewMemory(cfg Config) *Memory {
	m := &Memory{cfg: cfg.withDefaults()}
	for i := range m.shards {
		m.shards[i] = &shard{
			attempts: make(map[string]attempt),
			locks:    make(map[string]time.Time),
		}
	}
	return m
}

func (m *Memory) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return m.shards[h.Sum32()%shardCount]
}

func (m *Memory) Check(ctx context.Context, identifier, origin string) error {
	key := compositeKey(identifier, origin)
	sh := m.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	until, ok := sh.locks[key]
	if !ok {
		return nil
	}
	if requestcontext.Now(ctx).Before(until) {
		return ErrLocked
	}
	// Expired lock: evict lazily. The attempts entry was already dropped
	// when the lock was set, so the key starts from a clean slate.
	delete(sh.locks, key)
	return nil
}

func (m *Memory) RecordFailure(ctx context.Context, identifier, origin string) (bool, error) {
	key := compositeKey(identifier, origin)
	sh := m.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := requestcontext.Now(ctx)
	st, ok := sh.attempts[key]
	if !ok || now.Sub(st.firstAt) > m.cfg.Window {
		st = attempt{count: 1, firstAt: now}
	} else {
		st.count++
	}

	if st.count >= m.cfg.MaxFailures {
		sh.locks[key] = now.Add(m.cfg.LockDuration)
		delete(sh.attempts, key)
		return true, nil
	}
	sh.attempts[key] = st
	return false, nil
}

func (m *Memory) Clear(ctx context.Context, identifier, origin string) error {
	key := compositeKey(identifier, origin)
	sh := m.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.attempts, key)
	delete(sh.locks, key)
	return nil
}
