package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockExcludesSecondHolder(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "ek:lock:cron", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "ek:lock:cron", 0)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	if store.ttls["ek:lock:cron"] != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", store.ttls["ek:lock:cron"])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second replica must not acquire a held lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("lock should be free after release")
	}
}

func TestRedisLockKeepsForeignHolder(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "k", time.Minute)
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	// simulate expiry followed by another replica taking the key
	store.values["k"] = "other-host:token"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["k"] != "other-host:token" {
		t.Fatal("release removed a lock held by another replica")
	}
}

func TestRedisLockReleaseWithoutAcquire(t *testing.T) {
	lock, _ := NewRedisLock(newMemoryLockStore(), "k", time.Minute)
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Minute); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRedisLock(newMemoryLockStore(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
}
