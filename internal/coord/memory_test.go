package coord

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// testClock — управляемое время для проверки TTL без sleep'ов.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*MemoryStore, *testClock) {
	clock := newTestClock()
	store := NewMemoryStore()
	store.now = clock.Now
	return store, clock
}

func TestMemoryStore_GetSet(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "v" {
		t.Errorf("expected v, got %s", value)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Minute)

	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("key should be alive: %v", err)
	}

	clock.Advance(2 * time.Minute)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStore_SetNX(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "lock", "holder-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX should succeed: ok=%v err=%v", ok, err)
	}

	ok, err = store.SetNX(ctx, "lock", "holder-b", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("second SetNX should fail while key is alive")
	}

	// После истечения TTL ключ снова захватывается
	clock.Advance(2 * time.Minute)

	ok, err = store.SetNX(ctx, "lock", "holder-b", time.Minute)
	if err != nil || !ok {
		t.Errorf("SetNX after expiry should succeed: ok=%v err=%v", ok, err)
	}
}

// Под конкурентным доступом ровно один SetNX выигрывает.
func TestMemoryStore_SetNX_Exclusive(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	const holders = 16
	var wg sync.WaitGroup
	results := make(chan bool, holders)

	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.SetNX(ctx, "lock", "holder", time.Minute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	var won int
	for ok := range results {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Errorf("expected exactly 1 winner, got %d", won)
	}
}

func TestMemoryStore_Keys(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	store.Set(ctx, "celeroot:worker:web01", "a", 0)
	store.Set(ctx, "celeroot:worker:db01", "b", time.Minute)
	store.Set(ctx, "celeroot:schedule:state:x", "c", 0)

	keys, err := store.Keys(ctx, "celeroot:worker:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "celeroot:worker:db01" || keys[1] != "celeroot:worker:web01" {
		t.Errorf("unexpected keys: %v", keys)
	}

	// Истёкшие ключи не перечисляются
	clock.Advance(2 * time.Minute)

	keys, err = store.Keys(ctx, "celeroot:worker:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "celeroot:worker:web01" {
		t.Errorf("unexpected keys after expiry: %v", keys)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Set(ctx, "k", "v", 0)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Удаление отсутствующего ключа — не ошибка
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("delete of missing key should not fail: %v", err)
	}
}
