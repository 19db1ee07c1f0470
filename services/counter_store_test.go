package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newRedisCounter(t *testing.T) (*RedisCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("ConnectRedis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounterStore(client), mr
}

func exerciseCounter(t *testing.T, store CounterStore) {
	t.Helper()
	ctx := context.Background()

	value, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if value != 0 {
		t.Fatalf("expected fresh counter 0, got %d", value)
	}

	const n = 25
	seen := make(map[int64]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.Increment(ctx)
			if err != nil {
				t.Errorf("Increment: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[v] {
				t.Errorf("value %d returned twice", v)
			}
			seen[v] = true
		}()
	}
	wg.Wait()

	value, _ = store.Read(ctx)
	if value != n {
		t.Fatalf("expected counter %d, got %d", n, value)
	}

	if err := store.Reset(ctx, 99); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v, _ := store.Increment(ctx); v != 100 {
		t.Fatalf("expected 100 after reset to 99, got %d", v)
	}
	if err := store.Reset(ctx, -1); !errors.Is(err, ErrInvalidCounter) {
		t.Fatalf("expected ErrInvalidCounter, got %v", err)
	}
}

func TestRedisCounterStore(t *testing.T) {
	store, _ := newRedisCounter(t)
	exerciseCounter(t, store)
}

func TestGormCounterStore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store, err := NewGormCounterStore(ctx, db)
	if err != nil {
		t.Fatalf("NewGormCounterStore: %v", err)
	}
	exerciseCounter(t, store)

	// a second store over the same row keeps the value
	again, err := NewGormCounterStore(ctx, db)
	if err != nil {
		t.Fatalf("NewGormCounterStore again: %v", err)
	}
	if v, _ := again.Read(ctx); v != 100 {
		t.Fatalf("expected 100, got %d", v)
	}
}

func TestRedisCounterUnavailable(t *testing.T) {
	store, mr := newRedisCounter(t)
	mr.Close()

	if _, err := store.Increment(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestConnectRedisURL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("ConnectRedis: %v", err)
	}
	defer client.Close()
	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}
