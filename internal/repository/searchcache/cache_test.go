package searchcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/nyaybodh/nyaybodh/internal/db"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/mode"
	"github.com/nyaybodh/nyaybodh/internal/domain/search/result"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	deleted []string
	lastTTL time.Duration
	// onGet runs after a successful read, before the value is returned.
	onGet func(key string)
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if m.onGet != nil {
		hook := m.onGet
		m.onGet = nil
		hook(key)
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return n, nil
}

func (m *mockKVStore) Keys(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func sampleSet() result.Set {
	return result.NewEntitySet([]result.Entity{{UUID: "u1", Petitioner: "Ram"}, {UUID: "u2"}})
}

func TestKey_Normalization(t *testing.T) {
	a := Key(mode.Entity, "  Breach Of Contract  ")
	b := Key(mode.Entity, "breach of contract")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if a != "entity:breach of contract" {
		t.Errorf("Key = %q", a)
	}
	if Key(mode.Semantic, "x") == Key(mode.Entity, "x") {
		t.Error("search type must be part of the key")
	}
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	backends := map[string]func(*fakeClock) *Cache{
		"memory": func(clk *fakeClock) *Cache {
			return New(zap.NewNop(), WithClock(clk.Now))
		},
		"kv": func(clk *fakeClock) *Cache {
			return New(zap.NewNop(), WithClock(clk.Now), WithStore(newMockKVStore()))
		},
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			clk := newClock()
			c := build(clk)
			ctx := context.Background()
			key := Key(mode.Entity, "land dispute")

			c.Put(ctx, key, sampleSet())

			got, ok := c.Get(ctx, key)
			if !ok {
				t.Fatal("expected hit right after Put")
			}
			ids := got.UUIDs()
			if got.Type() != mode.Entity || len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
				t.Fatalf("round trip changed payload: type=%q ids=%v", got.Type(), ids)
			}
			if got.Entities()[0].Petitioner != "Ram" {
				t.Errorf("Petitioner = %q", got.Entities()[0].Petitioner)
			}

			clk.Advance(DefaultTTL - time.Second)
			if _, ok := c.Get(ctx, key); !ok {
				t.Fatal("expected hit just before expiry")
			}

			clk.Advance(time.Second)
			if _, ok := c.Get(ctx, key); ok {
				t.Fatal("expected miss once the TTL has elapsed")
			}
		})
	}
}

func TestCache_StoreEntryExpiresThroughTTL(t *testing.T) {
	clk := newClock()
	kv := newMockKVStore()
	c := New(zap.NewNop(), WithClock(clk.Now), WithStore(kv), WithTTL(time.Minute))
	ctx := context.Background()

	c.Put(ctx, "entity:q", sampleSet())
	if kv.lastTTL != time.Minute {
		t.Errorf("store TTL = %v, want 1m", kv.lastTTL)
	}

	clk.Advance(2 * time.Minute)
	if _, ok := c.Get(ctx, "entity:q"); ok {
		t.Fatal("expected miss")
	}
	if len(kv.deleted) != 0 {
		t.Errorf("stale read must not delete from the shared store, deleted = %v", kv.deleted)
	}
}

func TestCache_StaleReadKeepsOtherReplicaWrite(t *testing.T) {
	clk := newClock()
	kv := newMockKVStore()
	replicaA := New(zap.NewNop(), WithClock(clk.Now), WithStore(kv))
	replicaB := New(zap.NewNop(), WithClock(clk.Now), WithStore(kv))
	ctx := context.Background()
	key := Key(mode.Entity, "tenancy")

	replicaA.Put(ctx, key, sampleSet())
	clk.Advance(DefaultTTL + time.Minute)

	fresh := result.NewEntitySet([]result.Entity{{UUID: "fresh"}})
	kv.onGet = func(string) { replicaB.Put(ctx, key, fresh) }

	if _, ok := replicaA.Get(ctx, key); ok {
		t.Fatal("replica A must see its read as stale")
	}

	got, ok := replicaB.Get(ctx, key)
	if !ok {
		t.Fatal("replica B's fresh entry was evicted by replica A")
	}
	if ids := got.UUIDs(); len(ids) != 1 || ids[0] != "fresh" {
		t.Errorf("ids = %v", ids)
	}
	if _, ok := replicaA.Get(ctx, key); !ok {
		t.Error("replica A should now hit the fresh entry")
	}
}

func TestCache_MemoryEvictsOnRead(t *testing.T) {
	clk := newClock()
	c := New(nil, WithClock(clk.Now))
	ctx := context.Background()

	c.Put(ctx, "entity:q", sampleSet())
	clk.Advance(DefaultTTL)
	c.Get(ctx, "entity:q")

	c.mu.Lock()
	_, present := c.entries["entity:q"]
	c.mu.Unlock()
	if present {
		t.Error("stale entry must be removed by the read")
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	clk := newClock()
	c := New(zap.NewNop(), WithClock(clk.Now))
	ctx := context.Background()

	c.Put(ctx, "semantic:q", result.Empty(mode.Semantic))
	clk.Advance(20 * time.Minute)
	c.Put(ctx, "semantic:q", result.NewSemanticSet([]result.Semantic{{UUID: "s1"}}))
	clk.Advance(20 * time.Minute)

	got, ok := c.Get(ctx, "semantic:q")
	if !ok {
		t.Fatal("overwrite must refresh the timestamp")
	}
	if got.Len() != 1 {
		t.Errorf("Len = %d, want 1", got.Len())
	}
}

func TestCache_EmptySetIsCached(t *testing.T) {
	c := New(zap.NewNop(), WithStore(newMockKVStore()))
	ctx := context.Background()

	c.Put(ctx, "semantic:nothing", result.Empty(mode.Semantic))
	got, ok := c.Get(ctx, "semantic:nothing")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Type() != mode.Semantic || got.Len() != 0 {
		t.Errorf("got type=%q len=%d", got.Type(), got.Len())
	}
}

func TestCache_StoreErrorsAreMisses(t *testing.T) {
	kv := newMockKVStore()
	kv.setErr = errors.New("connection refused")
	c := New(zap.NewNop(), WithStore(kv))
	ctx := context.Background()

	c.Put(ctx, "entity:q", sampleSet())

	kv.getErr = &db.Error{Op: db.OpGet, Err: errors.New("timeout")}
	if _, ok := c.Get(ctx, "entity:q"); ok {
		t.Error("store failure must read as a miss")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	kv := newMockKVStore()
	kv.data[keyPrefix+"entity:q"] = []byte("not json")
	c := New(zap.NewNop(), WithStore(kv))

	if _, ok := c.Get(context.Background(), "entity:q"); ok {
		t.Error("expected miss for corrupt entry")
	}
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()

	mem := New(zap.NewNop())
	mem.Put(ctx, "a", sampleSet())
	mem.Put(ctx, "b", sampleSet())
	if n, err := mem.Clear(ctx); err != nil || n != 2 {
		t.Fatalf("memory Clear = %d, %v", n, err)
	}
	if _, ok := mem.Get(ctx, "a"); ok {
		t.Error("expected miss after Clear")
	}

	kv := newMockKVStore()
	kv.data["other:key"] = []byte("x")
	shared := New(zap.NewNop(), WithStore(kv))
	shared.Put(ctx, "a", sampleSet())
	if n, err := shared.Clear(ctx); err != nil || n != 1 {
		t.Fatalf("kv Clear = %d, %v", n, err)
	}
	if _, ok := kv.data["other:key"]; !ok {
		t.Error("Clear must only touch cache keys")
	}
}

func TestCache_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	clk := newClock()
	c := New(zap.NewNop(), WithClock(clk.Now), WithMetrics(counter))
	ctx := context.Background()

	c.Get(ctx, "k")
	c.Put(ctx, "k", sampleSet())
	c.Get(ctx, "k")
	clk.Advance(time.Hour)
	c.Get(ctx, "k")

	for label, want := range map[string]float64{"miss": 1, "hit": 1, "expired": 1} {
		if got := testutil.ToFloat64(counter.WithLabelValues(label)); got != want {
			t.Errorf("%s = %v, want %v", label, got, want)
		}
	}
}

func TestWithTTL_IgnoresNonPositive(t *testing.T) {
	c := New(zap.NewNop(), WithTTL(0))
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want %v", c.TTL(), DefaultTTL)
	}
}
