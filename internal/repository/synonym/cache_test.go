package synonym

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStore struct {
	dumpFn func(ctx context.Context, index string) (map[string][]string, error)
	calls  atomic.Int32
}

func (m *mockStore) SynonymDump(ctx context.Context, index string) (map[string][]string, error) {
	m.calls.Add(1)
	return m.dumpFn(ctx, index)
}

func northTable(context.Context, string) (map[string][]string, error) {
	return map[string][]string{
		"north":    {"g1"},
		"Northern": {"g1"},
		"boreal":   {"g1", "g2"},
		"arctic":   {"g2"},
		"south":    {"g3"},
	}, nil
}

func TestExpand(t *testing.T) {
	ms := &mockStore{dumpFn: northTable}
	c := New(ms, time.Minute, nil, nil)

	got, err := c.Expand(context.Background(), "idx", "North")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"north", "boreal", "northern"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand(North) = %v, want %v", got, want)
	}

	got, err = c.Expand(context.Background(), "idx", "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"unknown"}) {
		t.Errorf("Expand(unknown) = %v", got)
	}
}

func TestExpand_CachesUntilTTL(t *testing.T) {
	ms := &mockStore{dumpFn: northTable}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "syn_cache_total"}, []string{"result"})
	c := New(ms, time.Minute, counter, nil)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for range 3 {
		if _, err := c.Expand(ctx, "idx", "north"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := ms.calls.Load(); n != 1 {
		t.Errorf("dump calls = %d, want 1", n)
	}
	if hits := testutil.ToFloat64(counter.WithLabelValues("hit")); hits != 2 {
		t.Errorf("hits = %v, want 2", hits)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Expand(ctx, "idx", "north"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := ms.calls.Load(); n != 2 {
		t.Errorf("dump calls after ttl = %d, want 2", n)
	}
}

func TestExpand_StaleOnError(t *testing.T) {
	fail := false
	ms := &mockStore{dumpFn: func(ctx context.Context, index string) (map[string][]string, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return northTable(ctx, index)
	}}
	c := New(ms, time.Minute, nil, nil)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	if _, err := c.Expand(context.Background(), "idx", "north"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail = true
	now = now.Add(time.Hour)
	got, err := c.Expand(context.Background(), "idx", "north")
	if err != nil {
		t.Fatalf("stale table not served: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expand = %v", got)
	}
}

func TestExpand_ErrorWithoutTable(t *testing.T) {
	ms := &mockStore{dumpFn: func(context.Context, string) (map[string][]string, error) {
		return nil, errors.New("connection refused")
	}}
	c := New(ms, time.Minute, nil, nil)
	if _, err := c.Expand(context.Background(), "idx", "north"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExpand_SingleflightSharesLoad(t *testing.T) {
	release := make(chan struct{})
	ms := &mockStore{dumpFn: func(ctx context.Context, index string) (map[string][]string, error) {
		<-release
		return northTable(ctx, index)
	}}
	c := New(ms, time.Minute, nil, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Expand(context.Background(), "idx", "north"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := ms.calls.Load(); n != 1 {
		t.Errorf("dump calls = %d, want 1", n)
	}
}

