package synonym

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds how stale a synonym table may get.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for synonym tables (ISP).
type store interface {
	SynonymDump(ctx context.Context, index string) (map[string][]string, error)
}

// table is one index's synonym groups, inverted for lookup.
type table struct {
	loadedAt time.Time
	byTerm   map[string][]string // term -> group ids
	byGroup  map[string][]string // group id -> terms
}

// Cache loads synonym tables per index on demand and keeps them for ttl.
// Concurrent misses for the same index share one FT.SYNDUMP call.
type Cache struct {
	store      store
	ttl        time.Duration
	now        func() time.Time
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu     sync.RWMutex
	tables map[string]*table
	group  singleflight.Group
}

// New creates a synonym cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      s,
		ttl:        ttl,
		now:        time.Now,
		cacheTotal: cacheTotal,
		logger:     logger,
		tables:     make(map[string]*table),
	}
}

// Expand returns term followed by every term sharing a synonym group with it,
// sorted and without duplicates.
func (c *Cache) Expand(ctx context.Context, index, term string) ([]string, error) {
	t, err := c.load(ctx, index)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(term)
	seen := map[string]bool{term: true}
	var syns []string
	for _, g := range t.byTerm[term] {
		for _, other := range t.byGroup[g] {
			if !seen[other] {
				seen[other] = true
				syns = append(syns, other)
			}
		}
	}
	sort.Strings(syns)
	return append([]string{term}, syns...), nil
}

func (c *Cache) load(ctx context.Context, index string) (*table, error) {
	c.mu.RLock()
	t, ok := c.tables[index]
	c.mu.RUnlock()
	if ok && c.now().Sub(t.loadedAt) < c.ttl {
		c.incCache("hit")
		return t, nil
	}
	c.incCache("miss")

	v, err, _ := c.group.Do(index, func() (any, error) {
		dump, err := c.store.SynonymDump(ctx, index)
		if err != nil {
			return nil, fmt.Errorf("load synonyms %s: %w", index, err)
		}
		fresh := build(dump, c.now())
		c.mu.Lock()
		c.tables[index] = fresh
		c.mu.Unlock()
		c.logger.Debug("synonym table loaded",
			zap.String("index", index),
			zap.Int("terms", len(fresh.byTerm)),
		)
		return fresh, nil
	})
	if err != nil {
		// A stale table beats none.
		if ok {
			c.logger.Warn("serving stale synonym table", zap.String("index", index), zap.Error(err))
			return t, nil
		}
		return nil, err
	}
	return v.(*table), nil
}

func build(dump map[string][]string, at time.Time) *table {
	t := &table{
		loadedAt: at,
		byTerm:   make(map[string][]string, len(dump)),
		byGroup:  make(map[string][]string),
	}
	for term, groups := range dump {
		term = strings.ToLower(term)
		t.byTerm[term] = append(t.byTerm[term], groups...)
		for _, g := range groups {
			t.byGroup[g] = append(t.byGroup[g], term)
		}
	}
	return t
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
