package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coherentnotebook/entropy/internal/catalog"
)

func TestInvalidateIfStaleAtThresholdDoesNotInvalidate(t *testing.T) {
	c := New(DefaultConfig())
	id := uuid.New()
	c.Set(id, catalog.Catalog{}, 1)

	removed := c.InvalidateIfStale(id, DefaultShiftThreshold)
	assert.False(t, removed)
	_, ok := c.Get(id)
	assert.True(t, ok)
}

func TestInvalidateIfStaleAboveThresholdInvalidates(t *testing.T) {
	c := New(DefaultConfig())
	id := uuid.New()
	c.Set(id, catalog.Catalog{}, 1)

	removed := c.InvalidateIfStale(id, DefaultShiftThreshold+0.001)
	assert.True(t, removed)
	_, ok := c.Get(id)
	assert.False(t, ok)
}

func TestStatusLawPartitionsFreshStaleExpired(t *testing.T) {
	cfg := Config{ShiftThreshold: 0.1, MaxAgeSecs: 0, StaleGraceSecs: 1}
	fresh := CachedCatalog{CachedAt: time.Now()}
	assert.Equal(t, Fresh, fresh.StatusAt(cfg))

	stale := CachedCatalog{CachedAt: time.Now().Add(-1 * time.Second)}
	assert.Equal(t, Stale, stale.StatusAt(cfg))

	expired := CachedCatalog{CachedAt: time.Now().Add(-5 * time.Second)}
	assert.Equal(t, Expired, expired.StatusAt(cfg))
}

func TestGetNeverReturnsExpired(t *testing.T) {
	cfg := Config{ShiftThreshold: 0.1, MaxAgeSecs: 0, StaleGraceSecs: 0}
	c := New(cfg)
	id := uuid.New()
	c.Set(id, catalog.Catalog{}, 1)
	time.Sleep(1100 * time.Millisecond)

	_, ok := c.Get(id)
	assert.False(t, ok)
}

func TestNeedsRevalidationMissingOrNonFresh(t *testing.T) {
	cfg := Config{ShiftThreshold: 0.1, MaxAgeSecs: 0, StaleGraceSecs: 5}
	c := New(cfg)
	id := uuid.New()

	assert.True(t, c.NeedsRevalidation(id))

	c.Set(id, catalog.Catalog{}, 1)
	time.Sleep(1100 * time.Millisecond)
	assert.True(t, c.NeedsRevalidation(id))
}

func TestEvictExpiredSweep(t *testing.T) {
	cfg := Config{ShiftThreshold: 0.1, MaxAgeSecs: 0, StaleGraceSecs: 0}
	c := New(cfg)
	id := uuid.New()
	c.Set(id, catalog.Catalog{}, 1)
	time.Sleep(1100 * time.Millisecond)

	removed := c.EvictExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrGenerateCollapsesConcurrentMisses(t *testing.T) {
	c := New(DefaultConfig())
	id := uuid.New()

	var calls int32
	var mu sync.Mutex
	generate := func() catalog.Catalog {
		mu.Lock()
		calls++
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		return catalog.Catalog{TotalEntries: 42}
	}

	var wg sync.WaitGroup
	results := make([]catalog.Catalog, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrGenerate(id, 1, generate)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), calls)
	for _, r := range results {
		assert.Equal(t, 42, r.TotalEntries)
	}
}

func TestStatsAggregatesByStatus(t *testing.T) {
	cfg := Config{ShiftThreshold: 0.1, MaxAgeSecs: 300, StaleGraceSecs: 60}
	c := New(cfg)
	c.Set(uuid.New(), catalog.Catalog{}, 1)
	c.Set(uuid.New(), catalog.Catalog{}, 1)

	stats := c.Stats()
	require.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Fresh)
}
