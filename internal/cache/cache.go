package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/coherentnotebook/entropy/internal/catalog"
	"github.com/coherentnotebook/entropy/internal/notebook"
)

// DefaultShiftThreshold is the catalog_shift above which
// InvalidateIfStale evicts an entry.
const DefaultShiftThreshold = 0.1

// DefaultMaxAgeSecs is the age past which a cached catalog is no longer
// Fresh.
const DefaultMaxAgeSecs = 300

// DefaultStaleGraceSecs is the additional window past MaxAgeSecs during
// which a catalog is Stale (serveable while a refresh is in flight)
// rather than Expired.
const DefaultStaleGraceSecs = 60

// Status classifies a cached catalog's age.
type Status int

const (
	// Fresh means age <= max_age.
	Fresh Status = iota
	// Stale means max_age < age <= max_age + stale_grace: serveable
	// while a refresh is in flight.
	Stale
	// Expired means the catalog must not be returned.
	Expired
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "expired"
	}
}

// Config holds the cache's age and shift thresholds.
type Config struct {
	ShiftThreshold  float64
	MaxAgeSecs      int64
	StaleGraceSecs  int64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		ShiftThreshold: DefaultShiftThreshold,
		MaxAgeSecs:     DefaultMaxAgeSecs,
		StaleGraceSecs: DefaultStaleGraceSecs,
	}
}

// CachedCatalog is one notebook's cached entry.
type CachedCatalog struct {
	Catalog          catalog.Catalog
	CachedAt         time.Time
	CachedAtSequence uint64
}

// Age returns how long ago this entry was cached.
func (c CachedCatalog) Age() time.Duration {
	return time.Since(c.CachedAt)
}

// AgeSecs returns Age in whole seconds.
func (c CachedCatalog) AgeSecs() int64 {
	return int64(c.Age().Seconds())
}

// StatusAt resolves Fresh/Stale/Expired for this entry against cfg.
func (c CachedCatalog) StatusAt(cfg Config) Status {
	age := c.AgeSecs()
	switch {
	case age <= cfg.MaxAgeSecs:
		return Fresh
	case age <= cfg.MaxAgeSecs+cfg.StaleGraceSecs:
		return Stale
	default:
		return Expired
	}
}

// IsStale reports whether this entry's status is Stale.
func (c CachedCatalog) IsStale(cfg Config) bool {
	return c.StatusAt(cfg) == Stale
}

// IsExpired reports whether this entry's status is Expired.
func (c CachedCatalog) IsExpired(cfg Config) bool {
	return c.StatusAt(cfg) == Expired
}

// Stats is an aggregate snapshot of cache occupancy by status.
type Stats struct {
	Total   int
	Fresh   int
	Stale   int
	Expired int
}

// Cache is a thread-safe per-notebook catalog cache. It holds its shared
// state behind a mutex, so a Cache should be passed around by pointer;
// every caller sharing the pointer observes the same entries, matching
// the source's shared-state clone semantics.
type Cache struct {
	mu      sync.RWMutex
	entries map[notebook.NotebookID]CachedCatalog
	config  Config

	group singleflight.Group
}

// New returns an empty Cache using cfg.
func New(cfg Config) *Cache {
	return &Cache{
		entries: make(map[notebook.NotebookID]CachedCatalog),
		config:  cfg,
	}
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// SetConfig replaces the cache's thresholds in place, without discarding
// cached entries. Existing entries are reclassified against the new
// thresholds on their next access.
func (c *Cache) SetConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

// Set replaces any prior cached entry for id.
func (c *Cache) Set(id notebook.NotebookID, cat catalog.Catalog, sequence uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = CachedCatalog{Catalog: cat, CachedAt: time.Now(), CachedAtSequence: sequence}
}

// Get returns the cached catalog for id if present and not Expired.
func (c *Cache) Get(id notebook.NotebookID) (catalog.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok || entry.IsExpired(c.config) {
		return catalog.Catalog{}, false
	}
	return entry.Catalog, true
}

// GetWithStatus returns the cached catalog for id along with its status,
// regardless of whether it is Expired (the caller decides what to do).
func (c *Cache) GetWithStatus(id notebook.NotebookID) (catalog.Catalog, Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok {
		return catalog.Catalog{}, Expired, false
	}
	return entry.Catalog, entry.StatusAt(c.config), true
}

// InvalidateIfStale removes the entry for id iff catalogShift exceeds the
// configured shift threshold, strictly. Equality does not invalidate;
// confirmed intended behavior, see DESIGN.md.
func (c *Cache) InvalidateIfStale(id notebook.NotebookID, catalogShift float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if catalogShift <= c.config.ShiftThreshold {
		return false
	}
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	return true
}

// Invalidate unconditionally removes the entry for id.
func (c *Cache) Invalidate(id notebook.NotebookID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// NeedsRevalidation reports true if id is missing from the cache or its
// status is not Fresh.
func (c *Cache) NeedsRevalidation(id notebook.NotebookID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok {
		return true
	}
	return entry.StatusAt(c.config) != Fresh
}

// EvictExpired sweeps every entry and removes those whose status is
// Expired, returning the count removed.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, entry := range c.entries {
		if entry.IsExpired(c.config) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[notebook.NotebookID]CachedCatalog)
}

// Len returns the number of entries currently cached, including stale and
// expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats aggregates entry counts by status.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Stats{Total: len(c.entries)}
	for _, entry := range c.entries {
		switch entry.StatusAt(c.config) {
		case Fresh:
			st.Fresh++
		case Stale:
			st.Stale++
		default:
			st.Expired++
		}
	}
	return st
}

// GetOrGenerate returns the cached catalog for id if Fresh or Stale,
// otherwise calls generate exactly once even under concurrent callers
// (via singleflight), caches its result at sequence, and returns it. This
// generalizes the source's stale-while-revalidate intent: concurrent
// revalidators collapse into a single generator invocation instead of
// racing.
func (c *Cache) GetOrGenerate(id notebook.NotebookID, sequence uint64, generate func() catalog.Catalog) catalog.Catalog {
	if cat, status, ok := c.GetWithStatus(id); ok && status != Expired {
		return cat
	}

	v, _, _ := c.group.Do(id.String(), func() (interface{}, error) {
		if cat, status, ok := c.GetWithStatus(id); ok && status != Expired {
			return cat, nil
		}
		cat := generate()
		c.Set(id, cat, sequence)
		return cat, nil
	})
	return v.(catalog.Catalog)
}
