package knowledge

import (
	"sync"
	"time"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

// DefaultCacheTTL is how long a knowledge snapshot is served before a reload.
const DefaultCacheTTL = 60 * time.Second

// Cache holds the prompt snapshot of the knowledge base. Every invalidation
// bumps a generation counter; a load that started before an invalidation is not
// stored, so a mutation is never hidden behind an older snapshot.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	docs     []domain.PromptDocument
	loadedAt time.Time
	valid    bool
	gen      uint64
}

// NewCache creates a cache. A nil clock means time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the snapshot if it is younger than the TTL. The generation is
// returned either way and must be handed back to Set after a reload.
func (c *Cache) Get() ([]domain.PromptDocument, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.now().Sub(c.loadedAt) < c.ttl {
		return c.docs, c.gen, true
	}
	return nil, c.gen, false
}

// Set stores a freshly loaded snapshot unless the cache was invalidated since gen.
func (c *Cache) Set(docs []domain.PromptDocument, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.docs = docs
	c.loadedAt = c.now()
	c.valid = true
}

// Invalidate drops the snapshot regardless of its age.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = nil
	c.valid = false
	c.gen++
}
