package lookup

import (
	"sync"

	"github.com/lox/cityexplorer/internal/models"
)

// Cache memoizes geocoded locations by fingerprint for the life of the
// process. Entries are never evicted and are independent of the store.
type Cache struct {
	mu        sync.RWMutex
	locations map[string]models.Location
}

func NewCache() *Cache {
	return &Cache{locations: make(map[string]models.Location)}
}

func (c *Cache) Get(fingerprint string) (models.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	loc, ok := c.locations[fingerprint]
	return loc, ok
}

// Put records loc under fingerprint. A later Put for the same fingerprint
// replaces the earlier one.
func (c *Cache) Put(fingerprint string, loc models.Location) {
	c.mu.Lock()
	c.locations[fingerprint] = loc
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.locations)
}
