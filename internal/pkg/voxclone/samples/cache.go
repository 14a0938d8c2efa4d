package samples

import "sync"

// Cache holds scanned pools per directory. Pools are built lazily on
// first use and survive until invalidated; a rescan holds the write
// lock so readers never observe a half-built pool.
type Cache struct {
	mu      sync.RWMutex
	scanner *Scanner
	pools   map[string][]Clip
}

func NewCache(scanner *Scanner) *Cache {
	return &Cache{
		scanner: scanner,
		pools:   make(map[string][]Clip),
	}
}

// Get returns the ranked pool for dir, scanning it on first use.
func (c *Cache) Get(dir string) ([]Clip, error) {
	c.mu.RLock()
	pool, ok := c.pools[dir]
	c.mu.RUnlock()
	if ok {
		return pool, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pool, ok := c.pools[dir]; ok {
		return pool, nil
	}

	pool, err := c.scanner.ScanDir(dir)
	if err != nil {
		return nil, err
	}
	c.pools[dir] = pool
	return pool, nil
}

// Invalidate drops the cached pool for dir; the next Get rescans.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	delete(c.pools, dir)
	c.mu.Unlock()
}

// Refresh rescans dir immediately, replacing any cached pool.
func (c *Cache) Refresh(dir string) ([]Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pool, err := c.scanner.ScanDir(dir)
	if err != nil {
		delete(c.pools, dir)
		return nil, err
	}
	c.pools[dir] = pool
	return pool, nil
}
