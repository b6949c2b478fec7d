package barcode

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// Cache memoizes an Encoder. Repeated labels of the same product encode once.
// Failures are not cached.
type Cache struct {
	enc     Encoder
	mu      sync.Mutex
	entries map[string]*Symbol
	hits    int
}

// NewCache wraps enc.
func NewCache(enc Encoder) *Cache {
	if enc == nil {
		enc = NewEncoder()
	}
	return &Cache{enc: enc, entries: map[string]*Symbol{}}
}

// Encode implements Encoder.
func (c *Cache) Encode(text string, opts Options) (*Symbol, error) {
	key := cacheKey(text, opts)
	c.mu.Lock()
	if sym, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return sym, nil
	}
	c.mu.Unlock()

	sym, err := c.enc.Encode(text, opts)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = sym
	c.mu.Unlock()
	return sym, nil
}

// Hits reports how many lookups were served from the cache.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Len reports the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey is prefix:sha256(json(parts)).
func cacheKey(text string, opts Options) string {
	data, _ := json.Marshal([]any{text, opts})
	sum := sha256.Sum256(data)
	return "symbol:" + hex.EncodeToString(sum[:])
}

var _ Encoder = (*Cache)(nil)
