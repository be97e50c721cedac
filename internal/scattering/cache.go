package scattering

import (
	"math"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	symbol    string
	energy, q float64
}

// Cache memoizes a Lookup per (symbol, energy, q). Concurrent first
// requests for the same key reach the wrapped Lookup once. Failures are not memoized.
type Cache struct {
	lookup Lookup

	mu    sync.RWMutex
	memo  map[cacheKey]Factors
	group singleflight.Group
}

func NewCache(lookup Lookup) *Cache {
	return &Cache{lookup: lookup, memo: make(map[cacheKey]Factors)}
}

func (c *Cache) Element(symbol string) (Element, error) {
	return c.lookup.Element(symbol)
}

func (c *Cache) Factors(symbol string, energy, q float64) (Factors, error) {
	key := cacheKey{symbol, energy, q}
	c.mu.RLock()
	f, some := c.memo[key]
	c.mu.RUnlock()
	if some {
		return f, nil
	}

	flight := symbol + "|" + strconv.FormatUint(math.Float64bits(energy), 16) + "|" + strconv.FormatUint(math.Float64bits(q), 16)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		f, err := c.lookup.Factors(symbol, energy, q)
		if err != nil {
			return Factors{}, err
		}
		c.mu.Lock()
		c.memo[key] = f
		c.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return Factors{}, err
	}
	return v.(Factors), nil
}

// Len is the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memo)
}
