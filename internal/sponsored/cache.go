package sponsored

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"placepage/internal/adapters/observability"
	"placepage/internal/domain"
)

// Cache keeps one partition per provider type. With ttl <= 0 entries never
// expire and the cache grows by one entry per visited object for the
// session; refreshes replace entries in place.
type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	parts map[domain.ProviderType]*gocache.Cache
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, parts: map[domain.ProviderType]*gocache.Cache{}}
}

func (c *Cache) partition(t domain.ProviderType) *gocache.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parts[t]
	if !ok {
		exp, cleanup := gocache.NoExpiration, time.Duration(0)
		if c.ttl > 0 {
			exp, cleanup = c.ttl, 2*c.ttl
		}
		p = gocache.New(exp, cleanup)
		c.parts[t] = p
	}
	return p
}

func (c *Cache) Has(t domain.ProviderType, key string) bool {
	if key == "" {
		return false
	}
	_, ok := c.partition(t).Get(key)
	return ok
}

func (c *Cache) Get(t domain.ProviderType, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	v, ok := c.partition(t).Get(key)
	if ok {
		observability.ObserveCache("provider:"+string(t), "hit")
	} else {
		observability.ObserveCache("provider:"+string(t), "miss")
	}
	return v, ok
}

func (c *Cache) Put(t domain.ProviderType, key string, data any) {
	if key == "" {
		return
	}
	observability.ObserveCache("provider:"+string(t), "set")
	c.partition(t).Set(key, data, gocache.DefaultExpiration)
}

// Len is the number of live entries of a partition.
func (c *Cache) Len(t domain.ProviderType) int { return c.partition(t).ItemCount() }

// Key builders for the BOOKING partition, which holds two kinds of data.
func PriceKey(id, currency string) string { return "price:" + id + ":" + currency }
func InfoKey(id, lang string) string      { return "info:" + id + ":" + lang }
