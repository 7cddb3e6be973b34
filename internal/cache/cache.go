// Package cache реализует кеш отрендеренных представлений с инвалидацией по пути.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Интервал очистки просроченных записей кеша.
const cleanupInterval = 10 * time.Minute

// MemoryCache хранит готовые ответы представлений в памяти процесса по пути маршрута.
type MemoryCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryCache создаёт кеш представлений с указанным временем жизни записей.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Get возвращает закешированное представление по пути маршрута.
func (c *MemoryCache) Get(path string) ([]byte, bool) {
	v, ok := c.cache.Get(path)
	if !ok {
		return nil, false
	}

	body, ok := v.([]byte)
	return body, ok
}

// Set сохраняет представление по пути маршрута до истечения TTL или инвалидации.
func (c *MemoryCache) Set(path string, body []byte) {
	c.cache.Set(path, body, c.ttl)
}

// Invalidate удаляет закешированное представление по пути маршрута.
func (c *MemoryCache) Invalidate(path string) {
	c.cache.Delete(path)
}
