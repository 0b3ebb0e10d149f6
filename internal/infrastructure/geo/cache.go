package geo

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"

	"pothole-vision/internal/domain/port"
)

// Cache запоминает адреса последних координат. Ключом служат координаты, округлённые
// до 5 знаков (около метра). Ошибки не кэшируются.
type Cache struct {
	next  port.Geocoder
	mu    sync.Mutex
	cache *lru.Cache
}

// NewCache оборачивает геокодер кэшем на size записей.
func NewCache(next port.Geocoder, size int) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{next: next, cache: lru.New(size)}
}

func (c *Cache) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%.5f,%.5f", lat, lon)

	c.mu.Lock()
	v, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		return v.(string), nil
	}

	address, err := c.next.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache.Add(key, address)
	c.mu.Unlock()
	return address, nil
}

// Len возвращает число закэшированных адресов.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

var _ port.Geocoder = (*Cache)(nil)
