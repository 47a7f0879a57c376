package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

type memoryItem struct {
	payload   []byte
	expiresAt time.Time
}

// memoryCache backs CacheService when no Redis is configured. Values go
// through JSON so callers see the same copy semantics as with Redis.
type memoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCache() CacheService {
	return &memoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	item := memoryItem{payload: payload}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	item, ok := m.items[key]
	if ok && !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(item.payload, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// DeletePattern understands the glob subset shared by Redis and path.Match.
func (m *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			delete(m.items, key)
		}
	}
	return nil
}
