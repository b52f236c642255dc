package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL matches spec.md §4.8's 5-minute query result cache TTL.
	DefaultTTL           = 5 * time.Minute
	defaultCleanupPeriod = 10 * time.Minute
	defaultMaxEntries    = 1000
)

// MemoryStore is the in-process Store: a patrickmn/go-cache TTL store
// (grounded on the teacher's memCache field) layered with an LRU list
// bounding total entry count.
type MemoryStore struct {
	mu         sync.Mutex
	store      *gocache.Cache
	lru        *list.List
	lruIndex   map[string]*list.Element
	maxEntries int
}

// NewMemoryStore builds a MemoryStore with the given TTL and a bounded
// entry count (maxEntries<=0 uses a sane default).
func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		store:      gocache.New(ttl, defaultCleanupPeriod),
		lru:        list.New(),
		lruIndex:   make(map[string]*list.Element),
		maxEntries: maxEntries,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, found := m.store.Get(key)
	if !found {
		return nil, false, nil
	}
	m.touch(key)
	return raw.([]byte), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.store.Get(key); !found && m.lru.Len() >= m.maxEntries {
		m.evictOldest()
	}
	m.store.Set(key, value, gocache.DefaultExpiration)
	m.touch(key)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Delete(key)
	if el, ok := m.lruIndex[key]; ok {
		m.lru.Remove(el)
		delete(m.lruIndex, key)
	}
	return nil
}

func (m *MemoryStore) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Flush()
	m.lru.Init()
	m.lruIndex = make(map[string]*list.Element)
	return nil
}

func (m *MemoryStore) touch(key string) {
	if el, ok := m.lruIndex[key]; ok {
		m.lru.MoveToFront(el)
		return
	}
	m.lruIndex[key] = m.lru.PushFront(key)
}

func (m *MemoryStore) evictOldest() {
	el := m.lru.Back()
	if el == nil {
		return
	}
	key := el.Value.(string)
	m.lru.Remove(el)
	delete(m.lruIndex, key)
	m.store.Delete(key)
}
