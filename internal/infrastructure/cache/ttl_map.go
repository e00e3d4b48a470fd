package cache

import (
	"sync"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

type ttlItem[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlMap is a mutex-guarded map whose entries expire. A background sweep
// drops expired entries; lookups never return them.
type ttlMap[V any] struct {
	mu        sync.Mutex
	items     map[string]ttlItem[V]
	now       func() time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTTLMap[V any](sweep time.Duration) *ttlMap[V] {
	m := &ttlMap[V]{
		items: make(map[string]ttlItem[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweepLoop(sweep)
	return m
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || !m.now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

func (m *ttlMap[V]) set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = ttlItem[V]{value: value, expiresAt: m.now().Add(ttl)}
}

// setNX stores value unless a live entry exists and reports whether it did.
func (m *ttlMap[V]) setNX(key string, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if item, ok := m.items[key]; ok && now.Before(item.expiresAt) {
		return false
	}
	m.items[key] = ttlItem[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

// update applies fn to a live entry under the lock and keeps its expiry.
func (m *ttlMap[V]) update(key string, fn func(*V)) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || !m.now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}
	fn(&item.value)
	m.items[key] = item
	return item.value, true
}

// deleteIf removes a live entry that match accepts and reports whether it did.
func (m *ttlMap[V]) deleteIf(key string, match func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || !m.now().Before(item.expiresAt) || !match(item.value) {
		return false
	}
	delete(m.items, key)
	return true
}

func (m *ttlMap[V]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *ttlMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *ttlMap[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, key)
		}
	}
}

func (m *ttlMap[V]) sweepLoop(interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *ttlMap[V]) close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
}
