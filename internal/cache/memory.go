package cache

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Clock is the time source used for entry expiry.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Memory is an in-process Cache bounded by entry count and TTL. Expired
// entries are dropped on access; when full, the entry closest to expiry is
// evicted to make room.
type Memory struct {
	mu         sync.Mutex
	clock      Clock
	ttl        time.Duration
	maxEntries int
	entries    map[string]*memEntry
	expiry     memHeap
	hits       int64
	misses     int64
}

type memEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	heapIndex int
}

// NewMemory returns an empty cache holding at most maxEntries values for ttl
// each.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return NewMemoryWithClock(ttl, maxEntries, realClock{})
}

// NewMemoryWithClock is NewMemory with an injected time source.
func NewMemoryWithClock(ttl time.Duration, maxEntries int, clock Clock) *Memory {
	return &Memory{
		clock:      clock,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    map[string]*memEntry{},
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanup(m.clock.Now())
	e, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false
	}
	m.hits++
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.cleanup(now)
	stored := make([]byte, len(value))
	copy(stored, value)
	if e, ok := m.entries[key]; ok {
		e.value = stored
		e.expiresAt = now.Add(m.ttl)
		heap.Fix(&m.expiry, e.heapIndex)
		return
	}
	for m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictSoonest()
	}
	e := &memEntry{key: key, value: stored, expiresAt: now.Add(m.ttl)}
	m.entries[key] = e
	heap.Push(&m.expiry, e)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	heap.Remove(&m.expiry, e.heapIndex)
	delete(m.entries, key)
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]*memEntry{}
	m.expiry = nil
	m.hits, m.misses = 0, 0
	return nil
}

func (m *Memory) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanup(m.clock.Now())
	return Stats{
		Size:       len(m.entries),
		MaxEntries: m.maxEntries,
		TTLSeconds: int(m.ttl / time.Second),
		Hits:       m.hits,
		Misses:     m.misses,
	}, nil
}

// cleanup drops every entry whose expiry is at or before now.
func (m *Memory) cleanup(now time.Time) {
	for len(m.expiry) > 0 && !m.expiry[0].expiresAt.After(now) {
		e := heap.Pop(&m.expiry).(*memEntry)
		delete(m.entries, e.key)
	}
}

func (m *Memory) evictSoonest() {
	if len(m.expiry) == 0 {
		return
	}
	e := heap.Pop(&m.expiry).(*memEntry)
	delete(m.entries, e.key)
}

type memHeap []*memEntry

func (h memHeap) Len() int           { return len(h) }
func (h memHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }

func (h memHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *memHeap) Push(x any) {
	e := x.(*memEntry)
	e.heapIndex = len(*h)
	*h = append(*h, e)
}

func (h *memHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.heapIndex = -1
	*h = old[:n-1]
	return e
}
