package admission

import (
	"sync"
	"time"
)

// permitPool is a counting semaphore for one identity.
type permitPool struct {
	capacity   int
	inUse      int
	lastActive time.Time
}

// Lease authorizes one in-flight protected operation. It must be released
// exactly once, on every exit path; Release panics on a second call so a
// doubled release surfaces in tests instead of silently inflating a pool.
type Lease struct {
	gate     *ConcurrencyGate
	identity Identity
	id       string

	mu       sync.Mutex
	released bool
}

// ID returns the lease identifier.
func (l *Lease) ID() string {
	return l.id
}

// Identity returns the identity the lease was granted to.
func (l *Lease) Identity() Identity {
	return l.identity
}

// Release returns one permit to the global pool and one to the identity pool.
func (l *Lease) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		panic("admission: lease " + l.id + " released twice")
	}
	l.released = true
	l.mu.Unlock()
	l.gate.release(l.identity)
}

// ConcurrencyGate bounds in-flight requests globally and per identity. It is
// an admission gate, not a queue: acquisition never blocks, and callers that
// cannot get a slot are rejected immediately.
type ConcurrencyGate struct {
	mu             sync.Mutex
	clock          Clock
	maxGlobal      int
	maxPerIdentity int
	globalInUse    int
	pools          map[Identity]*permitPool
}

// NewConcurrencyGate creates a gate with the given permit bounds. A nil clock
// falls back to the wall clock.
func NewConcurrencyGate(maxGlobal, maxPerIdentity int, clock Clock) *ConcurrencyGate {
	if clock == nil {
		clock = realClock{}
	}
	return &ConcurrencyGate{
		clock:          clock,
		maxGlobal:      maxGlobal,
		maxPerIdentity: maxPerIdentity,
		pools:          map[Identity]*permitPool{},
	}
}

// Acquire attempts to take one global permit and one identity permit without
// blocking. The identity's pool is created on first sight. Both permits commit
// only after both checks pass under the same lock, so a failed acquisition
// never leaks a slot. The error is a CapacityExceededError naming the
// exhausted pool.
func (g *ConcurrencyGate) Acquire(id Identity) (*Lease, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pool, ok := g.pools[id]
	if !ok {
		pool = &permitPool{capacity: g.maxPerIdentity}
		g.pools[id] = pool
	}
	pool.lastActive = g.clock.Now()

	if g.globalInUse >= g.maxGlobal {
		return nil, CapacityExceededError{Scope: ScopeGlobal}
	}
	if pool.inUse >= pool.capacity {
		return nil, CapacityExceededError{Scope: ScopeIdentity}
	}

	g.globalInUse++
	pool.inUse++
	return &Lease{gate: g, identity: id, id: NewULID()}, nil
}

// release returns one permit to each pool. Counts never drop below zero, so a
// release can never push a pool past its configured capacity.
func (g *ConcurrencyGate) release(id Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.globalInUse > 0 {
		g.globalInUse--
	}
	if pool, ok := g.pools[id]; ok {
		if pool.inUse > 0 {
			pool.inUse--
		}
		pool.lastActive = g.clock.Now()
	}
}

// EvictIdle drops identity pools with no permits outstanding whose last
// activity predates the cutoff. Returns the number of pools evicted.
func (g *ConcurrencyGate) EvictIdle(cutoff time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	evicted := 0
	for id, pool := range g.pools {
		if pool.inUse == 0 && pool.lastActive.Before(cutoff) {
			delete(g.pools, id)
			evicted++
		}
	}
	return evicted
}

// TrackedIdentities returns the number of identities with permit pools.
func (g *ConcurrencyGate) TrackedIdentities() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pools)
}
