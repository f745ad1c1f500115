package admission

import "sort"

// ConfiguredLimits reports the effective limits of both subsystems.
type ConfiguredLimits struct {
	PerMinute      int `json:"rate_limit_per_minute"`
	PerHour        int `json:"rate_limit_per_hour"`
	MaxGlobal      int `json:"max_concurrent_requests"`
	MaxPerIdentity int `json:"max_concurrent_per_identity"`
}

// PoolStatus reports one permit pool.
type PoolStatus struct {
	Capacity  int  `json:"capacity"`
	Available int  `json:"available"`
	Exhausted bool `json:"exhausted"`
}

// IdentityPoolStatus reports one identity's permit pool.
type IdentityPoolStatus struct {
	Identity  string `json:"identity"`
	Capacity  int    `json:"capacity"`
	InUse     int    `json:"in_use"`
	Available int    `json:"available"`
	Exhausted bool   `json:"exhausted"`
}

// Snapshot is a read-only view of admission state for diagnostics. Taking one
// never mutates window or permit state.
type Snapshot struct {
	Limits     ConfiguredLimits     `json:"limits"`
	Global     PoolStatus           `json:"global"`
	Identities []IdentityPoolStatus `json:"identities"`
}

// Status reports the global pool and every known identity pool, sorted by
// identity.
func (g *ConcurrencyGate) Status() (PoolStatus, []IdentityPoolStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()

	global := PoolStatus{
		Capacity:  g.maxGlobal,
		Available: g.maxGlobal - g.globalInUse,
		Exhausted: g.globalInUse >= g.maxGlobal,
	}
	identities := make([]IdentityPoolStatus, 0, len(g.pools))
	for id, pool := range g.pools {
		identities = append(identities, IdentityPoolStatus{
			Identity:  string(id),
			Capacity:  pool.capacity,
			InUse:     pool.inUse,
			Available: pool.capacity - pool.inUse,
			Exhausted: pool.inUse >= pool.capacity,
		})
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].Identity < identities[j].Identity
	})
	return global, identities
}
