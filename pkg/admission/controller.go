package admission

import (
	"context"
	"time"
)

// Controller owns the admission state for one process: a rate limiter and a
// concurrency gate sharing a clock. Construct one per server (or per test
// case) and pass it to whatever makes admission decisions; the package keeps
// no ambient state.
type Controller struct {
	cfg     Config
	clock   Clock
	limiter *RateLimiter
	gate    *ConcurrencyGate
}

// NewController builds a controller from cfg, filling zero limits with the
// stock defaults.
func NewController(cfg Config) *Controller {
	return NewControllerWithClock(cfg, nil)
}

// NewControllerWithClock builds a controller with an explicit clock for tests.
func NewControllerWithClock(cfg Config, clock Clock) *Controller {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = realClock{}
	}
	return &Controller{
		cfg:     cfg,
		clock:   clock,
		limiter: NewRateLimiter(cfg.PerMinute, cfg.PerHour, clock),
		gate:    NewConcurrencyGate(cfg.MaxGlobal, cfg.MaxPerIdentity, clock),
	}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Admit runs the full admission sequence for one request: the quota check
// first (which counts the request even when it denies), then a non-blocking
// permit acquisition. A quota denial never touches the gate. On a nil error
// the caller holds the lease and must release it on every exit path; Do wraps
// that obligation.
func (c *Controller) Admit(id Identity) (*Lease, QuotaDecision, error) {
	decision := c.limiter.Check(id)
	if !decision.Allowed {
		return nil, decision, QuotaExceededError{Decision: decision}
	}
	lease, err := c.gate.Acquire(id)
	if err != nil {
		return nil, decision, err
	}
	return lease, decision, nil
}

// Do admits the identity and runs op inside the lease. The release happens on
// success, error, and panic alike; op's error propagates after the permits are
// back in their pools.
func (c *Controller) Do(ctx context.Context, id Identity, op func(context.Context) error) (QuotaDecision, error) {
	lease, decision, err := c.Admit(id)
	if err != nil {
		return decision, err
	}
	defer lease.Release()
	return decision, op(ctx)
}

// Snapshot reports configured limits and pool state without mutating any of it.
func (c *Controller) Snapshot() Snapshot {
	global, identities := c.gate.Status()
	return Snapshot{
		Limits: ConfiguredLimits{
			PerMinute:      c.cfg.PerMinute,
			PerHour:        c.cfg.PerHour,
			MaxGlobal:      c.cfg.MaxGlobal,
			MaxPerIdentity: c.cfg.MaxPerIdentity,
		},
		Global:     global,
		Identities: identities,
	}
}

// EvictIdle drops window records and permit pools idle beyond the configured
// TTL. Pools with permits outstanding are never evicted. Returns the total
// number of records and pools dropped.
func (c *Controller) EvictIdle() int {
	if c.cfg.IdleTTL <= 0 {
		return 0
	}
	ttl := c.cfg.IdleTTL
	if ttl < time.Hour {
		ttl = time.Hour
	}
	cutoff := c.clock.Now().Add(-ttl)
	return c.limiter.EvictIdle(cutoff) + c.gate.EvictIdle(cutoff)
}

// StartJanitor sweeps idle identities on the interval until ctx is done. It is
// a no-op when eviction is disabled.
func (c *Controller) StartJanitor(ctx context.Context, interval time.Duration) {
	if c.cfg.IdleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.EvictIdle()
			}
		}
	}()
}
