package admission

import (
	"sync"
	"time"
)

// windowRecord tracks request volume within one fixed window.
type windowRecord struct {
	count int
	start time.Time
}

// observe attributes one request to the window active at now, resetting the
// record first when now has crossed the window boundary. The increment happens
// before the limit comparison, so a denied request still counts toward the
// window; clients that ignore retry_after keep pushing their reset out.
func (r *windowRecord) observe(now time.Time, length time.Duration, limit int) WindowQuota {
	if r.start.IsZero() || now.Sub(r.start) >= length {
		r.count = 0
		r.start = now
	}
	r.count++
	quota := WindowQuota{Limit: limit, Remaining: remainingOf(limit, r.count)}
	if r.count > limit {
		quota.RetryAfter = length - now.Sub(r.start)
	}
	return quota
}

func remainingOf(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}

// identityWindows holds both window granularities for one identity.
type identityWindows struct {
	minute   windowRecord
	hour     windowRecord
	lastSeen time.Time
}

// RateLimiter enforces fixed-window request quotas per identity. Windows do
// not slide: a request is attributed to the window active at evaluation time,
// and bursts straddling a boundary are accepted behavior.
type RateLimiter struct {
	mu        sync.Mutex
	clock     Clock
	perMinute int
	perHour   int
	records   map[Identity]*identityWindows
}

// NewRateLimiter creates a limiter with the given per-window caps. A nil clock
// falls back to the wall clock.
func NewRateLimiter(perMinute, perHour int, clock Clock) *RateLimiter {
	if clock == nil {
		clock = realClock{}
	}
	return &RateLimiter{
		clock:     clock,
		perMinute: perMinute,
		perHour:   perHour,
		records:   map[Identity]*identityWindows{},
	}
}

// Check records one request for the identity and reports the quota decision.
// Both windows are evaluated and incremented on every call, even when the
// other denies. The whole mutation is atomic with respect to concurrent
// callers sharing the identity.
func (l *RateLimiter) Check(id Identity) QuotaDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	rec, ok := l.records[id]
	if !ok {
		rec = &identityWindows{}
		l.records[id] = rec
	}
	rec.lastSeen = now

	minute := rec.minute.observe(now, time.Minute, l.perMinute)
	hour := rec.hour.observe(now, time.Hour, l.perHour)

	decision := QuotaDecision{Minute: minute, Hour: hour}
	decision.RetryAfter = maxDuration(minute.RetryAfter, hour.RetryAfter)
	decision.Allowed = decision.RetryAfter == 0
	return decision
}

// EvictIdle drops identities whose last request predates the cutoff. Returns
// the number of identities evicted.
func (l *RateLimiter) EvictIdle(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for id, rec := range l.records {
		if rec.lastSeen.Before(cutoff) {
			delete(l.records, id)
			evicted++
		}
	}
	return evicted
}

// TrackedIdentities returns the number of identities with window records.
func (l *RateLimiter) TrackedIdentities() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
