package admission

import "time"

// Identity is the partition key that scopes quotas and permits to one caller:
// an authenticated API key or a derived network origin.
type Identity string

// Stock limits applied by Config.withDefaults.
const (
	DefaultPerMinute      = 60
	DefaultPerHour        = 1000
	DefaultMaxGlobal      = 100
	DefaultMaxPerIdentity = 10
	// DefaultIdleTTL is the idle time after which an identity's state may be
	// swept. Callers opt in by setting Config.IdleTTL; zero disables eviction.
	DefaultIdleTTL = time.Hour
)

// Config tunes the admission controller.
type Config struct {
	// PerMinute and PerHour cap requests per identity within fixed windows.
	PerMinute int
	PerHour   int
	// MaxGlobal bounds in-flight requests across all identities; MaxPerIdentity
	// bounds them per identity.
	MaxGlobal      int
	MaxPerIdentity int
	// IdleTTL is how long an identity may stay silent before the janitor may
	// drop its window records and permit pool. Zero disables eviction. Values
	// below the hour window are raised to it so a sweep can never forgive an
	// hour count still in force.
	IdleTTL time.Duration
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		PerMinute:      DefaultPerMinute,
		PerHour:        DefaultPerHour,
		MaxGlobal:      DefaultMaxGlobal,
		MaxPerIdentity: DefaultMaxPerIdentity,
		IdleTTL:        DefaultIdleTTL,
	}
}

// withDefaults fills non-positive limits with the stock values.
func (c Config) withDefaults() Config {
	if c.PerMinute <= 0 {
		c.PerMinute = DefaultPerMinute
	}
	if c.PerHour <= 0 {
		c.PerHour = DefaultPerHour
	}
	if c.MaxGlobal <= 0 {
		c.MaxGlobal = DefaultMaxGlobal
	}
	if c.MaxPerIdentity <= 0 {
		c.MaxPerIdentity = DefaultMaxPerIdentity
	}
	return c
}

// WindowQuota reports one granularity of a rate-limit decision.
type WindowQuota struct {
	Limit     int
	Remaining int
	// RetryAfter is zero unless this window denied the request; when set it is
	// the time left until the window resets.
	RetryAfter time.Duration
}

// QuotaDecision is the outcome of one rate-limit check. It is produced fresh
// per request and never mutated afterwards.
type QuotaDecision struct {
	Allowed bool
	Minute  WindowQuota
	Hour    WindowQuota
	// RetryAfter is the maximum across denied windows: the caller must outwait
	// every denied window before a retry can succeed. Zero when allowed.
	RetryAfter time.Duration
}
