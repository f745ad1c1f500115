package admission

import (
	"errors"
	"fmt"
	"time"
)

// Pool scopes reported by CapacityExceededError.
const (
	ScopeGlobal   = "global"
	ScopeIdentity = "identity"
)

// QuotaExceededError reports a denied rate-limit check. The caller may retry
// once Decision.RetryAfter has elapsed.
type QuotaExceededError struct {
	Decision QuotaDecision
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("admission: quota exceeded, retry after %s", e.Decision.RetryAfter)
}

// RetryAfter returns the wait before a retry can succeed.
func (e QuotaExceededError) RetryAfter() time.Duration {
	return e.Decision.RetryAfter
}

// CapacityExceededError reports a failed permit acquisition: the server shed
// the request rather than queue it. Scope names the exhausted pool.
type CapacityExceededError struct {
	Scope string
}

func (e CapacityExceededError) Error() string {
	return "admission: " + e.Scope + " capacity exceeded"
}

// IsQuotaExceeded reports whether err is a quota denial.
func IsQuotaExceeded(err error) bool {
	var quotaErr QuotaExceededError
	return errors.As(err, &quotaErr)
}

// IsCapacityExceeded reports whether err is a capacity denial.
func IsCapacityExceeded(err error) bool {
	var capacityErr CapacityExceededError
	return errors.As(err, &capacityErr)
}
