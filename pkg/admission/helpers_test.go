package admission

import (
	"errors"
	"testing"
	"time"

	"slidesmith/internal/testutil"
)

// runWithTimeout fails the test if fn does not complete within timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-ctx.Done():
		t.Fatalf("test timed out")
	case <-done:
	}
}

func mustAllow(t *testing.T, d QuotaDecision) {
	t.Helper()
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func mustDeny(t *testing.T, d QuotaDecision) {
	t.Helper()
	if d.Allowed {
		t.Fatalf("expected deny, got %+v", d)
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("denied decision must carry a positive retry hint, got %s", d.RetryAfter)
	}
}

func mustAcquire(t *testing.T, g *ConcurrencyGate, id Identity) *Lease {
	t.Helper()
	lease, err := g.Acquire(id)
	if err != nil {
		t.Fatalf("acquire %q: %v", id, err)
	}
	return lease
}

func mustDenyCapacity(t *testing.T, err error, scope string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected capacity error for scope %q, got nil", scope)
	}
	var capErr CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityExceededError, got %v", err)
	}
	if capErr.Scope != scope {
		t.Fatalf("capacity scope = %q, want %q", capErr.Scope, scope)
	}
}

func mustAdmit(t *testing.T, c *Controller, id Identity) *Lease {
	t.Helper()
	lease, decision, err := c.Admit(id)
	if err != nil {
		t.Fatalf("admit %q: %v", id, err)
	}
	mustAllow(t, decision)
	return lease
}

func globalAvailable(t *testing.T, c *Controller) int {
	t.Helper()
	return c.Snapshot().Global.Available
}
