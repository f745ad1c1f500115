package admission

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"slidesmith/internal/testutil"
)

func TestGate_GlobalCapacityBound(t *testing.T) {
	gate := NewConcurrencyGate(3, 10, nil)

	leases := []*Lease{
		mustAcquire(t, gate, "user_a"),
		mustAcquire(t, gate, "user_b"),
		mustAcquire(t, gate, "user_c"),
	}

	_, err := gate.Acquire("user_d")
	mustDenyCapacity(t, err, ScopeGlobal)

	leases[0].Release()
	mustAcquire(t, gate, "user_d")
}

func TestGate_PerIdentityBound(t *testing.T) {
	gate := NewConcurrencyGate(10, 2, nil)

	mustAcquire(t, gate, "user_a")
	mustAcquire(t, gate, "user_a")

	_, err := gate.Acquire("user_a")
	mustDenyCapacity(t, err, ScopeIdentity)

	// A saturated identity does not affect its neighbors.
	mustAcquire(t, gate, "user_b")
}

func TestGate_DeniedAcquireConsumesNothing(t *testing.T) {
	gate := NewConcurrencyGate(10, 1, nil)

	mustAcquire(t, gate, "user_a")
	if _, err := gate.Acquire("user_a"); err == nil {
		t.Fatalf("expected identity denial")
	}

	global, pools := gate.Status()
	if global.Available != 9 {
		t.Fatalf("global available = %d, want 9", global.Available)
	}
	if len(pools) != 1 || pools[0].InUse != 1 {
		t.Fatalf("pools = %+v, want one pool with a single permit out", pools)
	}
}

func TestGate_ReleaseRestoresBothPools(t *testing.T) {
	gate := NewConcurrencyGate(1, 1, nil)

	lease := mustAcquire(t, gate, "user_a")
	if _, err := gate.Acquire("user_a"); err == nil {
		t.Fatalf("expected denial while the lease is held")
	}

	lease.Release()
	global, pools := gate.Status()
	if global.Available != 1 {
		t.Fatalf("global available = %d, want 1", global.Available)
	}
	if len(pools) != 1 || pools[0].InUse != 0 {
		t.Fatalf("pools = %+v, want one drained pool", pools)
	}
	mustAcquire(t, gate, "user_a")
}

func TestGate_DoubleReleasePanics(t *testing.T) {
	gate := NewConcurrencyGate(2, 2, nil)
	lease := mustAcquire(t, gate, "user_a")
	lease.Release()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second release")
		}
	}()
	lease.Release()
}

func TestGate_LeaseCarriesIdentity(t *testing.T) {
	gate := NewConcurrencyGate(2, 2, nil)
	lease := mustAcquire(t, gate, "user_a")
	if lease.Identity() != "user_a" {
		t.Fatalf("lease identity = %q, want user_a", lease.Identity())
	}
	if lease.ID() == "" {
		t.Fatalf("lease id must not be empty")
	}
}

func TestGate_ConcurrentAcquiresNeverExceedGlobal(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		const workers = 40
		gate := NewConcurrencyGate(8, 1, nil)

		start := make(chan struct{})
		results := make(chan *Lease, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				lease, err := gate.Acquire(Identity(fmt.Sprintf("ip_%d", i)))
				if err != nil {
					results <- nil
					return
				}
				results <- lease
			}(i)
		}
		close(start)
		wg.Wait()
		close(results)

		var held []*Lease
		for lease := range results {
			if lease != nil {
				held = append(held, lease)
			}
		}
		if len(held) != 8 {
			t.Fatalf("held %d leases, want exactly the global capacity 8", len(held))
		}

		global, _ := gate.Status()
		if global.Available != 0 || !global.Exhausted {
			t.Fatalf("global = %+v, want exhausted", global)
		}
		for _, lease := range held {
			lease.Release()
		}
		global, _ = gate.Status()
		if global.Available != 8 {
			t.Fatalf("global available after release = %d, want 8", global.Available)
		}
	})
}

func TestGate_StressReleaseRestoresAll(t *testing.T) {
	runWithTimeout(t, 10*time.Second, func() {
		gate := NewConcurrencyGate(16, 4, nil)
		identities := []Identity{"user_a", "user_b", "user_c", "user_d", "user_e", "user_f"}

		var wg sync.WaitGroup
		for w := 0; w < 12; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					lease, err := gate.Acquire(identities[(w+i)%len(identities)])
					if err != nil {
						continue
					}
					lease.Release()
				}
			}(w)
		}
		wg.Wait()

		global, pools := gate.Status()
		if global.Available != 16 {
			t.Fatalf("global available = %d, want 16", global.Available)
		}
		for _, pool := range pools {
			if pool.InUse != 0 {
				t.Fatalf("pool %q still holds %d permits", pool.Identity, pool.InUse)
			}
		}
	})
}

func TestGate_EvictIdleSkipsPoolsInUse(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := testutil.NewFakeClock(start)
	gate := NewConcurrencyGate(10, 2, clock)

	held := mustAcquire(t, gate, "user_busy")
	idle := mustAcquire(t, gate, "user_idle")
	idle.Release()

	clock.Advance(2 * time.Hour)
	if n := gate.EvictIdle(clock.Now().Add(-time.Hour)); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if n := gate.TrackedIdentities(); n != 1 {
		t.Fatalf("tracked = %d, want the busy pool to survive", n)
	}

	// Releasing refreshes the pool's activity, so it outlives the same cutoff.
	held.Release()
	if n := gate.EvictIdle(clock.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("evicted = %d, want 0 right after release", n)
	}
	clock.Advance(2 * time.Hour)
	if n := gate.EvictIdle(clock.Now().Add(-time.Hour)); n != 1 {
		t.Fatalf("evicted = %d, want 1 once idle again", n)
	}
}
