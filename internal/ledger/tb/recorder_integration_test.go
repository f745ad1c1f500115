//go:build integration

package tb

import (
	"strconv"
	"testing"
	"time"

	"slidesmith/internal/ledger"
	"slidesmith/internal/testutil"
)

func newRecorderForTest(t *testing.T) *Recorder {
	t.Helper()
	instance := testutil.StartTigerBeetleSingleReplica(t)
	clusterID, err := strconv.ParseUint(instance.ClusterID, 10, 32)
	if err != nil {
		t.Fatalf("parse cluster id: %v", err)
	}
	recorder, err := New(Config{
		ClusterID: uint32(clusterID),
		Addresses: instance.Addresses,
	})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	t.Cleanup(func() {
		_ = recorder.Close()
	})
	return recorder
}

func record(t *testing.T, recorder *Recorder, event ledger.Event) {
	t.Helper()
	ctx := testutil.Context(t, 4*time.Second)
	if err := recorder.Record(ctx, event); err != nil {
		t.Fatalf("record %+v: %v", event, err)
	}
}

func usage(t *testing.T, recorder *Recorder, identity string) ledger.Usage {
	t.Helper()
	ctx := testutil.Context(t, 4*time.Second)
	got, err := recorder.Usage(ctx, identity)
	if err != nil {
		t.Fatalf("usage %q: %v", identity, err)
	}
	return got
}

func TestTB_RecordAccumulatesPerOutcome(t *testing.T) {
	recorder := newRecorderForTest(t)

	record(t, recorder, ledger.Event{ID: "e1", Identity: "user_alpha", Outcome: ledger.OutcomeAllowed})
	record(t, recorder, ledger.Event{ID: "e2", Identity: "user_alpha", Outcome: ledger.OutcomeAllowed})
	record(t, recorder, ledger.Event{ID: "e3", Identity: "user_alpha", Outcome: ledger.OutcomeQuotaDenied})
	record(t, recorder, ledger.Event{ID: "e4", Identity: "user_alpha", Outcome: ledger.OutcomeCapacityDenied})

	got := usage(t, recorder, "user_alpha")
	if got.Allowed != 2 || got.QuotaDenied != 1 || got.CapacityDenied != 1 {
		t.Fatalf("usage = %+v", got)
	}
	if got.Total != 4 {
		t.Fatalf("total = %d, want 4", got.Total)
	}
}

func TestTB_ReplayedEventCountsOnce(t *testing.T) {
	recorder := newRecorderForTest(t)

	event := ledger.Event{ID: "retry-me", Identity: "user_beta", Outcome: ledger.OutcomeAllowed}
	record(t, recorder, event)
	record(t, recorder, event)

	got := usage(t, recorder, "user_beta")
	if got.Allowed != 1 {
		t.Fatalf("allowed = %d, want 1 after replay", got.Allowed)
	}
}

func TestTB_IdentitiesAccountSeparately(t *testing.T) {
	recorder := newRecorderForTest(t)

	record(t, recorder, ledger.Event{ID: "g1", Identity: "user_gamma", Outcome: ledger.OutcomeAllowed})
	record(t, recorder, ledger.Event{ID: "d1", Identity: "user_delta", Outcome: ledger.OutcomeQuotaDenied})

	gamma := usage(t, recorder, "user_gamma")
	delta := usage(t, recorder, "user_delta")
	if gamma.Allowed != 1 || gamma.QuotaDenied != 0 {
		t.Fatalf("gamma usage = %+v", gamma)
	}
	if delta.QuotaDenied != 1 || delta.Allowed != 0 {
		t.Fatalf("delta usage = %+v", delta)
	}
}

func TestTB_UnknownIdentityReportsZero(t *testing.T) {
	recorder := newRecorderForTest(t)

	got := usage(t, recorder, "user_never_seen")
	if got.Total != 0 {
		t.Fatalf("usage = %+v, want all zero", got)
	}
}
