package watch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"slidesmith/internal/testutil"
	"slidesmith/pkg/admission"
)

func sampleSnapshot() admission.Snapshot {
	return admission.Snapshot{
		Limits: admission.ConfiguredLimits{
			PerMinute:      60,
			PerHour:        1000,
			MaxGlobal:      100,
			MaxPerIdentity: 10,
		},
		Global: admission.PoolStatus{Capacity: 100, Available: 97},
		Identities: []admission.IdentityPoolStatus{
			{Identity: "user_abc12345", Capacity: 10, InUse: 3, Available: 7},
			{Identity: "ip_10.0.0.9", Capacity: 10, InUse: 10, Available: 0, Exhausted: true},
		},
	}
}

func TestApplyKeepsSnapshotOnPollError(t *testing.T) {
	var state State
	state = state.apply(Event{Snapshot: sampleSnapshot(), At: time.Unix(100, 0)})
	if !state.HaveData {
		t.Fatalf("expected snapshot to be recorded")
	}
	state = state.apply(Event{Err: errors.New("connection refused"), At: time.Unix(101, 0)})
	if state.LastError == "" {
		t.Fatalf("expected poll error to be surfaced")
	}
	if !state.HaveData || state.Snapshot.Global.Capacity != 100 {
		t.Fatalf("expected previous snapshot to survive a failed poll")
	}
	if state.Polls != 2 {
		t.Fatalf("expected 2 polls, got %d", state.Polls)
	}
}

func TestApplyClearsErrorOnRecovery(t *testing.T) {
	var state State
	state = state.apply(Event{Err: errors.New("boom"), At: time.Unix(1, 0)})
	state = state.apply(Event{Snapshot: sampleSnapshot(), At: time.Unix(2, 0)})
	if state.LastError != "" {
		t.Fatalf("expected error cleared after successful poll, got %q", state.LastError)
	}
}

func TestRowsForStateMarksExhaustedPools(t *testing.T) {
	state := State{}.apply(Event{Snapshot: sampleSnapshot(), At: time.Unix(5, 0)})
	rows := rowsForState(state)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "user_abc12345" || rows[0][4] != "ok" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "ip_10.0.0.9" || rows[1][4] != "exhausted" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestFormatSnapshot(t *testing.T) {
	text := FormatSnapshot(sampleSnapshot())
	for _, want := range []string{
		"60/minute, 1000/hour",
		"100 global, 10 per identity",
		"97/100 available",
		"user_abc12345",
		"ip_10.0.0.9",
		"(exhausted)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected snapshot text to contain %q:\n%s", want, text)
		}
	}
}

func TestFormatSnapshotWithoutIdentities(t *testing.T) {
	snapshot := sampleSnapshot()
	snapshot.Identities = nil
	text := FormatSnapshot(snapshot)
	if !strings.Contains(text, "No identity pools yet") {
		t.Fatalf("expected empty-pool notice, got:\n%s", text)
	}
}

type fakeFetcher struct {
	snapshot admission.Snapshot
	err      error
}

func (f *fakeFetcher) AdmissionSnapshot(context.Context) (admission.Snapshot, error) {
	return f.snapshot, f.err
}

func TestPollDeliversEventsAndClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.Context(t, time.Second))
	events := Poll(ctx, &fakeFetcher{snapshot: sampleSnapshot()}, time.Millisecond)

	event, ok := <-events
	if !ok {
		t.Fatalf("expected at least one event")
	}
	if event.Err != nil {
		t.Fatalf("unexpected poll error: %v", event.Err)
	}
	if event.Snapshot.Limits.PerMinute != 60 {
		t.Fatalf("unexpected snapshot: %+v", event.Snapshot)
	}

	cancel()
	testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
		for {
			select {
			case _, open := <-events:
				if !open {
					return true
				}
			default:
				return false
			}
		}
	}, "events channel did not close after cancel")
}
