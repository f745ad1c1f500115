package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slidesmith/internal/testutil"
)

// stubRecorder collects events and optionally blocks each write on gate.
type stubRecorder struct {
	mu     sync.Mutex
	events []Event
	gate   chan struct{}
	err    error
	closed bool
}

func (s *stubRecorder) Record(_ context.Context, event Event) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubRecorder) Usage(_ context.Context, identity string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := Usage{Identity: identity}
	for _, e := range s.events {
		if e.Identity != identity {
			continue
		}
		switch e.Outcome {
		case OutcomeAllowed:
			usage.Allowed++
		case OutcomeQuotaDenied:
			usage.QuotaDenied++
		case OutcomeCapacityDenied:
			usage.CapacityDenied++
		}
		usage.Total++
	}
	return usage, nil
}

func (s *stubRecorder) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestAsync_DeliversInBackground(t *testing.T) {
	stub := &stubRecorder{}
	async := NewAsync(stub, 16)

	ctx := context.Background()
	for i, outcome := range Outcomes() {
		event := Event{ID: string(rune('a' + i)), Identity: "user_1", Outcome: outcome}
		if err := async.Record(ctx, event); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	testutil.Eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return stub.count() == 3
	}, "queued events never reached the recorder")

	usage, err := async.Usage(ctx, "user_1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.Total != 3 || usage.Allowed != 1 {
		t.Fatalf("usage = %+v", usage)
	}
}

func TestAsync_ShedsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	stub := &stubRecorder{gate: gate}
	async := NewAsync(stub, 1)

	ctx := context.Background()
	// The worker blocks on the first event, the queue holds one more, and
	// the rest must be shed without blocking the caller.
	for i := 0; i < 10; i++ {
		if err := async.Record(ctx, Event{ID: "e", Identity: "user_1", Outcome: OutcomeAllowed}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if async.Dropped() == 0 {
		t.Fatal("expected shed events with a full queue")
	}

	close(gate)
	if err := async.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := stub.count() + int(async.Dropped()); got != 10 {
		t.Fatalf("delivered+dropped = %d, want 10", got)
	}
}

func TestAsync_RecordAfterCloseFails(t *testing.T) {
	stub := &stubRecorder{}
	async := NewAsync(stub, 4)
	if err := async.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !stub.closed {
		t.Fatal("Close did not reach the wrapped recorder")
	}
	if err := async.Record(context.Background(), Event{Identity: "user_1", Outcome: OutcomeAllowed}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Record after close = %v, want ErrClosed", err)
	}
	if err := async.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestAsync_CountsRecorderFailures(t *testing.T) {
	stub := &stubRecorder{err: errors.New("cluster unavailable")}
	async := NewAsync(stub, 4)

	if err := async.Record(context.Background(), Event{ID: "x", Identity: "user_1", Outcome: OutcomeAllowed}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	testutil.Eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return async.Failed() == 1
	}, "write failure never counted")
}

func TestNoop_ReportsZeroUsage(t *testing.T) {
	var rec Noop
	if err := rec.Record(context.Background(), Event{Identity: "user_1", Outcome: OutcomeAllowed}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	usage, err := rec.Usage(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.Identity != "user_1" || usage.Total != 0 {
		t.Fatalf("usage = %+v", usage)
	}
}

func TestOutcome_Valid(t *testing.T) {
	for _, outcome := range Outcomes() {
		if !outcome.Valid() {
			t.Fatalf("outcome %q should be valid", outcome)
		}
	}
	if Outcome("throttled").Valid() {
		t.Fatal("unknown outcome should be invalid")
	}
}
