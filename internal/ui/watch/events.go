package watch

import (
	"context"
	"time"

	"slidesmith/pkg/admission"
)

// Event carries one poll result for the UI.
type Event struct {
	Snapshot admission.Snapshot
	Err      error
	At       time.Time
}

// SnapshotFetcher reads a server's admission diagnostics.
type SnapshotFetcher interface {
	AdmissionSnapshot(ctx context.Context) (admission.Snapshot, error)
}

// Poll fetches the admission snapshot on the interval until ctx is done. The
// channel closes when polling stops. Fetch errors are delivered as events so
// the UI can show a stale view instead of dying with the connection.
func Poll(ctx context.Context, fetcher SnapshotFetcher, interval time.Duration) <-chan Event {
	if interval <= 0 {
		interval = time.Second
	}
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			snapshot, err := fetcher.AdmissionSnapshot(ctx)
			select {
			case events <- Event{Snapshot: snapshot, Err: err, At: time.Now()}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}
