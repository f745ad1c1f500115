package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("ledger: recorder closed")

const recordTimeout = 5 * time.Second

// Async decouples request handling from ledger writes: Record enqueues and
// returns immediately while a single worker drains the queue. Events are
// dropped, and counted, when the queue is full.
type Async struct {
	inner   Recorder
	queue   chan Event
	done    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the write worker. queueSize bounds the number of events
// waiting to be written.
func NewAsync(inner Recorder, queueSize int) *Async {
	if queueSize <= 0 {
		queueSize = 1024
	}
	a := &Async{
		inner: inner,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := a.inner.Record(ctx, event); err != nil {
			a.failed.Add(1)
		}
		cancel()
	}
}

// Record enqueues the event without blocking.
func (a *Async) Record(_ context.Context, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- event:
	default:
		a.dropped.Add(1)
	}
	return nil
}

// Usage reads through to the wrapped recorder.
func (a *Async) Usage(ctx context.Context, identity string) (Usage, error) {
	return a.inner.Usage(ctx, identity)
}

// Close drains queued events, stops the worker, and closes the wrapped
// recorder.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
	return a.inner.Close()
}

// Dropped reports events shed because the queue was full.
func (a *Async) Dropped() int64 { return a.dropped.Load() }

// Failed reports events the wrapped recorder rejected.
func (a *Async) Failed() int64 { return a.failed.Load() }
