package tbutil

import (
	"context"
	"fmt"
	"time"

	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

// WorkItem is one transfer awaiting submission. Done receives nil on success;
// TransferExists is reported as success.
type WorkItem struct {
	Transfer tbtypes.Transfer
	Done     chan error
}

// Submitter coalesces individual transfers into batched CreateTransfers
// calls, flushing when a batch fills or the flush interval elapses.
type Submitter struct {
	In         chan WorkItem
	FlushEvery time.Duration
	MaxEvents  int
	Pool       *ClientPool
}

// Run processes work items until the context is canceled.
func (s *Submitter) Run(ctx context.Context) {
	timer := time.NewTimer(s.FlushEvery)
	defer timer.Stop()
	var pending []WorkItem

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = nil
		s.flush(ctx, batch)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case item := <-s.In:
			pending = append(pending, item)
			if len(pending) >= s.MaxEvents {
				flush()
				resetTimer(timer, s.FlushEvery)
			}
		case <-timer.C:
			flush()
			resetTimer(timer, s.FlushEvery)
		}
	}
}

// flush submits one batch and fans results back out to the work items.
func (s *Submitter) flush(ctx context.Context, batch []WorkItem) {
	transfers := make([]tbtypes.Transfer, len(batch))
	for i, item := range batch {
		transfers[i] = item.Transfer
	}
	results, err := s.Pool.CreateTransfers(ctx, transfers)
	if err != nil {
		for _, item := range batch {
			respond(item, err)
		}
		return
	}
	// TigerBeetle reports only the events that did not apply cleanly.
	rejected := map[int]tbtypes.CreateTransferResult{}
	for _, res := range results {
		rejected[int(res.Index)] = res.Result
	}
	for i, item := range batch {
		res, ok := rejected[i]
		if !ok || res == tbtypes.TransferExists {
			respond(item, nil)
			continue
		}
		respond(item, fmt.Errorf("transfer rejected: %s", res))
	}
}

// respond never blocks: a caller that abandoned its channel does not stall
// the batch loop.
func respond(item WorkItem, err error) {
	if item.Done == nil {
		return
	}
	select {
	case item.Done <- err:
	default:
	}
}

func resetTimer(timer *time.Timer, interval time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(interval)
}
