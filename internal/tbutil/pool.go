package tbutil

import (
	"context"
	"fmt"

	tb "github.com/tigerbeetle/tigerbeetle-go"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

// ClientPool manages a fixed set of TigerBeetle client sessions. Each call
// borrows one session for its duration, so concurrent requests never share a
// session.
type ClientPool struct {
	clients   []tb.Client
	available chan tb.Client
}

// NewClientPool opens the requested number of sessions against the cluster.
func NewClientPool(clusterID uint32, addresses []string, sessions int) (*ClientPool, error) {
	if sessions <= 0 {
		sessions = 1
	}
	clients := make([]tb.Client, 0, sessions)
	available := make(chan tb.Client, sessions)
	cluster := tbtypes.ToUint128(uint64(clusterID))
	for i := 0; i < sessions; i++ {
		client, err := tb.NewClient(cluster, addresses)
		if err != nil {
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("tigerbeetle client: %w", err)
		}
		clients = append(clients, client)
		available <- client
	}
	return &ClientPool{clients: clients, available: available}, nil
}

// CreateAccounts runs a CreateAccounts call on a borrowed session.
func (p *ClientPool) CreateAccounts(ctx context.Context, accounts []tbtypes.Account) ([]tbtypes.AccountEventResult, error) {
	return borrow(ctx, p, func(client tb.Client) ([]tbtypes.AccountEventResult, error) {
		return client.CreateAccounts(accounts)
	})
}

// CreateTransfers runs a CreateTransfers call on a borrowed session.
func (p *ClientPool) CreateTransfers(ctx context.Context, transfers []tbtypes.Transfer) ([]tbtypes.TransferEventResult, error) {
	return borrow(ctx, p, func(client tb.Client) ([]tbtypes.TransferEventResult, error) {
		return client.CreateTransfers(transfers)
	})
}

// LookupAccounts runs a LookupAccounts call on a borrowed session.
func (p *ClientPool) LookupAccounts(ctx context.Context, ids []tbtypes.Uint128) ([]tbtypes.Account, error) {
	return borrow(ctx, p, func(client tb.Client) ([]tbtypes.Account, error) {
		return client.LookupAccounts(ids)
	})
}

// Close shuts down every session.
func (p *ClientPool) Close() error {
	for _, client := range p.clients {
		client.Close()
	}
	return nil
}

// borrow takes a session, runs fn off the caller's goroutine, and honors
// context cancellation on both the wait and the call. The session returns to
// the pool only after fn finishes, even when the caller has given up.
func borrow[T any](ctx context.Context, p *ClientPool, fn func(tb.Client) (T, error)) (T, error) {
	var zero T
	var client tb.Client
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case client = <-p.available:
	}

	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		value, err := fn(client)
		p.available <- client
		ch <- result{value: value, err: err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		return res.value, res.err
	}
}
