package tb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"

	"slidesmith/internal/ledger"
	"slidesmith/internal/tbutil"
)

const (
	ledgerUsage uint32 = 1
	accountCode uint16 = 1
)

// Transfer codes per outcome.
const (
	codeAllowed        uint16 = 1
	codeQuotaDenied    uint16 = 2
	codeCapacityDenied uint16 = 3
)

// Config tunes the TigerBeetle-backed recorder.
type Config struct {
	ClusterID      uint32
	Addresses      []string
	Sessions       int
	MaxBatchEvents int
	FlushInterval  time.Duration
}

// Recorder accounts admission outcomes as TigerBeetle transfers: one credit
// per event from the operator account to the identity's per-outcome account.
type Recorder struct {
	pool      *tbutil.ClientPool
	submitter *tbutil.Submitter
	cancel    context.CancelFunc

	mu          sync.Mutex
	provisioned map[string]struct{}
}

// New connects to the cluster and starts the transfer submitter.
func New(cfg Config) (*Recorder, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("ledger: at least one TigerBeetle address required")
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = 1
	}
	if cfg.MaxBatchEvents <= 0 {
		cfg.MaxBatchEvents = 8000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Millisecond
	}

	pool, err := tbutil.NewClientPool(cfg.ClusterID, cfg.Addresses, cfg.Sessions)
	if err != nil {
		return nil, err
	}
	submitter := &tbutil.Submitter{
		In:         make(chan tbutil.WorkItem, cfg.MaxBatchEvents),
		FlushEvery: cfg.FlushInterval,
		MaxEvents:  cfg.MaxBatchEvents,
		Pool:       pool,
	}
	ctx, cancel := context.WithCancel(context.Background())
	go submitter.Run(ctx)
	return &Recorder{
		pool:        pool,
		submitter:   submitter,
		cancel:      cancel,
		provisioned: map[string]struct{}{},
	}, nil
}

// Record writes one usage transfer and waits for the batch result.
func (r *Recorder) Record(ctx context.Context, event ledger.Event) error {
	if event.Identity == "" {
		return fmt.Errorf("ledger: event identity required")
	}
	code, err := outcomeCode(event.Outcome)
	if err != nil {
		return err
	}
	if err := r.ensureAccounts(ctx, event.Identity); err != nil {
		return err
	}

	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	item := tbutil.WorkItem{
		Transfer: tbtypes.Transfer{
			ID:              tbutil.UsageTransferID(eventID),
			DebitAccountID:  tbutil.OperatorAccountID(),
			CreditAccountID: tbutil.UsageAccountID(event.Identity, string(event.Outcome)),
			Amount:          tbtypes.ToUint128(1),
			Ledger:          ledgerUsage,
			Code:            code,
		},
		Done: make(chan error, 1),
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.submitter.In <- item:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-item.Done:
		return err
	}
}

// Usage reads the per-outcome account balances for one identity. Identities
// never seen report zero across the board.
func (r *Recorder) Usage(ctx context.Context, identity string) (ledger.Usage, error) {
	outcomes := ledger.Outcomes()
	ids := make([]tbtypes.Uint128, len(outcomes))
	for i, outcome := range outcomes {
		ids[i] = tbutil.UsageAccountID(identity, string(outcome))
	}
	accounts, err := r.pool.LookupAccounts(ctx, ids)
	if err != nil {
		return ledger.Usage{}, err
	}
	counts := map[tbtypes.Uint128]uint64{}
	for _, account := range accounts {
		counts[account.ID] = tbutil.Uint128ToUint64(account.CreditsPosted)
	}
	usage := ledger.Usage{
		Identity:       identity,
		Allowed:        counts[ids[0]],
		QuotaDenied:    counts[ids[1]],
		CapacityDenied: counts[ids[2]],
	}
	usage.Total = usage.Allowed + usage.QuotaDenied + usage.CapacityDenied
	return usage, nil
}

// Close stops the submitter and closes the client sessions.
func (r *Recorder) Close() error {
	r.cancel()
	return r.pool.Close()
}

// ensureAccounts provisions the operator account and the identity's three
// outcome accounts once per process lifetime.
func (r *Recorder) ensureAccounts(ctx context.Context, identity string) error {
	r.mu.Lock()
	_, ok := r.provisioned[identity]
	r.mu.Unlock()
	if ok {
		return nil
	}

	accounts := []tbtypes.Account{{
		ID:     tbutil.OperatorAccountID(),
		Ledger: ledgerUsage,
		Code:   accountCode,
	}}
	for _, outcome := range ledger.Outcomes() {
		accounts = append(accounts, tbtypes.Account{
			ID:     tbutil.UsageAccountID(identity, string(outcome)),
			Ledger: ledgerUsage,
			Code:   accountCode,
		})
	}
	results, err := r.pool.CreateAccounts(ctx, accounts)
	if err != nil {
		return err
	}
	for _, result := range results {
		if result.Result == tbtypes.AccountExists {
			continue
		}
		return fmt.Errorf("ledger: create account: %s", result.Result)
	}

	r.mu.Lock()
	r.provisioned[identity] = struct{}{}
	r.mu.Unlock()
	return nil
}

func outcomeCode(outcome ledger.Outcome) (uint16, error) {
	switch outcome {
	case ledger.OutcomeAllowed:
		return codeAllowed, nil
	case ledger.OutcomeQuotaDenied:
		return codeQuotaDenied, nil
	case ledger.OutcomeCapacityDenied:
		return codeCapacityDenied, nil
	default:
		return 0, fmt.Errorf("ledger: unknown outcome %q", outcome)
	}
}
