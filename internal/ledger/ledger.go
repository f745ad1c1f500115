package ledger

import "context"

// Outcome classifies how admission resolved a request.
type Outcome string

// Admission outcomes.
const (
	OutcomeAllowed        Outcome = "allowed"
	OutcomeQuotaDenied    Outcome = "quota_denied"
	OutcomeCapacityDenied Outcome = "capacity_denied"
)

// Outcomes lists every outcome in reporting order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeAllowed, OutcomeQuotaDenied, OutcomeCapacityDenied}
}

// Valid reports whether the outcome is one recorders accept.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAllowed, OutcomeQuotaDenied, OutcomeCapacityDenied:
		return true
	}
	return false
}

// Event is one admission decision to account for. ID is the idempotency key:
// recording the same ID twice counts once.
type Event struct {
	ID       string
	Identity string
	Outcome  Outcome
}

// Usage aggregates recorded events for one identity.
type Usage struct {
	Identity       string `json:"identity"`
	Allowed        uint64 `json:"allowed"`
	QuotaDenied    uint64 `json:"quota_denied"`
	CapacityDenied uint64 `json:"capacity_denied"`
	Total          uint64 `json:"total"`
}

// Recorder persists admission outcomes for usage reporting.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	Usage(ctx context.Context, identity string) (Usage, error)
	Close() error
}

// Noop is a Recorder that keeps nothing.
type Noop struct{}

func (Noop) Record(context.Context, Event) error { return nil }

func (Noop) Usage(_ context.Context, identity string) (Usage, error) {
	return Usage{Identity: identity}, nil
}

func (Noop) Close() error { return nil }
