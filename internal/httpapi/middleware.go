package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"slidesmith/internal/ledger"
	"slidesmith/pkg/admission"
)

// admit gates a protected route: quota check first, then permits. Quota
// metadata lands on every response path; a quota denial never touches the
// gate, and the lease is released on every exit from the wrapped handler,
// panics included.
func (h *handler) admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFromRequest(r)
		lease, decision, err := h.controller.Admit(id)
		setQuotaHeaders(w.Header(), decision)
		switch {
		case admission.IsQuotaExceeded(err):
			h.record(r.Context(), "", id, ledger.OutcomeQuotaDenied)
			writeQuotaExceeded(w, decision)
			return
		case admission.IsCapacityExceeded(err):
			h.record(r.Context(), "", id, ledger.OutcomeCapacityDenied)
			writeCapacityExceeded(w)
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "admission_error", "admission failed")
			return
		}
		defer lease.Release()

		h.record(r.Context(), lease.ID(), id, ledger.OutcomeAllowed)
		limits := h.controller.Config()
		w.Header().Set("X-Identity", string(id))
		w.Header().Set("X-Concurrency-Global-Limit", strconv.Itoa(limits.MaxGlobal))
		w.Header().Set("X-Concurrency-Identity-Limit", strconv.Itoa(limits.MaxPerIdentity))
		next.ServeHTTP(w, r)
	})
}

func setQuotaHeaders(header http.Header, d admission.QuotaDecision) {
	header.Set("X-RateLimit-Minute-Limit", strconv.Itoa(d.Minute.Limit))
	header.Set("X-RateLimit-Minute-Remaining", strconv.Itoa(d.Minute.Remaining))
	header.Set("X-RateLimit-Hour-Limit", strconv.Itoa(d.Hour.Limit))
	header.Set("X-RateLimit-Hour-Remaining", strconv.Itoa(d.Hour.Remaining))
}

// record hands the outcome to the recorder. Accounting must never block or
// fail a request; the recorder is expected to shed under pressure.
func (h *handler) record(ctx context.Context, eventID string, id admission.Identity, outcome ledger.Outcome) {
	if h.recorder == nil {
		return
	}
	_ = h.recorder.Record(ctx, ledger.Event{ID: eventID, Identity: string(id), Outcome: outcome})
}
