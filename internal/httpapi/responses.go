package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"slidesmith/pkg/admission"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// RetryAfter is set only on quota denials, in whole seconds.
	RetryAfter int `json:"retry_after,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeBytes(w, http.StatusInternalServerError, []byte(`{"error":"internal_error","message":"response encoding failed"}`))
		return
	}
	writeBytes(w, status, data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeQuotaExceeded(w http.ResponseWriter, d admission.QuotaDecision) {
	seconds := retrySeconds(d.RetryAfter)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:      "rate_limit_exceeded",
		Message:    fmt.Sprintf("too many requests: retry after %d seconds", seconds),
		RetryAfter: seconds,
	})
}

func writeCapacityExceeded(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error:   "capacity_exceeded",
		Message: "server is busy, please try again later",
	})
}

func writeBytes(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// retrySeconds rounds a retry delay up to whole seconds. A denial always
// reports at least one second so clients cannot busy-loop on zero.
func retrySeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
