package deckclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is a non-2xx response decoded from the service's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// RetryAfter is how long a rate-limited caller must wait before the
	// denied quota window reopens. Zero for every other error.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// IsRateLimited reports whether err is a quota denial from the server.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsBusy reports whether err is a concurrency capacity denial from the server.
func IsBusy(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable
}

// IsNotFound reports whether err refers to a presentation the server does
// not have.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		apiErr.Code = resp.Error
		apiErr.Message = resp.Message
		apiErr.RetryAfter = time.Duration(resp.RetryAfter) * time.Second
	}
	return apiErr
}
