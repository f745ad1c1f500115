package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"slidesmith/internal/testutil"
	"slidesmith/pkg/admission"
	"slidesmith/pkg/deck"
)

type presentationsResponse struct {
	Presentations []deck.Presentation `json:"presentations"`
}

// HTTPCreatePresentation sends a POST /v1/presentations request.
func HTTPCreatePresentation(t testing.TB, baseURL string, req deck.CreateRequest) deck.Presentation {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal create request: %v", err)
	}
	body := doRequest(t, http.MethodPost, baseURL+"/v1/presentations", data)
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return p
}

// HTTPGetPresentation sends a GET /v1/presentations/{id} request.
func HTTPGetPresentation(t testing.TB, baseURL, id string) deck.Presentation {
	t.Helper()
	body := doRequest(t, http.MethodGet, baseURL+"/v1/presentations/"+id, nil)
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode presentation response: %v", err)
	}
	return p
}

// HTTPListPresentations sends a GET /v1/presentations request.
func HTTPListPresentations(t testing.TB, baseURL string) []deck.Presentation {
	t.Helper()
	body := doRequest(t, http.MethodGet, baseURL+"/v1/presentations", nil)
	var resp presentationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp.Presentations
}

// HTTPConfigurePresentation sends a POST /v1/presentations/{id}/configure request.
func HTTPConfigurePresentation(t testing.TB, baseURL, id string, req deck.ConfigureRequest) deck.Presentation {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal configure request: %v", err)
	}
	body := doRequest(t, http.MethodPost, baseURL+"/v1/presentations/"+id+"/configure", data)
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode configure response: %v", err)
	}
	return p
}

// HTTPDeletePresentation sends a DELETE /v1/presentations/{id} request.
func HTTPDeletePresentation(t testing.TB, baseURL, id string) {
	t.Helper()
	doRequest(t, http.MethodDelete, baseURL+"/v1/presentations/"+id, nil)
}

// HTTPDownloadPresentation sends a GET /v1/presentations/{id}/download request
// and returns the raw archive bytes.
func HTTPDownloadPresentation(t testing.TB, baseURL, id string) []byte {
	t.Helper()
	return doRequest(t, http.MethodGet, baseURL+"/v1/presentations/"+id+"/download", nil)
}

// HTTPAdmissionSnapshot sends a GET /v1/admission request.
func HTTPAdmissionSnapshot(t testing.TB, baseURL string) admission.Snapshot {
	t.Helper()
	body := doRequest(t, http.MethodGet, baseURL+"/v1/admission", nil)
	var snap admission.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode admission snapshot: %v", err)
	}
	return snap
}

// doRequest executes an HTTP request with a JSON payload and returns the body.
func doRequest(t testing.TB, method, url string, payload []byte) []byte {
	t.Helper()
	ctx := testutil.Context(t, 2*time.Second)
	reader := bytes.NewReader(payload)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("unexpected status %d for %s %s: %s", resp.StatusCode, method, url, string(body))
	}
	return body
}
