// Package deckclient provides a typed HTTP client for the slidesmith
// presentation service.
package deckclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"slidesmith/pkg/admission"
	"slidesmith/pkg/deck"
)

// Client talks to a remote slidesmith server.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New constructs a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{}}
}

// NewWithTimeout constructs a client for the given base URL with a request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetAPIKey attaches a bearer token to every request. Admission quotas then
// key off the token instead of the caller's network address.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

type presentationsResponse struct {
	Presentations []deck.Presentation `json:"presentations"`
}

// Catalog lists the styling options a server offers.
type Catalog struct {
	Themes       []deck.Theme       `json:"themes"`
	AspectRatios []deck.AspectRatio `json:"aspect_ratios"`
}

// Create generates and stores a new presentation.
func (c *Client) Create(ctx context.Context, req deck.CreateRequest) (deck.Presentation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return deck.Presentation{}, err
	}
	body, status, err := c.do(ctx, http.MethodPost, "/v1/presentations", payload)
	if err != nil {
		return deck.Presentation{}, err
	}
	if status != http.StatusCreated {
		return deck.Presentation{}, decodeAPIError(status, body)
	}
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		return deck.Presentation{}, err
	}
	return p, nil
}

// Get fetches one presentation by ID.
func (c *Client) Get(ctx context.Context, id string) (deck.Presentation, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/presentations/"+url.PathEscape(id), nil)
	if err != nil {
		return deck.Presentation{}, err
	}
	if status != http.StatusOK {
		return deck.Presentation{}, decodeAPIError(status, body)
	}
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		return deck.Presentation{}, err
	}
	return p, nil
}

// List fetches a page of presentations. Zero limit and offset use the
// server's defaults.
func (c *Client) List(ctx context.Context, limit, offset int) ([]deck.Presentation, error) {
	path := "/v1/presentations"
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.listPresentations(ctx, path)
}

// Search fetches presentations whose topic contains the fragment.
func (c *Client) Search(ctx context.Context, topic string) ([]deck.Presentation, error) {
	return c.listPresentations(ctx, "/v1/presentations/search/"+url.PathEscape(topic))
}

func (c *Client) listPresentations(ctx context.Context, path string) ([]deck.Presentation, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeAPIError(status, body)
	}
	var resp presentationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Presentations, nil
}

// Configure restyles a stored presentation.
func (c *Client) Configure(ctx context.Context, id string, req deck.ConfigureRequest) (deck.Presentation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return deck.Presentation{}, err
	}
	body, status, err := c.do(ctx, http.MethodPost, "/v1/presentations/"+url.PathEscape(id)+"/configure", payload)
	if err != nil {
		return deck.Presentation{}, err
	}
	if status != http.StatusOK {
		return deck.Presentation{}, decodeAPIError(status, body)
	}
	var p deck.Presentation
	if err := json.Unmarshal(body, &p); err != nil {
		return deck.Presentation{}, err
	}
	return p, nil
}

// Delete removes a presentation.
func (c *Client) Delete(ctx context.Context, id string) error {
	body, status, err := c.do(ctx, http.MethodDelete, "/v1/presentations/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeAPIError(status, body)
	}
	return nil
}

// Download fetches the rendered slide archive.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/presentations/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeAPIError(status, body)
	}
	return body, nil
}

// Themes fetches the theme and page geometry catalog.
func (c *Client) Themes(ctx context.Context) (Catalog, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/themes", nil)
	if err != nil {
		return Catalog{}, err
	}
	if status != http.StatusOK {
		return Catalog{}, decodeAPIError(status, body)
	}
	var catalog Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// AdmissionSnapshot reports the server's admission limits and pool state.
func (c *Client) AdmissionSnapshot(ctx context.Context) (admission.Snapshot, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/v1/admission", nil)
	if err != nil {
		return admission.Snapshot{}, err
	}
	if status != http.StatusOK {
		return admission.Snapshot{}, decodeAPIError(status, body)
	}
	var snap admission.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return admission.Snapshot{}, err
	}
	return snap, nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	body, status, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeAPIError(status, body)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
