//go:build cucumber

package admission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"slidesmith/internal/cache"
	"slidesmith/internal/generator"
	"slidesmith/internal/httpapi"
	"slidesmith/internal/store/memory"
	"slidesmith/internal/testutil"
	"slidesmith/pkg/admission"
	"slidesmith/pkg/deck"
)

// TestAdmissionFeatures executes the admission feature scenarios via godog.
func TestAdmissionFeatures(t *testing.T) {
	featurePath := filepath.Join("features", "admission.feature")
	suite := godog.TestSuite{
		Name:                "admission",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the admission feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &admissionState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		state.close()
		return ctx, nil
	})

	ctx.Step(`^a server allowing (\d+) requests? per minute$`, state.givenRateLimit)
	ctx.Step(`^a server allowing (\d+) concurrent requests?$`, state.givenGlobalConcurrency)
	ctx.Step(`^a server allowing (\d+) concurrent requests but (\d+) per identity$`, state.givenPerIdentityConcurrency)
	ctx.Step(`^client "([^"]+)" makes (\d+) requests?$`, state.clientMakesRequests)
	ctx.Step(`^the clock advances (\d+) seconds$`, state.clockAdvances)
	ctx.Step(`^request (\d+) is allowed$`, state.requestAllowed)
	ctx.Step(`^request (\d+) is rate limited with retry after (\d+) seconds$`, state.requestRateLimited)
	ctx.Step(`^clients "([^"]+)" and "([^"]+)" each start a slow request$`, state.twoClientsStartSlowRequests)
	ctx.Step(`^client "([^"]+)" starts two slow requests$`, state.oneClientStartsTwoSlowRequests)
	ctx.Step(`^one slow request succeeds and the other is rejected as busy$`, state.oneSucceedsOneBusy)
	ctx.Step(`^the last response reports a minute limit of (\d+) and (\d+) remaining$`, state.lastResponseQuotaHeaders)
}

// requestResult captures one admission-relevant response.
type requestResult struct {
	status          int
	retryAfter      int
	minuteLimit     int
	minuteRemaining int
}

// admissionState holds scenario state for the feature tests.
type admissionState struct {
	server   *httptest.Server
	baseURL  string
	clock    *testutil.FakeClock
	blocking *blockingGenerator
	results  []requestResult
	slowOut  []requestResult
}

// reset clears state; the server starts lazily when a Given step configures it.
func (s *admissionState) reset() {
	s.close()
	s.clock = testutil.NewFakeClock(time.Unix(0, 0))
	s.blocking = newBlockingGenerator()
	s.results = nil
	s.slowOut = nil
}

// close shuts down the HTTP server if it is running.
func (s *admissionState) close() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
}

// start boots the service with the given admission configuration.
func (s *admissionState) start(cfg admission.Config) {
	controller := admission.NewControllerWithClock(cfg, s.clock)
	handler := httpapi.NewHandler(httpapi.Config{
		Store:      memory.New(),
		Generator:  generator.NewSwitcher(s.blocking),
		Controller: controller,
		Caches: cache.Layers{
			Presentations: cache.NewMemory(cache.PresentationTTL, cache.PresentationMaxEntries),
			Slides:        cache.NewMemory(cache.SlideTTL, cache.SlideMaxEntries),
			Responses:     cache.NewMemory(cache.ResponseTTL, cache.ResponseMaxEntries),
		},
		Now: s.clock.Now,
	})
	s.server = httptest.NewServer(handler)
	s.baseURL = s.server.URL
}

func (s *admissionState) givenRateLimit(perMinute int) error {
	s.start(admission.Config{PerMinute: perMinute})
	return nil
}

func (s *admissionState) givenGlobalConcurrency(maxGlobal int) error {
	s.start(admission.Config{MaxGlobal: maxGlobal})
	return nil
}

func (s *admissionState) givenPerIdentityConcurrency(maxGlobal, perIdentity int) error {
	s.start(admission.Config{MaxGlobal: maxGlobal, MaxPerIdentity: perIdentity})
	return nil
}

// clientMakesRequests issues n fast creates as the named client. One slide
// keeps the generator out of the request, so only admission decides timing.
func (s *admissionState) clientMakesRequests(client string, count int) error {
	for i := 0; i < count; i++ {
		result, err := s.createPresentation(client, 1)
		if err != nil {
			return err
		}
		s.results = append(s.results, result)
	}
	return nil
}

func (s *admissionState) clockAdvances(seconds int) error {
	s.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (s *admissionState) requestAllowed(index int) error {
	result, err := s.result(index)
	if err != nil {
		return err
	}
	if result.status != http.StatusCreated {
		return fmt.Errorf("request %d: expected status %d, got %d", index, http.StatusCreated, result.status)
	}
	return nil
}

func (s *admissionState) requestRateLimited(index, retryAfter int) error {
	result, err := s.result(index)
	if err != nil {
		return err
	}
	if result.status != http.StatusTooManyRequests {
		return fmt.Errorf("request %d: expected status %d, got %d", index, http.StatusTooManyRequests, result.status)
	}
	if result.retryAfter != retryAfter {
		return fmt.Errorf("request %d: expected retry_after %d, got %d", index, retryAfter, result.retryAfter)
	}
	return nil
}

// twoClientsStartSlowRequests runs one blocking create per client in
// parallel. The generator holds the first request in flight until the second
// has received its response, so the overlap is deterministic.
func (s *admissionState) twoClientsStartSlowRequests(first, second string) error {
	return s.runSlowPair(first, second)
}

func (s *admissionState) oneClientStartsTwoSlowRequests(client string) error {
	return s.runSlowPair(client, client)
}

func (s *admissionState) runSlowPair(first, second string) error {
	pair := make([]requestResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		pair[0], errs[0] = s.createPresentation(first, 2)
	}()

	select {
	case <-s.blocking.started:
	case <-time.After(2 * time.Second):
		return fmt.Errorf("first slow request never reached the generator")
	}

	pair[1], errs[1] = s.createPresentation(second, 2)
	s.blocking.release()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("slow request %d: %w", i+1, err)
		}
	}
	s.slowOut = pair
	return nil
}

func (s *admissionState) oneSucceedsOneBusy() error {
	if len(s.slowOut) != 2 {
		return fmt.Errorf("expected 2 slow results, have %d", len(s.slowOut))
	}
	created, busy := 0, 0
	for _, result := range s.slowOut {
		switch result.status {
		case http.StatusCreated:
			created++
		case http.StatusServiceUnavailable:
			busy++
		default:
			return fmt.Errorf("unexpected slow request status %d", result.status)
		}
	}
	if created != 1 || busy != 1 {
		return fmt.Errorf("expected one created and one busy, got %d created, %d busy", created, busy)
	}
	return nil
}

func (s *admissionState) lastResponseQuotaHeaders(limit, remaining int) error {
	if len(s.results) == 0 {
		return fmt.Errorf("no requests recorded")
	}
	last := s.results[len(s.results)-1]
	if last.minuteLimit != limit {
		return fmt.Errorf("expected minute limit %d, got %d", limit, last.minuteLimit)
	}
	if last.minuteRemaining != remaining {
		return fmt.Errorf("expected minute remaining %d, got %d", remaining, last.minuteRemaining)
	}
	return nil
}

func (s *admissionState) result(index int) (requestResult, error) {
	if index < 1 || index > len(s.results) {
		return requestResult{}, fmt.Errorf("request %d not recorded (have %d)", index, len(s.results))
	}
	return s.results[index-1], nil
}

// createPresentation posts a create request authenticated as the client.
func (s *admissionState) createPresentation(client string, numSlides int) (requestResult, error) {
	payload, err := json.Marshal(deck.CreateRequest{Topic: "admission feature", NumSlides: numSlides})
	if err != nil {
		return requestResult{}, err
	}
	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/v1/presentations", bytes.NewReader(payload))
	if err != nil {
		return requestResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client+"-feature-key")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return requestResult{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestResult{}, err
	}

	result := requestResult{
		status:          resp.StatusCode,
		minuteLimit:     headerInt(resp.Header, "X-RateLimit-Minute-Limit"),
		minuteRemaining: headerInt(resp.Header, "X-RateLimit-Minute-Remaining"),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		var denial struct {
			RetryAfter int `json:"retry_after"`
		}
		if err := json.Unmarshal(body, &denial); err != nil {
			return requestResult{}, fmt.Errorf("decode denial body: %w", err)
		}
		result.retryAfter = denial.RetryAfter
	}
	return result, nil
}

func headerInt(header http.Header, name string) int {
	value, err := strconv.Atoi(header.Get(name))
	if err != nil {
		return -1
	}
	return value
}

// blockingGenerator parks the first generation until released so scenarios
// can hold a permit in flight deterministically.
type blockingGenerator struct {
	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}, 4),
		gate:    make(chan struct{}),
	}
}

func (g *blockingGenerator) Name() string { return "blocking" }

func (g *blockingGenerator) Generate(ctx context.Context, req generator.Request) ([]deck.Slide, error) {
	g.started <- struct{}{}
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	slides := make([]deck.Slide, 0, req.NumSlides)
	for i := 0; i < req.NumSlides; i++ {
		slides = append(slides, deck.Slide{
			Type:    deck.SlideBulletPoints,
			Title:   fmt.Sprintf("%s, part %d", req.Topic, i+1),
			Content: []string{"held for the admission scenario"},
		})
	}
	return slides, nil
}

func (g *blockingGenerator) release() {
	g.once.Do(func() { close(g.gate) })
}
