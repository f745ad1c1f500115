package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"slidesmith/internal/generator"
	"slidesmith/internal/ledger"
	"slidesmith/pkg/deck"
)

// namedGenerator is a minimal backend for switch tests.
type namedGenerator struct{ name string }

func (g namedGenerator) Name() string { return g.name }

func (g namedGenerator) Generate(_ context.Context, req generator.Request) ([]deck.Slide, error) {
	slides := make([]deck.Slide, req.NumSlides)
	for i := range slides {
		slides[i] = deck.Slide{Type: deck.SlideBulletPoints, Title: g.name, Content: []string{g.name}}
	}
	return slides, nil
}

func TestHTTP_AdminCacheStatsAndClear(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		srv := newTestServer(t, Config{})

		createPresentation(t, srv, deck.CreateRequest{Topic: "Warm Caches", NumSlides: 2})
		if resp, _ := doRequestJSON(t, http.MethodGet, srv.URL+"/v1/presentations", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("list returned %d", resp.StatusCode)
		}

		resp, body := doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/cache/stats", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		var stats cacheStatsResponse
		mustUnmarshal(t, body, &stats)
		for name, wantSize := range map[string]int{
			"presentation_cache": 1,
			"slide_cache":        1,
			"api_cache":          1,
		} {
			layer, ok := stats.Caches[name]
			if !ok {
				t.Fatalf("missing %s in stats: %s", name, body)
			}
			if layer.Size != wantSize {
				t.Fatalf("%s: expected size %d, got %d", name, wantSize, layer.Size)
			}
		}

		resp, body = doRequestJSON(t, http.MethodPost, srv.URL+"/v1/admin/cache/clear", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		var cleared okResponse
		mustUnmarshal(t, body, &cleared)
		if !cleared.OK {
			t.Fatalf("expected ok response, got %s", body)
		}

		resp, body = doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/cache/stats", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		mustUnmarshal(t, body, &stats)
		for name, layer := range stats.Caches {
			if layer.Size != 0 {
				t.Fatalf("%s: expected empty cache after clear, got size %d", name, layer.Size)
			}
		}
	})
}

func TestHTTP_AdminGeneratorSwitch(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		tpl := generator.NewTemplateGenerator()
		fancy := namedGenerator{name: "fancy"}
		srv := newTestServer(t, Config{
			Generator: generator.NewSwitcher(tpl),
			Generators: map[string]generator.Generator{
				"template": tpl,
				"fancy":    fancy,
			},
		})

		resp, body := doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/generator", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		var status generatorStatusResponse
		mustUnmarshal(t, body, &status)
		if status.Active != "template" {
			t.Fatalf("expected template active, got %q", status.Active)
		}
		if len(status.Available) != 2 || status.Available[0] != "fancy" || status.Available[1] != "template" {
			t.Fatalf("unexpected available list: %v", status.Available)
		}

		resp, body = doRequestJSON(t, http.MethodPost, srv.URL+"/v1/admin/generator", []byte(`{"provider":"fancy"}`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		mustUnmarshal(t, body, &status)
		if status.Active != "fancy" {
			t.Fatalf("expected fancy active, got %q", status.Active)
		}

		// New decks come from the switched backend.
		p := createPresentation(t, srv, deck.CreateRequest{Topic: "Switched", NumSlides: 2})
		if p.Slides[1].Title != "fancy" {
			t.Fatalf("expected the fancy backend to generate, got %q", p.Slides[1].Title)
		}

		cases := []struct {
			name    string
			payload []byte
			code    string
		}{
			{name: "unknown_provider", payload: []byte(`{"provider":"nope"}`), code: "unknown_provider"},
			{name: "missing_provider", payload: []byte(`{}`), code: "invalid_request"},
			{name: "unknown_field", payload: []byte(`{"provider":"fancy","bogus":1}`), code: "invalid_request"},
		}
		for _, tc := range cases {
			resp, body = doRequestJSON(t, http.MethodPost, srv.URL+"/v1/admin/generator", tc.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d: %s", tc.name, resp.StatusCode, body)
			}
			var parsed errorResponse
			mustUnmarshal(t, body, &parsed)
			if parsed.Error != tc.code {
				t.Fatalf("%s: expected %s, got %q", tc.name, tc.code, parsed.Error)
			}
		}
	})
}

func TestHTTP_AdminUsage(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		recorder := &captureRecorder{}
		seed := []ledger.Event{
			{ID: "e1", Identity: "user_abc", Outcome: ledger.OutcomeAllowed},
			{ID: "e2", Identity: "user_abc", Outcome: ledger.OutcomeAllowed},
			{ID: "e3", Identity: "user_abc", Outcome: ledger.OutcomeQuotaDenied},
		}
		for _, event := range seed {
			if err := recorder.Record(context.Background(), event); err != nil {
				t.Fatalf("seed event: %v", err)
			}
		}
		srv := newTestServer(t, Config{Recorder: recorder})

		resp, body := doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/usage?identity=user_abc&identity=ip_9.9.9.9", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		var report usageResponse
		mustUnmarshal(t, body, &report)
		if len(report.Usage) != 2 {
			t.Fatalf("expected 2 usage rows, got %d", len(report.Usage))
		}
		abc := report.Usage[0]
		if abc.Identity != "user_abc" || abc.Allowed != 2 || abc.QuotaDenied != 1 || abc.Total != 3 {
			t.Fatalf("unexpected usage row: %+v", abc)
		}
		idle := report.Usage[1]
		if idle.Identity != "ip_9.9.9.9" || idle.Total != 0 {
			t.Fatalf("expected an empty row for the unseen identity, got %+v", idle)
		}

		resp, body = doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/usage", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 without identities, got %d: %s", resp.StatusCode, body)
		}
	})
}

func TestHTTP_AdminUsageDisabledWithoutRecorder(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		srv := newTestServer(t, Config{})

		resp, body := doRequestJSON(t, http.MethodGet, srv.URL+"/v1/admin/usage?identity=user_abc", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", resp.StatusCode, body)
		}
		var parsed errorResponse
		mustUnmarshal(t, body, &parsed)
		if parsed.Error != "ledger_disabled" {
			t.Fatalf("expected ledger_disabled, got %q", parsed.Error)
		}
	})
}
