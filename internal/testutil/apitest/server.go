package apitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"slidesmith/internal/cache"
	"slidesmith/internal/generator"
	"slidesmith/internal/httpapi"
	"slidesmith/internal/ledger"
	"slidesmith/internal/store"
	"slidesmith/internal/store/memory"
	"slidesmith/pkg/admission"
)

// ServerConfig wires dependencies for StartServer.
type ServerConfig struct {
	Store      store.Store
	Generator  *generator.Switcher
	Generators map[string]generator.Generator
	Controller *admission.Controller
	Caches     cache.Layers
	Recorder   ledger.Recorder
	Now        func() time.Time
}

// ServerInstance represents a running HTTP test server.
type ServerInstance struct {
	BaseURL string
	Close   func()
}

// StartServer launches an in-memory HTTP server for the presentation API.
// Dependencies left nil get working in-memory defaults.
func StartServer(t *testing.T, cfg ServerConfig) *ServerInstance {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = memory.New()
	}
	if cfg.Generator == nil {
		cfg.Generator = generator.NewSwitcher(generator.NewTemplateGenerator())
	}
	if cfg.Controller == nil {
		cfg.Controller = admission.NewController(admission.Config{})
	}
	if cfg.Caches.Presentations == nil {
		cfg.Caches = cache.Layers{
			Presentations: cache.NewMemory(cache.PresentationTTL, cache.PresentationMaxEntries),
			Slides:        cache.NewMemory(cache.SlideTTL, cache.SlideMaxEntries),
			Responses:     cache.NewMemory(cache.ResponseTTL, cache.ResponseMaxEntries),
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	handler := httpapi.NewHandler(httpapi.Config{
		Store:      cfg.Store,
		Generator:  cfg.Generator,
		Generators: cfg.Generators,
		Controller: cfg.Controller,
		Caches:     cfg.Caches,
		Recorder:   cfg.Recorder,
		Now:        cfg.Now,
	})
	server := httptest.NewServer(handler)
	return &ServerInstance{
		BaseURL: server.URL,
		Close:   server.Close,
	}
}
