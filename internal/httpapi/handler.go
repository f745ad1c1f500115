package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"slidesmith/internal/cache"
	"slidesmith/internal/generator"
	"slidesmith/internal/ledger"
	"slidesmith/internal/store"
	"slidesmith/pkg/admission"
)

// Config wires dependencies for the HTTP handler.
type Config struct {
	Store      store.Store
	Generator  *generator.Switcher
	Generators map[string]generator.Generator
	Controller *admission.Controller
	Caches     cache.Layers
	// Recorder accounts admission outcomes. Nil disables the usage endpoint.
	Recorder ledger.Recorder
	Now      func() time.Time
}

// NewHandler builds the HTTP handler for the presentation service. Routes
// under /v1/presentations run behind the admission middleware; health,
// catalog, diagnostics, and admin routes stay outside it so they can never
// consume a caller's quota.
func NewHandler(cfg Config) http.Handler {
	h := &handler{
		store:      cfg.Store,
		generator:  cfg.Generator,
		generators: cfg.Generators,
		controller: cfg.Controller,
		caches:     cfg.Caches,
		recorder:   cfg.Recorder,
		nowFn:      cfg.Now,
	}

	r := chi.NewRouter()
	r.Get("/healthz", h.handleHealth)
	r.Get("/v1/themes", h.handleThemes)
	r.Get("/v1/admission", h.handleAdmission)
	r.Route("/v1/admin", func(r chi.Router) {
		r.Get("/cache/stats", h.handleCacheStats)
		r.Post("/cache/clear", h.handleCacheClear)
		r.Get("/generator", h.handleGeneratorStatus)
		r.Post("/generator", h.handleGeneratorSwitch)
		r.Get("/usage", h.handleUsage)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.admit)
		r.Post("/v1/presentations", h.handleCreate)
		r.Get("/v1/presentations", h.handleList)
		r.Get("/v1/presentations/search/{topic}", h.handleSearch)
		r.Get("/v1/presentations/{id}", h.handleGet)
		r.Delete("/v1/presentations/{id}", h.handleDelete)
		r.Post("/v1/presentations/{id}/configure", h.handleConfigure)
		r.Get("/v1/presentations/{id}/download", h.handleDownload)
	})
	return r
}

type handler struct {
	store      store.Store
	generator  *generator.Switcher
	generators map[string]generator.Generator
	controller *admission.Controller
	caches     cache.Layers
	recorder   ledger.Recorder
	nowFn      func() time.Time
}

func (h *handler) now() time.Time {
	if h.nowFn != nil {
		return h.nowFn()
	}
	return time.Now()
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
