package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"slidesmith/internal/cache"
	"slidesmith/internal/ledger"
)

type cacheStatsResponse struct {
	Caches map[string]cache.Stats `json:"caches"`
}

type generatorStatusResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

type generatorSwitchRequest struct {
	Provider string `json:"provider"`
}

type usageResponse struct {
	Usage []ledger.Usage `json:"usage"`
}

func (h *handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.caches.StatsAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache_error", "failed to read cache stats")
		return
	}
	writeJSON(w, http.StatusOK, cacheStatsResponse{Caches: stats})
}

func (h *handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.caches.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "cache_error", "failed to clear caches")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) handleGeneratorStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generatorStatusResponse{
		Active:    h.generator.Name(),
		Available: h.availableGenerators(),
	})
}

func (h *handler) handleGeneratorSwitch(w http.ResponseWriter, r *http.Request) {
	var req generatorSwitchRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil || req.Provider == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "a provider name is required")
		return
	}
	g, ok := h.generators[req.Provider]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_provider", fmt.Sprintf("unknown provider %q", req.Provider))
		return
	}
	h.generator.Use(g)
	writeJSON(w, http.StatusOK, generatorStatusResponse{
		Active:    h.generator.Name(),
		Available: h.availableGenerators(),
	})
}

func (h *handler) availableGenerators() []string {
	names := make([]string, 0, len(h.generators))
	for name := range h.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusNotFound, "ledger_disabled", "usage accounting is not enabled")
		return
	}
	identities := r.URL.Query()["identity"]
	if len(identities) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "at least one identity parameter is required")
		return
	}
	usages := make([]ledger.Usage, 0, len(identities))
	for _, id := range identities {
		usage, err := h.recorder.Usage(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusBadGateway, "ledger_error", "usage lookup failed")
			return
		}
		usages = append(usages, usage)
	}
	writeJSON(w, http.StatusOK, usageResponse{Usage: usages})
}
