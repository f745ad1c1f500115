package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slidesmith/internal/cache"
	"slidesmith/internal/export"
	"slidesmith/internal/generator"
	"slidesmith/internal/store"
	"slidesmith/pkg/deck"
)

// List paging bounds.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

type presentationsResponse struct {
	Presentations []deck.Presentation `json:"presentations"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req deck.CreateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.NumSlides == 0 {
		req.NumSlides = deck.DefaultNumSlides
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	now := h.now().UTC()
	slides, err := h.generateSlides(ctx, req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generation_failed", "slide generation failed")
		return
	}

	p := deck.Presentation{
		ID:            uuid.NewString(),
		Topic:         req.Topic,
		NumSlides:     req.NumSlides,
		Slides:        slides,
		CustomContent: req.CustomContent,
		Theme:         deck.DefaultTheme,
		AspectRatio:   deck.DefaultAspectRatio,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.Save(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save presentation")
		return
	}
	h.cachePresentation(ctx, p)
	h.invalidateResponses(ctx)
	writeJSON(w, http.StatusCreated, p)
}

// generateSlides returns the slide run for a create request, reusing a prior
// generation for the identical request when the slide cache still holds it.
func (h *handler) generateSlides(ctx context.Context, req deck.CreateRequest) ([]deck.Slide, error) {
	key := cache.GenerationKey(req.Topic, req.NumSlides, req.CustomContent)
	if data, ok := cacheGet(ctx, h.caches.Slides, key); ok {
		var slides []deck.Slide
		if err := json.Unmarshal(data, &slides); err == nil {
			return slides, nil
		}
	}
	slides, err := generator.ComposeDeck(ctx, h.generator, h.now(), generator.Request{
		Topic:         req.Topic,
		NumSlides:     req.NumSlides,
		CustomContent: req.CustomContent,
	})
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(slides); err == nil {
		cacheSet(ctx, h.caches.Slides, key, data)
	}
	return slides, nil
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "offset must be a non-negative integer")
		return
	}

	ctx := r.Context()
	key := cache.ResponseKey("list", map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	})
	if data, ok := cacheGet(ctx, h.caches.Responses, key); ok {
		writeBytes(w, http.StatusOK, data)
		return
	}

	presentations, err := h.store.List(ctx, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to list presentations")
		return
	}
	h.respondCached(ctx, w, key, presentationsResponse{Presentations: presentations})
}

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	ctx := r.Context()
	key := cache.ResponseKey("search", map[string]string{"topic": topic})
	if data, ok := cacheGet(ctx, h.caches.Responses, key); ok {
		writeBytes(w, http.StatusOK, data)
		return
	}

	presentations, err := h.store.Search(ctx, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to search presentations")
		return
	}
	h.respondCached(ctx, w, key, presentationsResponse{Presentations: presentations})
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.loadPresentation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		writeStoreError(w, err)
		return
	}
	cacheDelete(ctx, h.caches.Presentations, id)
	h.invalidateResponses(ctx)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *handler) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req deck.ConfigureRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	p, err := h.store.Get(ctx, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	req.Apply(&p)
	if _, err := p.Geometry(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	p.UpdatedAt = h.now().UTC()
	if err := h.store.Save(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to save presentation")
		return
	}
	h.cachePresentation(ctx, p)
	h.invalidateResponses(ctx)
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	p, err := h.loadPresentation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePPTX(&buf, &p); err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", "failed to build the slide file")
		return
	}
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(p.ID)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// loadPresentation serves reads cache-first, refilling the cache on a store
// hit.
func (h *handler) loadPresentation(ctx context.Context, id string) (deck.Presentation, error) {
	if data, ok := cacheGet(ctx, h.caches.Presentations, id); ok {
		var p deck.Presentation
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
	}
	p, err := h.store.Get(ctx, id)
	if err != nil {
		return deck.Presentation{}, err
	}
	h.cachePresentation(ctx, p)
	return p, nil
}

func (h *handler) cachePresentation(ctx context.Context, p deck.Presentation) {
	if data, err := json.Marshal(p); err == nil {
		cacheSet(ctx, h.caches.Presentations, p.ID, data)
	}
}

// respondCached writes payload and keeps the encoded bytes for later
// identical requests.
func (h *handler) respondCached(ctx context.Context, w http.ResponseWriter, key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "response encoding failed")
		return
	}
	cacheSet(ctx, h.caches.Responses, key, data)
	writeBytes(w, http.StatusOK, data)
}

// invalidateResponses drops the list/search response layer after a mutation.
// Entries are keyed by fingerprint, so selective invalidation is not possible.
func (h *handler) invalidateResponses(ctx context.Context) {
	if h.caches.Responses != nil {
		_ = h.caches.Responses.Clear(ctx)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "presentation not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "storage_error", "storage operation failed")
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func cacheGet(ctx context.Context, c cache.Cache, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.Get(ctx, key)
}

func cacheSet(ctx context.Context, c cache.Cache, key string, value []byte) {
	if c == nil {
		return
	}
	c.Set(ctx, key, value)
}

func cacheDelete(ctx context.Context, c cache.Cache, key string) {
	if c == nil {
		return
	}
	c.Delete(ctx, key)
}
