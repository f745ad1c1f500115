package httpapi

import (
	"net/http"

	"slidesmith/pkg/deck"
)

type catalogResponse struct {
	Themes       []deck.Theme       `json:"themes"`
	AspectRatios []deck.AspectRatio `json:"aspect_ratios"`
}

// handleAdmission reports admission limits and pool occupancy. Read-only: it
// must never count against a caller's quota, which is why the route sits
// outside the admission group.
func (h *handler) handleAdmission(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.Snapshot())
}

func (h *handler) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Themes:       deck.Themes(),
		AspectRatios: deck.AspectRatios(),
	})
}
