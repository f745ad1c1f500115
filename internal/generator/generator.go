package generator

import (
	"context"
	"time"

	"slidesmith/pkg/deck"
)

// Request asks a generator for a run of content slides.
type Request struct {
	Topic         string
	NumSlides     int
	CustomContent string
}

// Generator drafts content slides for a topic. Implementations may call out
// to a model backend and take arbitrarily long; they must honor ctx.
type Generator interface {
	// Generate returns NumSlides content slides. The opening title slide is
	// not the generator's job; ComposeDeck adds it.
	Generate(ctx context.Context, req Request) ([]deck.Slide, error)
	// Name identifies the backend for diagnostics.
	Name() string
}

// ComposeDeck builds the full slide run for a new presentation: a title slide
// stamped with the generation date, then the generator's content slides.
func ComposeDeck(ctx context.Context, g Generator, now time.Time, req Request) ([]deck.Slide, error) {
	slides := []deck.Slide{{
		Type:    deck.SlideTitle,
		Title:   req.Topic,
		Content: []string{"Generated on " + now.Format("January 02, 2006")},
	}}
	if req.NumSlides > 1 {
		rest, err := g.Generate(ctx, Request{
			Topic:         req.Topic,
			NumSlides:     req.NumSlides - 1,
			CustomContent: req.CustomContent,
		})
		if err != nil {
			return nil, err
		}
		slides = append(slides, rest...)
	}
	return slides, nil
}
