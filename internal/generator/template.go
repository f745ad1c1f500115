package generator

import (
	"context"
	"fmt"

	"slidesmith/pkg/deck"
)

// contentLayouts is the rotation content slides cycle through.
var contentLayouts = []deck.SlideType{
	deck.SlideBulletPoints,
	deck.SlideTwoColumn,
	deck.SlideContentWithImage,
}

// TemplateGenerator produces deterministic placeholder slides. It backs
// development, tests, and the fallback path when a model backend fails.
type TemplateGenerator struct{}

// NewTemplateGenerator returns the placeholder generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Name identifies the backend for diagnostics.
func (g *TemplateGenerator) Name() string { return "template" }

// Generate builds req.NumSlides slides, cycling through the content layouts.
func (g *TemplateGenerator) Generate(ctx context.Context, req Request) ([]deck.Slide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slides := make([]deck.Slide, 0, req.NumSlides)
	for i := 0; i < req.NumSlides; i++ {
		layout := contentLayouts[i%len(contentLayouts)]
		slides = append(slides, templateSlide(layout, req, i+1))
	}
	return slides, nil
}

func templateSlide(layout deck.SlideType, req Request, number int) deck.Slide {
	switch layout {
	case deck.SlideTwoColumn:
		return twoColumnSlide(req, number)
	case deck.SlideContentWithImage:
		return imageSlide(req, number)
	default:
		return bulletSlide(req, number)
	}
}

func bulletSlide(req Request, number int) deck.Slide {
	title := fmt.Sprintf("Key Point %d", number)
	content := []string{
		fmt.Sprintf("Important aspect of %s", req.Topic),
		fmt.Sprintf("Supporting detail for %s", title),
		fmt.Sprintf("Additional information about %s", req.Topic),
		fmt.Sprintf("Conclusion for %s", title),
	}
	if req.CustomContent != "" {
		content = append(content, "Custom content: "+clip(req.CustomContent, 50)+"...")
	}
	return deck.Slide{Type: deck.SlideBulletPoints, Title: title, Content: content}
}

func twoColumnSlide(req Request, number int) deck.Slide {
	content := []string{
		fmt.Sprintf("Column 1: Feature of %s", req.Topic),
		fmt.Sprintf("Column 2: Benefit of %s", req.Topic),
		fmt.Sprintf("Column 1: Advantage of %s", req.Topic),
		fmt.Sprintf("Column 2: Result of %s", req.Topic),
	}
	if req.CustomContent != "" {
		content = append(content, "Column 1: Custom aspect", "Column 2: Custom benefit")
	}
	return deck.Slide{
		Type:    deck.SlideTwoColumn,
		Title:   fmt.Sprintf("Comparison %d", number),
		Content: content,
	}
}

func imageSlide(req Request, number int) deck.Slide {
	title := fmt.Sprintf("Visual %d", number)
	content := []string{
		fmt.Sprintf("Main content about %s", req.Topic),
		fmt.Sprintf("Supporting text for %s", title),
		"Additional context and details",
	}
	if req.CustomContent != "" {
		content = append(content, "Custom content: "+clip(req.CustomContent, 50)+"...")
	}
	return deck.Slide{
		Type:            deck.SlideContentWithImage,
		Title:           title,
		Content:         content,
		ImageSuggestion: fmt.Sprintf("Image related to %s - %s", req.Topic, title),
	}
}

// clip returns at most max characters of s.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
