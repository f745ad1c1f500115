package cli

import (
	"fmt"
	"io"
	"strings"

	"slidesmith/pkg/deck"
	"slidesmith/pkg/deckclient"
)

// printPresentation renders one presentation with its slides.
func printPresentation(w io.Writer, p deck.Presentation) {
	fmt.Fprintf(w, "%s  %s\n", p.ID, p.Topic)
	fmt.Fprintf(w, "  theme=%s font=%s ratio=%s slides=%d created=%s\n",
		p.Theme, p.Font, p.AspectRatio, len(p.Slides), p.CreatedAt.Format("2006-01-02 15:04:05"))
	for i, slide := range p.Slides {
		fmt.Fprintf(w, "  %2d. [%s] %s\n", i+1, slide.Type, slide.Title)
		for _, line := range slide.Content {
			fmt.Fprintf(w, "      - %s\n", line)
		}
		if len(slide.Citations) > 0 {
			fmt.Fprintf(w, "      citations: %s\n", strings.Join(slide.Citations, "; "))
		}
	}
}

// printPresentationList renders one line per presentation.
func printPresentationList(w io.Writer, presentations []deck.Presentation) {
	if len(presentations) == 0 {
		fmt.Fprintln(w, "No presentations")
		return
	}
	for _, p := range presentations {
		fmt.Fprintf(w, "%s  %-40s theme=%s slides=%d\n", p.ID, clip(p.Topic, 40), p.Theme, len(p.Slides))
	}
}

// printClientError explains a request failure, including the retry hint on
// quota denials.
func printClientError(stderr io.Writer, err error) {
	switch {
	case deckclient.IsRateLimited(err):
		fmt.Fprintf(stderr, "Rate limited: %v\n", err)
	case deckclient.IsBusy(err):
		fmt.Fprintf(stderr, "Server busy: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
}

func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit-3] + "..."
}
