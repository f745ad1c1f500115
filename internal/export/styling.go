package export

import (
	"strings"

	"slidesmith/pkg/deck"
)

// styling holds the resolved colors and font for one rendered deck.
// Colors are six-digit uppercase hex without the leading '#'.
type styling struct {
	font        string
	titleColor  string
	bodyColor   string
	columnColor string
	background  string
	primary     string
	secondary   string
	accent      string
}

// resolveStyling merges the presentation's theme and custom overrides.
// Title and body text follow the theme palette first; two-column text and
// the slide background prefer custom colors.
func resolveStyling(p *deck.Presentation) styling {
	theme, _ := deck.ThemeByName(p.Theme)
	return styling{
		font:        firstNonEmpty(p.Font, theme.Font, "Arial"),
		titleColor:  pickColor("2E86AB", theme.Colors.Primary, p.Colors.Primary),
		bodyColor:   pickColor("2C3E50", theme.Colors.Text, p.Colors.Text),
		columnColor: pickColor("2C3E50", p.Colors.Text, theme.Colors.Text),
		background:  pickColor("FFFFFF", p.Colors.Background, theme.Colors.Background),
		primary:     pickColor("2E86AB", theme.Colors.Primary, p.Colors.Primary),
		secondary:   pickColor("A23B72", theme.Colors.Secondary, p.Colors.Secondary),
		accent:      pickColor("3498DB", theme.Colors.Accent, p.Colors.Accent),
	}
}

// pickColor returns the first candidate that parses as an RGB hex string.
func pickColor(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if hex := rgbHex(c); hex != "" {
			return hex
		}
	}
	return fallback
}

// rgbHex normalizes "#2e86ab" style values to "2E86AB". Anything that is
// not six hex digits yields "".
func rgbHex(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return ""
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return ""
		}
	}
	return strings.ToUpper(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
