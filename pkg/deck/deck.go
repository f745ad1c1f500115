package deck

import (
	"fmt"
	"time"
)

// SlideType identifies the layout of one slide.
type SlideType string

const (
	// SlideTitle is the opening slide carrying the deck title.
	SlideTitle SlideType = "title"
	// SlideBulletPoints is a heading over a bulleted list.
	SlideBulletPoints SlideType = "bullet_points"
	// SlideTwoColumn splits its content across two columns.
	SlideTwoColumn SlideType = "two_column"
	// SlideContentWithImage pairs text content with an image suggestion.
	SlideContentWithImage SlideType = "content_with_image"
)

// Valid reports whether t is a known slide layout.
func (t SlideType) Valid() bool {
	switch t {
	case SlideTitle, SlideBulletPoints, SlideTwoColumn, SlideContentWithImage:
		return true
	}
	return false
}

// Slide is one generated slide.
type Slide struct {
	Type            SlideType `json:"slide_type"`
	Title           string    `json:"title"`
	Content         []string  `json:"content"`
	ImageSuggestion string    `json:"image_suggestion,omitempty"`
	Citations       []string  `json:"citations,omitempty"`
}

// Presentation is a stored deck: the generated slides plus the styling
// configuration applied at export time.
type Presentation struct {
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	NumSlides     int       `json:"num_slides"`
	Slides        []Slide   `json:"slides"`
	CustomContent string    `json:"custom_content,omitempty"`
	Theme         string    `json:"theme"`
	Font          string    `json:"font"`
	Colors        ColorSet  `json:"colors"`
	AspectRatio   string    `json:"aspect_ratio"`
	CustomWidth   float64   `json:"custom_width,omitempty"`
	CustomHeight  float64   `json:"custom_height,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Geometry resolves the page size the deck should be exported at.
func (p Presentation) Geometry() (AspectRatio, error) {
	if p.AspectRatio == RatioCustom {
		return CustomRatio(p.CustomWidth, p.CustomHeight)
	}
	ratio, ok := RatioByKey(p.AspectRatio)
	if !ok {
		return AspectRatio{}, fmt.Errorf("unknown aspect ratio %q", p.AspectRatio)
	}
	return ratio, nil
}

// Payload bounds enforced on create.
const (
	MaxTopicLength         = 200
	MaxSlides              = 20
	MaxCustomContentLength = 2000
	// DefaultNumSlides is used when a create request omits num_slides.
	DefaultNumSlides = 5
)

// CreateRequest is the payload for creating a presentation.
type CreateRequest struct {
	Topic         string `json:"topic"`
	NumSlides     int    `json:"num_slides"`
	CustomContent string `json:"custom_content,omitempty"`
}

// Validate checks the payload bounds.
func (r CreateRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if len(r.Topic) > MaxTopicLength {
		return fmt.Errorf("topic exceeds %d characters", MaxTopicLength)
	}
	if r.NumSlides < 1 || r.NumSlides > MaxSlides {
		return fmt.Errorf("num_slides must be between 1 and %d", MaxSlides)
	}
	if len(r.CustomContent) > MaxCustomContentLength {
		return fmt.Errorf("custom_content exceeds %d characters", MaxCustomContentLength)
	}
	return nil
}

// ConfigureRequest restyles a stored presentation without regenerating its
// slides. Nil fields keep the current value; setting a theme also resets font
// and colors to the theme's own unless those fields override them in the same
// request.
type ConfigureRequest struct {
	Theme        *string   `json:"theme,omitempty"`
	Font         *string   `json:"font,omitempty"`
	Colors       *ColorSet `json:"colors,omitempty"`
	AspectRatio  *string   `json:"aspect_ratio,omitempty"`
	CustomWidth  *float64  `json:"custom_width,omitempty"`
	CustomHeight *float64  `json:"custom_height,omitempty"`
}

// Validate checks that every provided field names a known theme, ratio, or
// acceptable page size.
func (r ConfigureRequest) Validate() error {
	if r.Theme != nil {
		if _, ok := ThemeByName(*r.Theme); !ok {
			return fmt.Errorf("unknown theme %q", *r.Theme)
		}
	}
	if r.AspectRatio != nil && *r.AspectRatio != RatioCustom {
		if _, ok := RatioByKey(*r.AspectRatio); !ok {
			return fmt.Errorf("unknown aspect ratio %q", *r.AspectRatio)
		}
	}
	if r.CustomWidth != nil || r.CustomHeight != nil {
		width, height := valueOr(r.CustomWidth, MinPageInches), valueOr(r.CustomHeight, MinPageInches)
		if !ValidPageSize(width, height) {
			return fmt.Errorf("custom dimensions must be between %g and %g inches", MinPageInches, MaxPageInches)
		}
	}
	return nil
}

// Apply folds the configuration into p.
func (r ConfigureRequest) Apply(p *Presentation) {
	if r.Theme != nil {
		p.Theme = *r.Theme
		theme, _ := ThemeByName(*r.Theme)
		if r.Font == nil {
			p.Font = theme.Font
		}
		if r.Colors == nil {
			p.Colors = theme.Colors
		}
	}
	if r.Font != nil {
		p.Font = *r.Font
	}
	if r.Colors != nil {
		p.Colors = *r.Colors
	}
	if r.AspectRatio != nil {
		p.AspectRatio = *r.AspectRatio
	}
	if r.CustomWidth != nil {
		p.CustomWidth = *r.CustomWidth
	}
	if r.CustomHeight != nil {
		p.CustomHeight = *r.CustomHeight
	}
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
