package deck

import "fmt"

// AspectRatio describes a page geometry in inches.
type AspectRatio struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Orientation string  `json:"orientation"`
	CommonUse   string  `json:"common_use"`
}

// Aspect ratio keys.
const (
	RatioWidescreen  = "16:9"
	Ratio4x3         = "4:3"
	RatioA4Portrait  = "A4"
	RatioA4Landscape = "A4_L"
	RatioSquare      = "1:1"
	// RatioCustom marks caller-supplied dimensions.
	RatioCustom = "custom"
)

// DefaultAspectRatio is applied to new presentations.
const DefaultAspectRatio = RatioWidescreen

// Page size bounds for custom dimensions, in inches.
const (
	MinPageInches = 5.0
	MaxPageInches = 20.0
)

var ratios = []AspectRatio{
	{
		Key:         RatioWidescreen,
		Name:        "Widescreen (16:9)",
		Description: "Standard widescreen format, great for modern displays",
		Width:       13.33,
		Height:      7.5,
		Orientation: "landscape",
		CommonUse:   "Modern presentations, video displays",
	},
	{
		Key:         Ratio4x3,
		Name:        "Standard (4:3)",
		Description: "Traditional standard format, good for older projectors",
		Width:       10,
		Height:      7.5,
		Orientation: "landscape",
		CommonUse:   "Traditional presentations, older projectors",
	},
	{
		Key:         RatioA4Portrait,
		Name:        "A4 Portrait",
		Description: "A4 paper ratio in portrait orientation",
		Width:       8.27,
		Height:      11.69,
		Orientation: "portrait",
		CommonUse:   "Print-friendly presentations, documents",
	},
	{
		Key:         RatioA4Landscape,
		Name:        "A4 Landscape",
		Description: "A4 paper ratio in landscape orientation",
		Width:       11.69,
		Height:      8.27,
		Orientation: "landscape",
		CommonUse:   "Print-friendly landscape presentations",
	},
	{
		Key:         RatioSquare,
		Name:        "Square (1:1)",
		Description: "Square format, great for social media and mobile",
		Width:       10,
		Height:      10,
		Orientation: "square",
		CommonUse:   "Social media, mobile presentations",
	},
}

// RatioByKey looks a preset geometry up by its key. Custom geometries are
// built with CustomRatio instead.
func RatioByKey(key string) (AspectRatio, bool) {
	for _, r := range ratios {
		if r.Key == key {
			return r, true
		}
	}
	return AspectRatio{}, false
}

// AspectRatios lists the preset geometries in declaration order.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(ratios))
	copy(out, ratios)
	return out
}

// ValidPageSize reports whether both dimensions fall within the accepted
// range for custom pages.
func ValidPageSize(width, height float64) bool {
	return width >= MinPageInches && width <= MaxPageInches &&
		height >= MinPageInches && height <= MaxPageInches
}

// CustomRatio builds a geometry from caller-supplied dimensions.
func CustomRatio(width, height float64) (AspectRatio, error) {
	if !ValidPageSize(width, height) {
		return AspectRatio{}, fmt.Errorf("invalid dimensions %gx%g: must be between %g and %g inches", width, height, MinPageInches, MaxPageInches)
	}
	orientation := "square"
	switch {
	case width > height:
		orientation = "landscape"
	case height > width:
		orientation = "portrait"
	}
	return AspectRatio{
		Key:         RatioCustom,
		Name:        fmt.Sprintf("Custom (%g\" x %g\")", width, height),
		Description: fmt.Sprintf("Custom dimensions: %g\" x %g\"", width, height),
		Width:       width,
		Height:      height,
		Orientation: orientation,
		CommonUse:   "Custom requirements",
	}, nil
}
