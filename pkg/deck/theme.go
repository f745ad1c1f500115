package deck

// ColorSet is the palette a theme paints slides with. Values are hex strings
// like "#2E86AB".
type ColorSet struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// Theme bundles a display name, font, and palette under a stable key.
type Theme struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Font        string   `json:"font"`
	Colors      ColorSet `json:"colors"`
}

// DefaultTheme is applied to new presentations.
const DefaultTheme = "modern"

var themes = []Theme{
	{
		Key:         "modern",
		Name:        "Modern",
		Description: "Clean, vibrant design with blue-purple gradient",
		Font:        "Segoe UI",
		Colors: ColorSet{
			Primary:    "#2E86AB",
			Secondary:  "#A23B72",
			Background: "#FFFFFF",
			Text:       "#2C3E50",
			Accent:     "#3498DB",
		},
	},
	{
		Key:         "classic",
		Name:        "Classic",
		Description: "Traditional business look with navy and gold",
		Font:        "Georgia",
		Colors: ColorSet{
			Primary:    "#1F4E79",
			Secondary:  "#D4AF37",
			Background: "#F8F9FA",
			Text:       "#2C3E50",
			Accent:     "#4682B4",
		},
	},
	{
		Key:         "minimal",
		Name:        "Minimal",
		Description: "Simple, clean design with black background",
		Font:        "Arial",
		Colors: ColorSet{
			Primary:    "#E74C3C",
			Secondary:  "#F39C12",
			Background: "#000000",
			Text:       "#FFFFFF",
			Accent:     "#ECF0F1",
		},
	},
	{
		Key:         "corporate",
		Name:        "Corporate",
		Description: "Professional business look with dark blue background",
		Font:        "Roboto",
		Colors: ColorSet{
			Primary:    "#3498DB",
			Secondary:  "#2ECC71",
			Background: "#1A1A2E",
			Text:       "#E8E8E8",
			Accent:     "#F39C12",
		},
	},
}

// ThemeByName looks a theme up by its key.
func ThemeByName(key string) (Theme, bool) {
	for _, t := range themes {
		if t.Key == key {
			return t, true
		}
	}
	return Theme{}, false
}

// Themes lists every theme in declaration order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}
