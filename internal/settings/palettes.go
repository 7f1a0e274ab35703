package settings

// Palette is the four-color set interpolated into generated stylesheets.
type Palette struct {
	Background string
	Surface    string
	Text       string
	Accent     string
}

// Fixed accessible palettes substituted when a color-blind mode is active.
// Accents avoid the confusion axis of each deficiency: red/green modes get
// blue-leaning accents, tritanopia gets a red-leaning one, achromatopsia is
// pure grayscale.
var colorBlindPalettes = map[ColorBlindMode]Palette{
	ColorBlindProtanopia: {
		Background: "#0a0a0b",
		Surface:    "#16161d",
		Text:       "#e8e8f0",
		Accent:     "#4d9fff",
	},
	ColorBlindDeuteranopia: {
		Background: "#0a0a0b",
		Surface:    "#16161d",
		Text:       "#eceaf4",
		Accent:     "#3d85c6",
	},
	ColorBlindTritanopia: {
		Background: "#0b0a0a",
		Surface:    "#1d1616",
		Text:       "#f0e8e8",
		Accent:     "#ff6b6b",
	},
	ColorBlindAchromatopsia: {
		Background: "#0b0b0b",
		Surface:    "#1f1f1f",
		Text:       "#f0f0f0",
		Accent:     "#bdbdbd",
	},
}

// PaletteFor returns the fixed palette for a non-"none" color-blind mode.
func PaletteFor(mode ColorBlindMode) (Palette, bool) {
	p, ok := colorBlindPalettes[mode]
	return p, ok
}

// Palette returns the record's four accent colors as a Palette.
func (s *Settings) Palette() Palette {
	return Palette{
		Background: s.BackgroundColor,
		Surface:    s.SurfaceColor,
		Text:       s.TextColor,
		Accent:     s.AccentColor,
	}
}
