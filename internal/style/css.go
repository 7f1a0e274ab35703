package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

// StructuralSelectors is the fixed selector set for elements that need
// inline fixes because stylesheets cannot reliably reach them.
var StructuralSelectors = []string{
	"header",
	"thead",
	"th",
	"[role=\"alert\"]",
	"[role=\"status\"]",
	"[role=\"banner\"]",
	".alert",
	".banner",
	".status-bar",
}

// ResolvePalette returns the palette used for stylesheet generation. Color
// vision modes substitute the whole palette, and every channel is run
// through the color sanitizer once more right before it is interpolated
// into CSS text.
func ResolvePalette(eff *settings.Settings) settings.Palette {
	p := eff.Palette()
	if sub, ok := settings.PaletteFor(eff.ColorBlindMode); ok {
		p = sub
	}
	d := settings.Defaults()
	p.Background = settings.SanitizeHexColor(p.Background, d.BackgroundColor)
	p.Surface = settings.SanitizeHexColor(p.Surface, d.SurfaceColor)
	p.Text = settings.SanitizeHexColor(p.Text, d.TextColor)
	p.Accent = settings.SanitizeHexColor(p.Accent, d.AccentColor)
	return p
}

func writeVars(sb *strings.Builder, p settings.Palette, eff *settings.Settings) {
	sb.WriteString(":root {\n")
	sb.WriteString("  --cyberdark-bg: " + p.Background + ";\n")
	sb.WriteString("  --cyberdark-surface: " + p.Surface + ";\n")
	sb.WriteString("  --cyberdark-text: " + p.Text + ";\n")
	sb.WriteString("  --cyberdark-accent: " + p.Accent + ";\n")
	fmt.Fprintf(sb, "  --cyberdark-font-size: %gpx;\n", eff.FontSize)
	fmt.Fprintf(sb, "  --cyberdark-line-height: %.2f;\n", eff.LineHeight)
	sb.WriteString("}\n")
}

const mainRules = `html {
  background-color: var(--cyberdark-bg) !important;
  color-scheme: dark;
}
body {
  background-color: var(--cyberdark-bg) !important;
  color: var(--cyberdark-text) !important;
  font-size: var(--cyberdark-font-size) !important;
  line-height: var(--cyberdark-line-height) !important;
}
div, section, article, aside, nav, main, footer {
  background-color: transparent;
  color: inherit;
}
input, textarea, select, button {
  background-color: var(--cyberdark-surface) !important;
  color: var(--cyberdark-text) !important;
  border-color: var(--cyberdark-accent);
}
a, a:visited {
  color: var(--cyberdark-accent) !important;
}
img, video, canvas {
  filter: brightness(0.88);
}
`

const textShadowRules = `h1, h2, h3, h4, h5, h6, p, li, td, th, span {
  text-shadow: 0 0 2px var(--cyberdark-bg);
}
`

const highContrastRules = `body {
  --cyberdark-text: #ffffff;
}
a, a:visited, button {
  text-decoration: underline;
}
`

const focusOutlineRules = `:focus-visible {
  outline: 2px solid var(--cyberdark-accent) !important;
  outline-offset: 2px;
}
`

const reducedMotionRules = `*, *::before, *::after {
  animation-duration: 0.01ms !important;
  animation-iteration-count: 1 !important;
  transition-duration: 0.01ms !important;
  scroll-behavior: auto !important;
}
`

// MainCSS builds the full theme stylesheet for a document or shadow root.
func MainCSS(eff *settings.Settings) string {
	p := ResolvePalette(eff)
	var sb strings.Builder
	writeVars(&sb, p, eff)
	sb.WriteString(mainRules)
	if eff.TextShadow {
		sb.WriteString(textShadowRules)
	}
	if eff.HighContrast {
		sb.WriteString(highContrastRules)
	}
	if eff.FocusOutline {
		sb.WriteString(focusOutlineRules)
	}
	if eff.ReducedMotion {
		sb.WriteString(reducedMotionRules)
	}
	return sb.String()
}

// IframeCSS builds the minimal stylesheet attached to same-origin frames.
// Frames only get the base colors; feature rules stay in the top document.
func IframeCSS(eff *settings.Settings) string {
	p := ResolvePalette(eff)
	var sb strings.Builder
	writeVars(&sb, p, eff)
	sb.WriteString(`html, body {
  background-color: var(--cyberdark-bg) !important;
  color: var(--cyberdark-text) !important;
}
`)
	return sb.String()
}

// StructuralCSS builds the supporting sheet behind the structural inline
// fixes, covering pseudo elements the inline pass cannot reach.
func StructuralCSS(eff *settings.Settings) string {
	p := ResolvePalette(eff)
	var sb strings.Builder
	writeVars(&sb, p, eff)
	fmt.Fprintf(&sb, `%s {
  background-color: var(--cyberdark-surface) !important;
  color: var(--cyberdark-text) !important;
  border-color: var(--cyberdark-accent);
}
`, strings.Join(StructuralSelectors, ",\n"))
	return sb.String()
}

// StructuralProps returns the inline properties applied to individual
// structural elements. Priors are remembered element by element so removal
// restores the page exactly.
func StructuralProps(eff *settings.Settings) map[string]string {
	p := ResolvePalette(eff)
	return map[string]string{
		"background-color": p.Surface,
		"color":            p.Text,
		"border-color":     p.Accent,
	}
}

// EmergencyCSS is the instant minimal dark sheet attached before settings
// are known. It uses fixed colors on purpose; the real palette replaces it
// as soon as the record arrives.
func EmergencyCSS() string {
	return `html, body {
  background-color: #0a0a0b !important;
  color: #e8e6e3 !important;
}
`
}

// OverlayCSS is the full-viewport cover hiding the unstyled flash. The
// transition matches the fade the controller runs before removing it.
func OverlayCSS(fade time.Duration) string {
	return fmt.Sprintf(`#cyberdark-overlay {
  position: fixed;
  inset: 0;
  background-color: #0a0a0b;
  z-index: 2147483647;
  pointer-events: none;
  transition: opacity %dms ease-out;
}
`, fade.Milliseconds())
}

// ColorSchemeCSS is the color-scheme hint accompanying the emergency sheet
// so native widgets render dark immediately.
func ColorSchemeCSS() string {
	return ":root { color-scheme: dark; }\n"
}
