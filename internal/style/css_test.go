package style

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

func TestMainCSSInterpolatesPalette(t *testing.T) {
	eff := settings.Defaults()
	eff.FontSize = 18
	eff.LineHeight = 1.8

	css := MainCSS(eff)
	assert.Contains(t, css, "--cyberdark-bg: #0a0a0b;")
	assert.Contains(t, css, "--cyberdark-accent: #4ade80;")
	assert.Contains(t, css, "--cyberdark-font-size: 18px;")
	assert.Contains(t, css, "--cyberdark-line-height: 1.80;")
}

func TestMainCSSFeatureBlocks(t *testing.T) {
	eff := settings.Defaults()
	eff.TextShadow = false
	eff.ReducedMotion = false
	css := MainCSS(eff)
	assert.NotContains(t, css, "text-shadow")
	assert.NotContains(t, css, "animation-duration")

	eff.TextShadow = true
	eff.ReducedMotion = true
	eff.HighContrast = true
	css = MainCSS(eff)
	assert.Contains(t, css, "text-shadow")
	assert.Contains(t, css, "animation-duration: 0.01ms")
	assert.Contains(t, css, "text-decoration: underline")
}

func TestColorBlindModeSubstitutesPalette(t *testing.T) {
	eff := settings.Defaults()
	eff.AccentColor = "#123456"
	eff.ColorBlindMode = settings.ColorBlindProtanopia

	css := MainCSS(eff)
	assert.Contains(t, css, "--cyberdark-accent: #4d9fff;")
	assert.NotContains(t, css, "#123456")
}

func TestHostileColorNeverReachesCSS(t *testing.T) {
	// A value that slipped past earlier validation must still be caught at
	// interpolation time.
	eff := settings.Defaults()
	eff.AccentColor = "red; } body { background: url(//evil)"

	css := MainCSS(eff)
	assert.NotContains(t, css, "evil")
	assert.Contains(t, css, "--cyberdark-accent: "+settings.Defaults().AccentColor+";")
}

func TestStructuralPropsUsePalette(t *testing.T) {
	eff := settings.Defaults()
	props := StructuralProps(eff)
	assert.Equal(t, eff.SurfaceColor, props["background-color"])
	assert.Equal(t, eff.TextColor, props["color"])
}

func TestStructuralCSSListsSelectors(t *testing.T) {
	css := StructuralCSS(settings.Defaults())
	for _, sel := range StructuralSelectors {
		assert.Contains(t, css, sel)
	}
}

func TestOverlayCSSCarriesFadeDuration(t *testing.T) {
	css := OverlayCSS(150 * time.Millisecond)
	assert.Contains(t, css, "opacity 150ms")
	assert.True(t, strings.Contains(css, "position: fixed"))
}
