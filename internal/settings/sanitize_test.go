package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHexColor(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		fallback string
		want     string
	}{
		{name: "six digit lowercase", input: "#1a2b3c", fallback: "#000000", want: "#1a2b3c"},
		{name: "six digit uppercase normalized", input: "#AABBCC", fallback: "#000000", want: "#aabbcc"},
		{name: "three digit", input: "#FfF", fallback: "#000000", want: "#fff"},
		{name: "surrounding whitespace", input: "  #123abc  ", fallback: "#000000", want: "#123abc"},
		{name: "missing hash", input: "aabbcc", fallback: "#000000", want: "#000000"},
		{name: "four digits", input: "#abcd", fallback: "#000000", want: "#000000"},
		{name: "eight digits rejected", input: "#aabbccdd", fallback: "#000000", want: "#000000"},
		{name: "css injection attempt", input: "#fff;background:url(x)", fallback: "#000000", want: "#000000"},
		{name: "non string", input: 42, fallback: "#111111", want: "#111111"},
		{name: "nil", input: nil, fallback: "#222222", want: "#222222"},
		{name: "empty string", input: "", fallback: "#333333", want: "#333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHexColor(tt.input, tt.fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeNumericRange(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "in range", input: 18.0, want: 18.0},
		{name: "below min clamps", input: 6.0, want: FontSizeMin},
		{name: "above max clamps", input: 99.0, want: FontSizeMax},
		{name: "integer input", input: 14, want: 14.0},
		{name: "numeric string", input: "20", want: 20.0},
		{name: "numeric string clamps", input: "100", want: FontSizeMax},
		{name: "empty string", input: "", want: FontSizeDefault},
		{name: "garbage string", input: "huge", want: FontSizeDefault},
		{name: "nan", input: math.NaN(), want: FontSizeDefault},
		{name: "positive infinity", input: math.Inf(1), want: FontSizeDefault},
		{name: "bool is not numeric", input: true, want: FontSizeDefault},
		{name: "nil", input: nil, want: FontSizeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNumericRange(tt.input, FontSizeMin, FontSizeMax, FontSizeDefault)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("line height bounds", func(t *testing.T) {
		assert.Equal(t, 1.5, SanitizeNumericRange(1.5, LineHeightMin, LineHeightMax, LineHeightDefault))
		assert.Equal(t, LineHeightMax, SanitizeNumericRange(3.0, LineHeightMin, LineHeightMax, LineHeightDefault))
		assert.Equal(t, LineHeightMin, SanitizeNumericRange(0.2, LineHeightMin, LineHeightMax, LineHeightDefault))
	})
}

func TestSanitizeDomain(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "simple domain", input: "example.com", want: "example.com"},
		{name: "subdomain", input: "news.example.com", want: "news.example.com"},
		{name: "uppercase normalized", input: "EXAMPLE.Com", want: "example.com"},
		{name: "whitespace trimmed", input: "  example.com ", want: "example.com"},
		{name: "localhost allowed", input: "localhost", want: "localhost"},
		{name: "localhost uppercase", input: "LOCALHOST", want: "localhost"},
		{name: "hyphenated", input: "my-site.co.uk", want: "my-site.co.uk"},
		{name: "bare word rejected", input: "intranet", want: ""},
		{name: "single-letter tld rejected", input: "example.x", want: ""},
		{name: "scheme rejected", input: "https://example.com", want: ""},
		{name: "path rejected", input: "example.com/page", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "non string", input: 3.14, want: ""},
		{name: "overlong rejected", input: strings.Repeat("a", 250) + ".com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDomain(tt.input))
		})
	}
}

func TestSanitizeDomainList(t *testing.T) {
	t.Run("drops invalid preserving order", func(t *testing.T) {
		got := SanitizeDomainList([]any{"b.com", "not a domain", "A.ORG", 7, "c.net"})
		assert.Equal(t, []string{"b.com", "a.org", "c.net"}, got)
	})

	t.Run("newline delimited string", func(t *testing.T) {
		got := SanitizeDomainList("one.com\n\ntwo.org\njunk entry\n")
		assert.Equal(t, []string{"one.com", "two.org"}, got)
	})

	t.Run("caps at one thousand", func(t *testing.T) {
		input := make([]string, 0, MaxBlacklistEntries+200)
		for i := 0; i < MaxBlacklistEntries+200; i++ {
			input = append(input, fmt.Sprintf("host%04d.example.com", i))
		}
		got := SanitizeDomainList(input)
		require.Len(t, got, MaxBlacklistEntries)
		assert.Equal(t, "host0000.example.com", got[0])
		assert.Equal(t, fmt.Sprintf("host%04d.example.com", MaxBlacklistEntries-1), got[len(got)-1])
	})

	t.Run("non list input", func(t *testing.T) {
		assert.Empty(t, SanitizeDomainList(42))
		assert.Empty(t, SanitizeDomainList(nil))
	})
}

func TestSanitizeTimeString(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "valid morning", input: "09:30", want: "09:30"},
		{name: "midnight", input: "00:00", want: "00:00"},
		{name: "last minute", input: "23:59", want: "23:59"},
		{name: "hour out of range", input: "24:00", want: "12:00"},
		{name: "minute out of range", input: "10:60", want: "12:00"},
		{name: "single digit hour", input: "9:30", want: "12:00"},
		{name: "garbage", input: "soon", want: "12:00"},
		{name: "non string", input: 930, want: "12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTimeString(tt.input, "12:00"))
		})
	}
}

func TestSanitizeColorBlindMode(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  ColorBlindMode
	}{
		{name: "legacy true maps to protanopia", input: true, want: ColorBlindProtanopia},
		{name: "legacy false maps to none", input: false, want: ColorBlindNone},
		{name: "valid mode", input: "deuteranopia", want: ColorBlindDeuteranopia},
		{name: "valid mode mixed case", input: "Tritanopia", want: ColorBlindTritanopia},
		{name: "achromatopsia", input: "achromatopsia", want: ColorBlindAchromatopsia},
		{name: "unknown string", input: "monochrome", want: ColorBlindNone},
		{name: "number", input: 2, want: ColorBlindNone},
		{name: "nil", input: nil, want: ColorBlindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeColorBlindMode(tt.input))
		})
	}
}

func TestSanitizePerSiteOverrides_ForbiddenKeys(t *testing.T) {
	input := map[string]any{
		"__proto__":   map[string]any{"backgroundColor": "#ff0000"},
		"constructor": map[string]any{"fontSize": 20},
		"prototype":   map[string]any{"textShadow": true},
		"safe.com":    map[string]any{"fontSize": 18},
	}

	got := SanitizePerSiteOverrides(input)
	require.Equal(t, 1, got.Len())
	_, ok := got.Get("__proto__")
	assert.False(t, ok)
	ov, ok := got.Get("safe.com")
	require.True(t, ok)
	require.NotNil(t, ov.FontSize)
	assert.Equal(t, 18.0, *ov.FontSize)
}

func TestSanitizePerSiteOverrides_CapsAtHundred(t *testing.T) {
	input := NewSiteOverrides()
	size := 12.0
	for i := 0; i < 150; i++ {
		input.Set(fmt.Sprintf("site%03d.example.com", i), &SiteOverride{FontSize: &size})
	}

	got := SanitizePerSiteOverrides(input)
	require.Equal(t, MaxSiteOverrides, got.Len())
	domains := got.Domains()
	assert.Equal(t, "site000.example.com", domains[0])
	assert.Equal(t, "site099.example.com", domains[len(domains)-1])
	_, ok := got.Get("site100.example.com")
	assert.False(t, ok)
}

func TestSanitizePerSiteOverrides_SerializedTextKeepsDocumentOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{")
	for i := 0; i < 120; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%q:{\"fontSize\":14}", fmt.Sprintf("page%03d.example.com", i))
	}
	sb.WriteString("}")

	got := SanitizePerSiteOverrides(sb.String())
	require.Equal(t, MaxSiteOverrides, got.Len())
	domains := got.Domains()
	assert.Equal(t, "page000.example.com", domains[0])
	assert.Equal(t, "page099.example.com", domains[99])
}

func TestSanitizePerSiteOverrides_InvalidInput(t *testing.T) {
	assert.Equal(t, 0, SanitizePerSiteOverrides("{not json").Len())
	assert.Equal(t, 0, SanitizePerSiteOverrides(nil).Len())
	assert.Equal(t, 0, SanitizePerSiteOverrides(3).Len())

	got := SanitizePerSiteOverrides(map[string]any{
		"bad domain here": map[string]any{"fontSize": 14},
		"plain-value.com": "not an object",
	})
	assert.Equal(t, 0, got.Len())
}

func TestSanitizePerSiteOverrides_FieldSanitization(t *testing.T) {
	got := SanitizePerSiteOverrides(map[string]any{
		"site.example.com": map[string]any{
			"backgroundColor": "#ABCDEF",
			"surfaceColor":    "purple",
			"fontSize":        100,
			"lineHeight":      "not a number",
			"textShadow":      true,
			"highContrast":    "yes",
			"colorBlindMode":  true,
			"unknownField":    "dropped",
		},
	})

	ov, ok := got.Get("site.example.com")
	require.True(t, ok)
	require.NotNil(t, ov.BackgroundColor)
	assert.Equal(t, "#abcdef", *ov.BackgroundColor)
	assert.Nil(t, ov.SurfaceColor, "invalid color is dropped, not defaulted")
	require.NotNil(t, ov.FontSize)
	assert.Equal(t, FontSizeMax, *ov.FontSize)
	assert.Nil(t, ov.LineHeight)
	require.NotNil(t, ov.TextShadow)
	assert.True(t, *ov.TextShadow)
	assert.Nil(t, ov.HighContrast)
	require.NotNil(t, ov.ColorBlindMode)
	assert.Equal(t, ColorBlindProtanopia, *ov.ColorBlindMode)
}

func TestValidateSettings_NonObjectReturnsDefaults(t *testing.T) {
	defaults := Defaults()

	for _, input := range []any{nil, "text", 9, []any{"a"}} {
		got := ValidateSettings(input, defaults)
		require.NotNil(t, got)
		assert.Equal(t, defaults.BackgroundColor, got.BackgroundColor)
		assert.Equal(t, defaults.FontSize, got.FontSize)
		assert.NotSame(t, defaults, got)
	}
}

func TestValidateSettings_SanitizesEveryField(t *testing.T) {
	got := ValidateSettings(map[string]any{
		"backgroundColor": "#GGGGGG",
		"surfaceColor":    "#1A1A1B",
		"textColor":       "white",
		"accentColor":     "#4ADE80",
		"textShadow":      "nope",
		"highContrast":    true,
		"fontSize":        1000,
		"lineHeight":      0.1,
		"colorBlindMode":  "tritanopia",
		"blacklist":       []any{"ok.com", "???"},
		"perSiteOverrides": map[string]any{
			"news.example.com": map[string]any{"fontSize": 13},
		},
		"schedule": map[string]any{"enabled": true, "start": "22:00", "end": "99:99"},
	}, Defaults())

	defaults := Defaults()
	assert.Equal(t, defaults.BackgroundColor, got.BackgroundColor)
	assert.Equal(t, "#1a1a1b", got.SurfaceColor)
	assert.Equal(t, defaults.TextColor, got.TextColor)
	assert.Equal(t, "#4ade80", got.AccentColor)
	assert.Equal(t, defaults.TextShadow, got.TextShadow)
	assert.True(t, got.HighContrast)
	assert.Equal(t, FontSizeMax, got.FontSize)
	assert.Equal(t, LineHeightMin, got.LineHeight)
	assert.Equal(t, ColorBlindTritanopia, got.ColorBlindMode)
	assert.Equal(t, []string{"ok.com"}, got.Blacklist)
	assert.Equal(t, 1, got.PerSiteOverrides.Len())
	assert.True(t, got.Schedule.Enabled)
	assert.Equal(t, "22:00", got.Schedule.Start)
	assert.Equal(t, defaults.Schedule.End, got.Schedule.End)
}

func TestValidateSettings_Idempotent(t *testing.T) {
	raw := map[string]any{
		"backgroundColor": "#ABC",
		"fontSize":        "40",
		"colorBlindMode":  true,
		"blacklist":       "a.com\nb.org\nbroken",
		"perSiteOverrides": map[string]any{
			"one.example.com": map[string]any{"fontSize": 5, "textShadow": true},
			"__proto__":       map[string]any{"backgroundColor": "#ff0000"},
		},
		"schedule": map[string]any{"enabled": true, "start": "20:00", "end": "06:00"},
	}

	first := ValidateSettings(raw, Defaults())
	second := ValidateSettings(first, Defaults())

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(b1), string(b2))
}

func TestValidateSettings_DoesNotAliasInput(t *testing.T) {
	input := Defaults()
	input.Blacklist = []string{"a.com"}
	got := ValidateSettings(input, Defaults())

	got.Blacklist[0] = "changed.com"
	assert.Equal(t, "a.com", input.Blacklist[0])
}

func TestFitsInSyncQuota(t *testing.T) {
	assert.True(t, FitsInSyncQuota(Defaults()))

	big := Defaults()
	for i := 0; i < 900; i++ {
		big.Blacklist = append(big.Blacklist, fmt.Sprintf("padding%04d.example.com", i))
	}
	assert.False(t, FitsInSyncQuota(big))

	assert.False(t, FitsInSyncQuota(make(chan int)), "unserializable value cannot fit")
}
