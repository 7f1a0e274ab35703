// Package settings defines the persisted dark-mode settings record and the
// sanitization layer that guards it. Every value read from storage or an
// import file passes through this package before the rest of the system
// trusts it.
package settings

// Field bounds and caps enforced by the sanitizers.
const (
	FontSizeMin     = 12.0
	FontSizeMax     = 24.0
	FontSizeDefault = 16.0

	LineHeightMin     = 1.0
	LineHeightMax     = 2.2
	LineHeightDefault = 1.5

	MaxDomainLength     = 253
	MaxBlacklistEntries = 1000
	MaxSiteOverrides    = 100

	// SyncQuotaBytes models the per-item quota of a sync storage backend,
	// with a safety margin below the platform's hard 8 KiB limit.
	SyncQuotaBytes = 8000
)

// ColorBlindMode selects an accessible replacement palette.
type ColorBlindMode string

const (
	ColorBlindNone          ColorBlindMode = "none"
	ColorBlindProtanopia    ColorBlindMode = "protanopia"
	ColorBlindDeuteranopia  ColorBlindMode = "deuteranopia"
	ColorBlindTritanopia    ColorBlindMode = "tritanopia"
	ColorBlindAchromatopsia ColorBlindMode = "achromatopsia"
)

// Valid reports whether m is one of the recognized modes.
func (m ColorBlindMode) Valid() bool {
	switch m {
	case ColorBlindNone, ColorBlindProtanopia, ColorBlindDeuteranopia,
		ColorBlindTritanopia, ColorBlindAchromatopsia:
		return true
	}
	return false
}

// Schedule restricts dark mode to a daily time window. Start and End are
// "HH:MM" local times; a Start at or after End spans midnight.
type Schedule struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Settings is the canonical persisted record. It is always written whole;
// partial updates happen in memory and replace the stored record atomically.
type Settings struct {
	BackgroundColor string `json:"backgroundColor"`
	SurfaceColor    string `json:"surfaceColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`

	TextShadow             bool `json:"textShadow"`
	HighContrast           bool `json:"highContrast"`
	FocusOutline           bool `json:"focusOutline"`
	ReducedMotion          bool `json:"reducedMotion"`
	ResourceMonitorEnabled bool `json:"resourceMonitorEnabled"`
	DebugMode              bool `json:"debugMode"`

	FontSize   float64 `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`

	ColorBlindMode ColorBlindMode `json:"colorBlindMode"`

	Blacklist        []string       `json:"blacklist"`
	PerSiteOverrides *SiteOverrides `json:"perSiteOverrides"`

	Schedule Schedule `json:"schedule"`
}

// SiteOverride is the per-domain partial record. Only presentation fields
// may be overridden; nil means "inherit the global value".
type SiteOverride struct {
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	SurfaceColor    *string `json:"surfaceColor,omitempty"`
	TextColor       *string `json:"textColor,omitempty"`
	AccentColor     *string `json:"accentColor,omitempty"`

	TextShadow    *bool `json:"textShadow,omitempty"`
	HighContrast  *bool `json:"highContrast,omitempty"`
	FocusOutline  *bool `json:"focusOutline,omitempty"`
	ReducedMotion *bool `json:"reducedMotion,omitempty"`

	FontSize   *float64 `json:"fontSize,omitempty"`
	LineHeight *float64 `json:"lineHeight,omitempty"`

	ColorBlindMode *ColorBlindMode `json:"colorBlindMode,omitempty"`
}

// IsZero reports whether no field is overridden.
func (o *SiteOverride) IsZero() bool {
	if o == nil {
		return true
	}
	return o.BackgroundColor == nil && o.SurfaceColor == nil &&
		o.TextColor == nil && o.AccentColor == nil &&
		o.TextShadow == nil && o.HighContrast == nil &&
		o.FocusOutline == nil && o.ReducedMotion == nil &&
		o.FontSize == nil && o.LineHeight == nil &&
		o.ColorBlindMode == nil
}

// Clone returns a deep copy of the override.
func (o *SiteOverride) Clone() *SiteOverride {
	if o == nil {
		return nil
	}
	c := &SiteOverride{}
	c.BackgroundColor = cloneptr(o.BackgroundColor)
	c.SurfaceColor = cloneptr(o.SurfaceColor)
	c.TextColor = cloneptr(o.TextColor)
	c.AccentColor = cloneptr(o.AccentColor)
	c.TextShadow = cloneptr(o.TextShadow)
	c.HighContrast = cloneptr(o.HighContrast)
	c.FocusOutline = cloneptr(o.FocusOutline)
	c.ReducedMotion = cloneptr(o.ReducedMotion)
	c.FontSize = cloneptr(o.FontSize)
	c.LineHeight = cloneptr(o.LineHeight)
	c.ColorBlindMode = cloneptr(o.ColorBlindMode)
	return c
}

func cloneptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of the settings record.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	if s.Blacklist != nil {
		c.Blacklist = make([]string, len(s.Blacklist))
		copy(c.Blacklist, s.Blacklist)
	}
	c.PerSiteOverrides = s.PerSiteOverrides.Clone()
	return &c
}

// OverrideFor returns the override whose domain pattern matches hostname,
// or nil. Patterns are checked in insertion order; the first match wins.
func (s *Settings) OverrideFor(hostname string) *SiteOverride {
	if s == nil || s.PerSiteOverrides == nil {
		return nil
	}
	var found *SiteOverride
	s.PerSiteOverrides.Range(func(domain string, ov *SiteOverride) bool {
		if HostMatches(hostname, domain) {
			found = ov
			return false
		}
		return true
	})
	return found
}
