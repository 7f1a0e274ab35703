package style

import (
	"time"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

// builtinExcluded lists sites the theme never touches regardless of user
// configuration. These are editors that ship their own canvas rendering and
// break badly under foreign stylesheets.
var builtinExcluded = []string{
	"docs.google.com",
	"sheets.google.com",
	"slides.google.com",
	"figma.com",
	"miro.com",
}

// BuiltinExcluded reports whether the hostname belongs to a site the theme
// always leaves alone.
func BuiltinExcluded(hostname string) bool {
	return settings.MatchesAny(hostname, builtinExcluded)
}

// MergeOverride returns the effective settings for one site: the global
// record with the override's populated fields layered on top. The result is
// always a fresh copy.
func MergeOverride(global *settings.Settings, ov *settings.SiteOverride) *settings.Settings {
	eff := global.Clone()
	if ov == nil {
		return eff
	}
	if ov.BackgroundColor != nil {
		eff.BackgroundColor = *ov.BackgroundColor
	}
	if ov.SurfaceColor != nil {
		eff.SurfaceColor = *ov.SurfaceColor
	}
	if ov.TextColor != nil {
		eff.TextColor = *ov.TextColor
	}
	if ov.AccentColor != nil {
		eff.AccentColor = *ov.AccentColor
	}
	if ov.TextShadow != nil {
		eff.TextShadow = *ov.TextShadow
	}
	if ov.HighContrast != nil {
		eff.HighContrast = *ov.HighContrast
	}
	if ov.FocusOutline != nil {
		eff.FocusOutline = *ov.FocusOutline
	}
	if ov.ReducedMotion != nil {
		eff.ReducedMotion = *ov.ReducedMotion
	}
	if ov.FontSize != nil {
		eff.FontSize = *ov.FontSize
	}
	if ov.LineHeight != nil {
		eff.LineHeight = *ov.LineHeight
	}
	if ov.ColorBlindMode != nil {
		eff.ColorBlindMode = *ov.ColorBlindMode
	}
	return eff
}

// Decision is the outcome of resolving a hostname against the current
// record and enabled flag at a point in time.
type Decision struct {
	Enabled     bool
	Blacklisted bool
	InSchedule  bool
	ShouldApply bool
	Effective   *settings.Settings
}

// Resolve computes the effective settings for hostname and whether the
// theme should be applied right now. A nil record resolves against the
// defaults.
func Resolve(record *settings.Settings, enabled bool, hostname string, now time.Time) Decision {
	if record == nil {
		record = settings.Defaults()
	}
	eff := MergeOverride(record, record.OverrideFor(hostname))

	d := Decision{
		Enabled:    enabled,
		InSchedule: true,
		Effective:  eff,
	}
	d.Blacklisted = BuiltinExcluded(hostname) || settings.MatchesAny(hostname, eff.Blacklist)
	d.ShouldApply = d.Enabled && !d.Blacklisted
	if d.ShouldApply && eff.Schedule.Enabled {
		d.InSchedule = eff.Schedule.Allows(now)
		d.ShouldApply = d.InSchedule
	}
	return d
}
