package settings

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	domainRE   = regexp.MustCompile(`^([a-z0-9-]+\.)*[a-z0-9-]+\.[a-z]{2,}$`)
	timeRE     = regexp.MustCompile(`^(?:[01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Keys that must never become override domains. They are harmless as Go map
// keys but the record round-trips through JSON consumed by script contexts,
// where they would graft onto object prototypes.
var forbiddenOverrideKeys = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// SanitizeHexColor accepts #RGB or #RRGGBB (any case) and returns it
// lowercased. Everything else returns fallback.
func SanitizeHexColor(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if !hexColorRE.MatchString(s) {
		return fallback
	}
	return strings.ToLower(s)
}

// SanitizeNumericRange coerces v to a number and clamps it into [min, max].
// Non-numeric, empty, or non-finite input returns def.
func SanitizeNumericRange(v any, min, max, def float64) float64 {
	n, ok := coerceNumber(v)
	if !ok {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func coerceNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int8:
		n = float64(t)
	case int16:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint:
		n = float64(t)
	case uint8:
		n = float64(t)
	case uint16:
		n = float64(t)
	case uint32:
		n = float64(t)
	case uint64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// SanitizeDomain normalizes a hostname pattern: trimmed, lowercased, at most
// 253 characters, structurally a dotted domain or the literal "localhost".
// Returns "" when the input cannot be a domain; absence is meaningful to
// callers, so there is no fallback parameter.
func SanitizeDomain(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "localhost" {
		return s
	}
	if len(s) > MaxDomainLength {
		return ""
	}
	if !domainRE.MatchString(s) {
		return ""
	}
	return s
}

// SanitizeDomainList accepts a slice of patterns or a newline-delimited
// string, drops entries SanitizeDomain rejects, and truncates the result to
// the first MaxBlacklistEntries valid entries, preserving order.
func SanitizeDomainList(v any) []string {
	var entries []any
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		for _, line := range strings.Split(t, "\n") {
			entries = append(entries, line)
		}
	case []string:
		for _, e := range t {
			entries = append(entries, e)
		}
	case []any:
		entries = t
	default:
		return []string{}
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		d := SanitizeDomain(e)
		if d == "" {
			continue
		}
		out = append(out, d)
		if len(out) == MaxBlacklistEntries {
			break
		}
	}
	return out
}

// SanitizeTimeString accepts "HH:MM" with HH 00-23 and MM 00-59; anything
// else returns fallback.
func SanitizeTimeString(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if !timeRE.MatchString(s) {
		return fallback
	}
	return s
}

// SanitizeColorBlindMode validates against the mode enum. Legacy records
// stored a boolean: true meant protanopia, false meant off. Unknown strings
// map to ColorBlindNone.
func SanitizeColorBlindMode(v any) ColorBlindMode {
	switch t := v.(type) {
	case bool:
		if t {
			return ColorBlindProtanopia
		}
		return ColorBlindNone
	case string:
		m := ColorBlindMode(strings.ToLower(strings.TrimSpace(t)))
		if m.Valid() {
			return m
		}
		return ColorBlindNone
	case ColorBlindMode:
		if t.Valid() {
			return t
		}
		return ColorBlindNone
	default:
		return ColorBlindNone
	}
}

func sanitizeBool(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// SanitizeSchedule validates the window record field-wise against fallback.
func SanitizeSchedule(v any, fallback Schedule) Schedule {
	switch t := v.(type) {
	case Schedule:
		return Schedule{
			Enabled: t.Enabled,
			Start:   SanitizeTimeString(t.Start, fallback.Start),
			End:     SanitizeTimeString(t.End, fallback.End),
		}
	case *Schedule:
		if t == nil {
			return fallback
		}
		return SanitizeSchedule(*t, fallback)
	case map[string]any:
		return Schedule{
			Enabled: sanitizeBool(t["enabled"], fallback.Enabled),
			Start:   SanitizeTimeString(t["start"], fallback.Start),
			End:     SanitizeTimeString(t["end"], fallback.End),
		}
	default:
		return fallback
	}
}

// SanitizePerSiteOverrides builds a fresh override map from untrusted input.
// Accepted shapes: an existing *SiteOverrides, serialized JSON text, or a
// generic decoded map. Forbidden keys are dropped, every key must survive
// SanitizeDomain, every value keeps only recognized fields, and the result
// is capped at the first MaxSiteOverrides entries in insertion order.
// Serialized text with invalid syntax yields an empty map. Generic Go maps
// carry no insertion order; their keys are visited in sorted order so the
// cap stays deterministic.
func SanitizePerSiteOverrides(v any) *SiteOverrides {
	out := NewSiteOverrides()

	admit := func(key string, value any) {
		if _, bad := forbiddenOverrideKeys[key]; bad {
			return
		}
		domain := SanitizeDomain(key)
		if domain == "" {
			return
		}
		ov, isObject := sanitizeOverrideValue(value)
		if !isObject {
			return
		}
		if _, exists := out.Get(domain); !exists && out.Len() >= MaxSiteOverrides {
			return
		}
		out.Set(domain, ov)
	}

	switch t := v.(type) {
	case nil:
	case *SiteOverrides:
		t.Range(func(domain string, ov *SiteOverride) bool {
			admit(domain, ov)
			return true
		})
	case string:
		if strings.TrimSpace(t) == "" {
			return out
		}
		return SanitizePerSiteOverrides([]byte(t))
	case json.RawMessage:
		return SanitizePerSiteOverrides([]byte(t))
	case []byte:
		parsed := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(t, parsed); err != nil {
			return out
		}
		for pair := parsed.Oldest(); pair != nil; pair = pair.Next() {
			var value any
			if err := json.Unmarshal(pair.Value, &value); err != nil {
				continue
			}
			admit(pair.Key, value)
		}
	case map[string]any:
		for _, key := range sortedKeys(t) {
			admit(key, t[key])
		}
	case map[string]*SiteOverride:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			admit(key, t[key])
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sanitizeOverrideValue keeps only the recognized partial fields. Fields
// that fail their sanitizer are dropped so the site inherits the global
// value. The second return is false when the input is not an object shape.
func sanitizeOverrideValue(v any) (*SiteOverride, bool) {
	switch t := v.(type) {
	case *SiteOverride:
		if t == nil {
			return nil, false
		}
		return resanitizeOverride(t), true
	case SiteOverride:
		return resanitizeOverride(&t), true
	case map[string]any:
		ov := &SiteOverride{}
		if raw, ok := t["backgroundColor"]; ok {
			if c := SanitizeHexColor(raw, ""); c != "" {
				ov.BackgroundColor = &c
			}
		}
		if raw, ok := t["surfaceColor"]; ok {
			if c := SanitizeHexColor(raw, ""); c != "" {
				ov.SurfaceColor = &c
			}
		}
		if raw, ok := t["textColor"]; ok {
			if c := SanitizeHexColor(raw, ""); c != "" {
				ov.TextColor = &c
			}
		}
		if raw, ok := t["accentColor"]; ok {
			if c := SanitizeHexColor(raw, ""); c != "" {
				ov.AccentColor = &c
			}
		}
		if b, ok := t["textShadow"].(bool); ok {
			ov.TextShadow = &b
		}
		if b, ok := t["highContrast"].(bool); ok {
			ov.HighContrast = &b
		}
		if b, ok := t["focusOutline"].(bool); ok {
			ov.FocusOutline = &b
		}
		if b, ok := t["reducedMotion"].(bool); ok {
			ov.ReducedMotion = &b
		}
		if raw, ok := t["fontSize"]; ok {
			if n, numeric := coerceNumber(raw); numeric {
				clamped := SanitizeNumericRange(n, FontSizeMin, FontSizeMax, FontSizeDefault)
				ov.FontSize = &clamped
			}
		}
		if raw, ok := t["lineHeight"]; ok {
			if n, numeric := coerceNumber(raw); numeric {
				clamped := SanitizeNumericRange(n, LineHeightMin, LineHeightMax, LineHeightDefault)
				ov.LineHeight = &clamped
			}
		}
		if raw, ok := t["colorBlindMode"]; ok {
			if m, valid := overrideColorBlindMode(raw); valid {
				ov.ColorBlindMode = &m
			}
		}
		return ov, true
	default:
		return nil, false
	}
}

func resanitizeOverride(o *SiteOverride) *SiteOverride {
	ov := &SiteOverride{}
	keepColor := func(p *string) *string {
		if p == nil {
			return nil
		}
		if c := SanitizeHexColor(*p, ""); c != "" {
			return &c
		}
		return nil
	}
	ov.BackgroundColor = keepColor(o.BackgroundColor)
	ov.SurfaceColor = keepColor(o.SurfaceColor)
	ov.TextColor = keepColor(o.TextColor)
	ov.AccentColor = keepColor(o.AccentColor)
	ov.TextShadow = cloneptr(o.TextShadow)
	ov.HighContrast = cloneptr(o.HighContrast)
	ov.FocusOutline = cloneptr(o.FocusOutline)
	ov.ReducedMotion = cloneptr(o.ReducedMotion)
	if o.FontSize != nil {
		clamped := SanitizeNumericRange(*o.FontSize, FontSizeMin, FontSizeMax, FontSizeDefault)
		ov.FontSize = &clamped
	}
	if o.LineHeight != nil {
		clamped := SanitizeNumericRange(*o.LineHeight, LineHeightMin, LineHeightMax, LineHeightDefault)
		ov.LineHeight = &clamped
	}
	if o.ColorBlindMode != nil {
		if m, valid := overrideColorBlindMode(*o.ColorBlindMode); valid {
			ov.ColorBlindMode = &m
		}
	}
	return ov
}

// overrideColorBlindMode is stricter than SanitizeColorBlindMode: inside a
// partial record an unrecognized value drops the field instead of forcing
// "none", so the site keeps inheriting the global mode.
func overrideColorBlindMode(v any) (ColorBlindMode, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return ColorBlindProtanopia, true
		}
		return ColorBlindNone, true
	case string:
		m := ColorBlindMode(strings.ToLower(strings.TrimSpace(t)))
		if m.Valid() {
			return m, true
		}
		return ColorBlindNone, false
	case ColorBlindMode:
		if t.Valid() {
			return t, true
		}
		return ColorBlindNone, false
	default:
		return ColorBlindNone, false
	}
}

// ValidateSettings is the top-level orchestrator: it runs every field
// through its sanitizer and returns a fully populated record that never
// aliases the input. Non-object input returns a copy of defaults. The
// function is idempotent.
func ValidateSettings(v any, defaults *Settings) *Settings {
	if defaults == nil {
		defaults = Defaults()
	}
	switch t := v.(type) {
	case *Settings:
		if t == nil {
			return defaults.Clone()
		}
		return sanitizeTyped(t, defaults)
	case Settings:
		return sanitizeTyped(&t, defaults)
	case map[string]any:
		return sanitizeUntyped(t, defaults)
	default:
		return defaults.Clone()
	}
}

func sanitizeTyped(s *Settings, defaults *Settings) *Settings {
	out := &Settings{
		BackgroundColor: SanitizeHexColor(s.BackgroundColor, defaults.BackgroundColor),
		SurfaceColor:    SanitizeHexColor(s.SurfaceColor, defaults.SurfaceColor),
		TextColor:       SanitizeHexColor(s.TextColor, defaults.TextColor),
		AccentColor:     SanitizeHexColor(s.AccentColor, defaults.AccentColor),

		TextShadow:             s.TextShadow,
		HighContrast:           s.HighContrast,
		FocusOutline:           s.FocusOutline,
		ReducedMotion:          s.ReducedMotion,
		ResourceMonitorEnabled: s.ResourceMonitorEnabled,
		DebugMode:              s.DebugMode,

		FontSize:   SanitizeNumericRange(s.FontSize, FontSizeMin, FontSizeMax, defaults.FontSize),
		LineHeight: SanitizeNumericRange(s.LineHeight, LineHeightMin, LineHeightMax, defaults.LineHeight),

		ColorBlindMode: SanitizeColorBlindMode(s.ColorBlindMode),

		Blacklist:        SanitizeDomainList(s.Blacklist),
		PerSiteOverrides: SanitizePerSiteOverrides(s.PerSiteOverrides),

		Schedule: SanitizeSchedule(s.Schedule, defaults.Schedule),
	}
	return out
}

func sanitizeUntyped(m map[string]any, defaults *Settings) *Settings {
	out := &Settings{
		BackgroundColor: SanitizeHexColor(m["backgroundColor"], defaults.BackgroundColor),
		SurfaceColor:    SanitizeHexColor(m["surfaceColor"], defaults.SurfaceColor),
		TextColor:       SanitizeHexColor(m["textColor"], defaults.TextColor),
		AccentColor:     SanitizeHexColor(m["accentColor"], defaults.AccentColor),

		TextShadow:             sanitizeBool(m["textShadow"], defaults.TextShadow),
		HighContrast:           sanitizeBool(m["highContrast"], defaults.HighContrast),
		FocusOutline:           sanitizeBool(m["focusOutline"], defaults.FocusOutline),
		ReducedMotion:          sanitizeBool(m["reducedMotion"], defaults.ReducedMotion),
		ResourceMonitorEnabled: sanitizeBool(m["resourceMonitorEnabled"], defaults.ResourceMonitorEnabled),
		DebugMode:              sanitizeBool(m["debugMode"], defaults.DebugMode),

		FontSize:   SanitizeNumericRange(m["fontSize"], FontSizeMin, FontSizeMax, defaults.FontSize),
		LineHeight: SanitizeNumericRange(m["lineHeight"], LineHeightMin, LineHeightMax, defaults.LineHeight),

		Schedule: SanitizeSchedule(m["schedule"], defaults.Schedule),
	}

	if raw, ok := m["colorBlindMode"]; ok {
		out.ColorBlindMode = SanitizeColorBlindMode(raw)
	} else {
		out.ColorBlindMode = defaults.ColorBlindMode
	}

	if raw, ok := m["blacklist"]; ok {
		out.Blacklist = SanitizeDomainList(raw)
	} else {
		out.Blacklist = append([]string{}, defaults.Blacklist...)
	}

	if raw, ok := m["perSiteOverrides"]; ok {
		out.PerSiteOverrides = SanitizePerSiteOverrides(raw)
	} else {
		out.PerSiteOverrides = defaults.PerSiteOverrides.Clone()
	}

	return out
}
