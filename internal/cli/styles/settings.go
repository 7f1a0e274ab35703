package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/style"
)

// SettingsRenderer renders the settings record and site lists.
type SettingsRenderer struct {
	theme *Theme
}

// NewSettingsRenderer creates a new settings renderer with the given theme.
func NewSettingsRenderer(theme *Theme) *SettingsRenderer {
	return &SettingsRenderer{theme: theme}
}

// RenderRecord renders the full record grouped by concern.
func (r *SettingsRenderer) RenderRecord(record *settings.Settings) string {
	t := r.theme

	colors := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Subtitle.Render("Colors"),
		r.swatch("backgroundColor", record.BackgroundColor),
		r.swatch("surfaceColor", record.SurfaceColor),
		r.swatch("textColor", record.TextColor),
		r.swatch("accentColor", record.AccentColor),
	)

	typography := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Subtitle.Render("Typography"),
		r.value("fontSize", fmt.Sprintf("%gpx", record.FontSize)),
		r.value("lineHeight", fmt.Sprintf("%g", record.LineHeight)),
	)

	features := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Subtitle.Render("Features"),
		r.flag("textShadow", record.TextShadow),
		r.flag("highContrast", record.HighContrast),
		r.flag("focusOutline", record.FocusOutline),
		r.flag("reducedMotion", record.ReducedMotion),
		r.flag("resourceMonitorEnabled", record.ResourceMonitorEnabled),
		r.value("colorBlindMode", string(record.ColorBlindMode)),
	)

	scheduleValue := "off"
	if record.Schedule.Enabled {
		scheduleValue = fmt.Sprintf("%s - %s", record.Schedule.Start, record.Schedule.End)
	}
	sites := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Subtitle.Render("Sites"),
		r.value("schedule", scheduleValue),
		r.value("blacklist", fmt.Sprintf("%d domains", len(record.Blacklist))),
		r.value("perSiteOverrides", fmt.Sprintf("%d domains", record.PerSiteOverrides.Len())),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		colors, "", typography, "", features, "", sites,
	)
	return "\n" + t.Box.Render(content) + "\n"
}

func (r *SettingsRenderer) swatch(field, hex string) string {
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
	return fmt.Sprintf("  %s %s %s", r.theme.Normal.Render(padField(field)), block, r.theme.Subtle.Render(hex))
}

func (r *SettingsRenderer) value(field, v string) string {
	return fmt.Sprintf("  %s %s", r.theme.Normal.Render(padField(field)), r.theme.Highlight.Render(v))
}

func (r *SettingsRenderer) flag(field string, on bool) string {
	t := r.theme
	mark := t.Subtle.Render(IconX + " off")
	if on {
		mark = t.SuccessStyle.Render(IconCheck + " on")
	}
	return fmt.Sprintf("  %s %s", t.Normal.Render(padField(field)), mark)
}

func padField(field string) string {
	return fmt.Sprintf("%-24s", field)
}

// RenderSites renders the blacklist and per-site override domains.
func (r *SettingsRenderer) RenderSites(blacklist []string, overrides *settings.SiteOverrides) string {
	t := r.theme
	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n  %s Blocked sites (%d):\n", iconStyle.Render(IconFilter), len(blacklist)))
	if len(blacklist) == 0 {
		sb.WriteString("    " + t.Subtle.Render("none") + "\n")
	}
	for _, domain := range blacklist {
		sb.WriteString(fmt.Sprintf("    %s %s\n", iconStyle.Render(IconCursor), t.Normal.Render(domain)))
	}

	sb.WriteString(fmt.Sprintf("\n  %s Site overrides (%d):\n", iconStyle.Render(IconGlobe), overrides.Len()))
	if overrides.Len() == 0 {
		sb.WriteString("    " + t.Subtle.Render("none") + "\n")
	}
	overrides.Range(func(domain string, ov *settings.SiteOverride) bool {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n",
			iconStyle.Render(IconCursor),
			t.Normal.Render(domain),
			t.Subtle.Render(describeOverride(ov)),
		))
		return true
	})
	return sb.String()
}

// describeOverride lists which fields an override pins.
func describeOverride(ov *settings.SiteOverride) string {
	var fields []string
	if ov.BackgroundColor != nil {
		fields = append(fields, "backgroundColor")
	}
	if ov.SurfaceColor != nil {
		fields = append(fields, "surfaceColor")
	}
	if ov.TextColor != nil {
		fields = append(fields, "textColor")
	}
	if ov.AccentColor != nil {
		fields = append(fields, "accentColor")
	}
	if ov.TextShadow != nil {
		fields = append(fields, "textShadow")
	}
	if ov.HighContrast != nil {
		fields = append(fields, "highContrast")
	}
	if ov.FocusOutline != nil {
		fields = append(fields, "focusOutline")
	}
	if ov.ReducedMotion != nil {
		fields = append(fields, "reducedMotion")
	}
	if ov.FontSize != nil {
		fields = append(fields, "fontSize")
	}
	if ov.LineHeight != nil {
		fields = append(fields, "lineHeight")
	}
	if ov.ColorBlindMode != nil {
		fields = append(fields, "colorBlindMode")
	}
	if len(fields) == 0 {
		return "(empty)"
	}
	return "(" + strings.Join(fields, ", ") + ")"
}

// RenderSaved confirms a stored change.
func (r *SettingsRenderer) RenderSaved(field, value string) string {
	t := r.theme
	iconStyle := lipgloss.NewStyle().Foreground(t.Success)
	return fmt.Sprintf("\n  %s Saved %s = %s\n",
		iconStyle.Render(IconCheck),
		t.Highlight.Render(field),
		t.Normal.Render(value),
	)
}

// RenderAdjusted warns that the sanitizer replaced the requested value.
func (r *SettingsRenderer) RenderAdjusted(field, requested, got string) string {
	t := r.theme
	iconStyle := lipgloss.NewStyle().Foreground(t.Warning)
	return fmt.Sprintf("\n  %s %s rejected %q, stored %s instead\n",
		iconStyle.Render(IconWarning),
		t.Highlight.Render(field),
		requested,
		t.Normal.Render(got),
	)
}

// RenderError renders a settings error message.
func (r *SettingsRenderer) RenderError(err error) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Error)
	return fmt.Sprintf("\n  %s %v\n", iconStyle.Render(IconX), err)
}

// RenderDecision renders the preview verdict for one hostname.
func (r *SettingsRenderer) RenderDecision(hostname string, d style.Decision, artifacts []string) string {
	t := r.theme

	badge := func(label string, on bool) string {
		if on {
			return t.Badge.Render(label)
		}
		return t.BadgeMuted.Render(label)
	}

	verdict := t.ErrorStyle.Render(IconX + " dark mode stays off")
	if d.ShouldApply {
		verdict = t.SuccessStyle.Render(IconCheck + " dark mode applies")
	}

	var artifactLines []string
	artifactLines = append(artifactLines, t.Subtitle.Render("Injected artifacts"))
	if len(artifacts) == 0 {
		artifactLines = append(artifactLines, "  "+t.Subtle.Render("none"))
	}
	for _, a := range artifacts {
		artifactLines = append(artifactLines, fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Foreground(t.Accent).Render(IconCursor),
			t.Normal.Render(a),
		))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Title.Render(hostname),
		"",
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			badge("enabled", d.Enabled), " ",
			badge("blacklisted", d.Blacklisted), " ",
			badge("in schedule", d.InSchedule),
		),
		"",
		verdict,
		"",
		lipgloss.JoinVertical(lipgloss.Left, artifactLines...),
	)
	return "\n" + t.Box.Render(content) + "\n"
}
