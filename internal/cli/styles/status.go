package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mxnstrexgl/cyberdark/internal/background"
)

// StatusRenderer renders daemon status summaries with styled output.
type StatusRenderer struct {
	theme *Theme
}

// NewStatusRenderer creates a new status renderer with the given theme.
func NewStatusRenderer(theme *Theme) *StatusRenderer {
	return &StatusRenderer{theme: theme}
}

// RenderStatus renders the full status box. Source describes where the
// numbers came from (the daemon address or the local store).
func (r *StatusRenderer) RenderStatus(status background.StatusResponse, source string) string {
	t := r.theme

	var state string
	if status.Enabled {
		state = t.Badge.Render(IconMoon + " dark mode on")
	} else {
		state = t.BadgeMuted.Render(IconStop + " dark mode off")
	}

	var schedule string
	switch {
	case !status.ScheduleEnabled:
		schedule = t.BadgeMuted.Render(IconClock + " no schedule")
	case status.InSchedule:
		schedule = t.Badge.Render(IconClock + " inside window")
	default:
		schedule = t.BadgeMuted.Render(IconClock + " outside window")
	}

	rows := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, state, " ", schedule),
		"",
		r.row(IconFilter, "Blocked sites", fmt.Sprintf("%d", status.BlacklistSize)),
		r.row(IconGlobe, "Site overrides", fmt.Sprintf("%d", status.OverrideCount)),
		r.row(IconVersion, "Version", status.Version),
		r.row(IconClock, "Uptime", formatUptime(status.UptimeSeconds)),
		"",
		t.Subtle.Render(source),
	)

	header := t.Title.Render("Cyberdark")
	return "\n" + t.Box.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", rows)) + "\n"
}

func (r *StatusRenderer) row(icon, label, value string) string {
	t := r.theme
	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)
	return fmt.Sprintf("%s %s %s",
		iconStyle.Render(icon),
		t.Subtle.Render(label+":"),
		t.Normal.Render(value),
	)
}

// RenderError renders a status error message.
func (r *StatusRenderer) RenderError(err error) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Error)
	return fmt.Sprintf("\n  %s Status error: %v\n", iconStyle.Render(IconX), err)
}

// formatUptime renders seconds as a compact duration.
func formatUptime(seconds int64) string {
	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)
	switch {
	case seconds >= day:
		return fmt.Sprintf("%dd %dh", seconds/day, (seconds%day)/hour)
	case seconds >= hour:
		return fmt.Sprintf("%dh %dm", seconds/hour, (seconds%hour)/minute)
	case seconds >= minute:
		return fmt.Sprintf("%dm %ds", seconds/minute, seconds%minute)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
