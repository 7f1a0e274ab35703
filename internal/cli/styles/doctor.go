package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DoctorRenderer renders health check reports.
type DoctorRenderer struct {
	theme *Theme
}

// NewDoctorRenderer creates a new doctor renderer with the given theme.
func NewDoctorRenderer(theme *Theme) *DoctorRenderer {
	return &DoctorRenderer{theme: theme}
}

// DoctorReport is the full set of checks doctor ran.
type DoctorReport struct {
	OverallOK bool
	Sections  []DoctorSection
}

// DoctorSection groups related checks under one box.
type DoctorSection struct {
	Name   string
	Checks []DoctorCheck
}

// DoctorCheck is a single pass/fail probe with optional detail and hint.
type DoctorCheck struct {
	Name   string
	OK     bool
	Detail string
	Hint   string
}

// Render renders the complete report.
func (r *DoctorRenderer) Render(report DoctorReport) string {
	header := r.renderHeader(report.OverallOK)

	sections := make([]string, 0, len(report.Sections))
	for _, s := range report.Sections {
		sections = append(sections, r.renderSection(s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(sections, "\n\n"))
}

func (r *DoctorRenderer) renderHeader(ok bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	statusStyle := r.theme.SuccessStyle
	statusText := "OK"
	if !ok {
		statusStyle = r.theme.WarningStyle
		statusText = "Needs attention"
	}

	title := fmt.Sprintf("%s %s", iconStyle.Render(IconDoctor), r.theme.Title.Render("Doctor"))
	badge := r.theme.BadgeMuted.Render(statusStyle.Render(statusText))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge)
}

func (r *DoctorRenderer) renderSection(s DoctorSection) string {
	lines := make([]string, 0, len(s.Checks))
	for _, c := range s.Checks {
		lines = append(lines, r.renderCheck(c))
	}
	header := r.theme.BoxHeader.Render(s.Name)
	return r.theme.Box.Render(header + "\n" + strings.Join(lines, "\n"))
}

func (r *DoctorRenderer) renderCheck(c DoctorCheck) string {
	t := r.theme
	mark := t.SuccessStyle.Render(IconCheck)
	if !c.OK {
		mark = t.WarningStyle.Render(IconWarning)
	}

	line := fmt.Sprintf("%s %s", mark, t.Normal.Render(c.Name))
	if c.Detail != "" {
		line += " " + t.Subtle.Render(c.Detail)
	}
	if !c.OK && c.Hint != "" {
		line += "\n  " + t.Subtle.Render("hint: "+c.Hint)
	}
	return line
}
