// Package styles provides reusable lipgloss-based TUI components.
package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconMoon    = "" //  dark mode
	IconGlobe   = "" //  site/web
	IconVersion = "" //  tag
	IconGo      = "" //  go gopher

	// Status / diagnostics
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info
	IconClock   = "" // clock
	IconPlay    = "" // play (running)
	IconStop    = "" // stop (disabled)
	IconDoctor  = "\uf0f1" // stethoscope

	// Settings / storage
	IconConfig   = "" // config
	IconDatabase = "" // database
	IconFilter   = "" // filter (blacklist)
	IconPalette  = "" // palette

	// UI
	IconCursor = "" // chevron-right
)
