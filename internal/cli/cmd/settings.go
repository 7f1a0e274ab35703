package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and edit the settings record",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one settings field",
	Long: `Change one settings field.

Values pass through the sanitizer before being stored; out-of-range or
malformed values are replaced and the replacement is reported.

Examples:
  cyberdark settings set accentColor "#4ade80"
  cyberdark settings set fontSize 18
  cyberdark settings set colorBlindMode protanopia
  cyberdark settings set schedule.start 20:00`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default value",
	RunE:  runSettingsReset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

// fieldSpec writes a raw CLI value into the record and reads the stored
// result back. set returns the canonical form of the requested value so the
// outcome can be compared against what the sanitizer kept.
type fieldSpec struct {
	set func(*settings.Settings, string) (string, error)
	get func(*settings.Settings) string
}

func colorField(ptr func(*settings.Settings) *string) fieldSpec {
	return fieldSpec{
		set: func(s *settings.Settings, raw string) (string, error) {
			*ptr(s) = raw
			return strings.ToLower(strings.TrimSpace(raw)), nil
		},
		get: func(s *settings.Settings) string { return *ptr(s) },
	}
}

func floatField(ptr func(*settings.Settings) *float64) fieldSpec {
	return fieldSpec{
		set: func(s *settings.Settings, raw string) (string, error) {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", fmt.Errorf("%q is not a number", raw)
			}
			*ptr(s) = f
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		},
		get: func(s *settings.Settings) string {
			return strconv.FormatFloat(*ptr(s), 'g', -1, 64)
		},
	}
}

func boolField(ptr func(*settings.Settings) *bool) fieldSpec {
	return fieldSpec{
		set: func(s *settings.Settings, raw string) (string, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return "", fmt.Errorf("%q is not a boolean", raw)
			}
			*ptr(s) = b
			return strconv.FormatBool(b), nil
		},
		get: func(s *settings.Settings) string { return strconv.FormatBool(*ptr(s)) },
	}
}

var settingsFields = map[string]fieldSpec{
	"backgroundColor": colorField(func(s *settings.Settings) *string { return &s.BackgroundColor }),
	"surfaceColor":    colorField(func(s *settings.Settings) *string { return &s.SurfaceColor }),
	"textColor":       colorField(func(s *settings.Settings) *string { return &s.TextColor }),
	"accentColor":     colorField(func(s *settings.Settings) *string { return &s.AccentColor }),

	"fontSize":   floatField(func(s *settings.Settings) *float64 { return &s.FontSize }),
	"lineHeight": floatField(func(s *settings.Settings) *float64 { return &s.LineHeight }),

	"textShadow":             boolField(func(s *settings.Settings) *bool { return &s.TextShadow }),
	"highContrast":           boolField(func(s *settings.Settings) *bool { return &s.HighContrast }),
	"focusOutline":           boolField(func(s *settings.Settings) *bool { return &s.FocusOutline }),
	"reducedMotion":          boolField(func(s *settings.Settings) *bool { return &s.ReducedMotion }),
	"resourceMonitorEnabled": boolField(func(s *settings.Settings) *bool { return &s.ResourceMonitorEnabled }),
	"debugMode":              boolField(func(s *settings.Settings) *bool { return &s.DebugMode }),

	"colorBlindMode": {
		set: func(s *settings.Settings, raw string) (string, error) {
			mode := parseColorBlindMode(raw)
			s.ColorBlindMode = mode
			return string(mode), nil
		},
		get: func(s *settings.Settings) string { return string(s.ColorBlindMode) },
	},

	"schedule.enabled": boolField(func(s *settings.Settings) *bool { return &s.Schedule.Enabled }),
	"schedule.start": {
		set: func(s *settings.Settings, raw string) (string, error) {
			s.Schedule.Start = raw
			return raw, nil
		},
		get: func(s *settings.Settings) string { return s.Schedule.Start },
	},
	"schedule.end": {
		set: func(s *settings.Settings, raw string) (string, error) {
			s.Schedule.End = raw
			return raw, nil
		},
		get: func(s *settings.Settings) string { return s.Schedule.End },
	},
}

// parseColorBlindMode accepts the mode names plus the legacy boolean form,
// where true means protanopia.
func parseColorBlindMode(raw string) settings.ColorBlindMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return settings.ColorBlindProtanopia
	case "false":
		return settings.ColorBlindNone
	default:
		return settings.ColorBlindMode(strings.ToLower(strings.TrimSpace(raw)))
	}
}

func fieldNames() []string {
	names := make([]string, 0, len(settingsFields))
	for name := range settingsFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runSettingsShow(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(styles.NewSettingsRenderer(app.Theme).RenderError(err))
		return nil
	}

	// Render with the user's own palette so the swatches preview it.
	renderer := styles.NewSettingsRenderer(styles.NewThemeFromRecord(record))
	fmt.Println(renderer.RenderRecord(record))
	return nil
}

func runSettingsSet(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	field, raw := args[0], args[1]
	spec, ok := settingsFields[field]
	if !ok {
		return fmt.Errorf("unknown settings field %q\nKnown fields: %s", field, strings.Join(fieldNames(), ", "))
	}

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	canonical, err := spec.set(record, raw)
	if err != nil {
		return err
	}

	stored, err := app.SaveSettings(ctx, record)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	got := spec.get(stored)
	if strings.EqualFold(got, canonical) {
		fmt.Println(renderer.RenderSaved(field, got))
	} else {
		fmt.Println(renderer.RenderAdjusted(field, raw, got))
	}
	return nil
}

func runSettingsReset(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	if _, err := app.SaveSettings(ctx, settings.Defaults()); err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	fmt.Println(renderer.RenderSaved("settings", "defaults"))
	return nil
}
