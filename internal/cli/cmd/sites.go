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

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage the blacklist and per-site overrides",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocked sites and overrides",
	RunE:  runSitesList,
}

var sitesBlockCmd = &cobra.Command{
	Use:   "block <domain>",
	Short: "Keep dark mode off a site and its subdomains",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesBlock,
}

var sitesUnblockCmd = &cobra.Command{
	Use:   "unblock <domain>",
	Short: "Remove a site from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesUnblock,
}

var sitesOverrideCmd = &cobra.Command{
	Use:   "override <domain> <field> <value>",
	Short: "Pin one settings field for a site",
	Long: `Pin one settings field for a site, overriding the global value.

Examples:
  cyberdark sites override news.example backgroundColor "#000000"
  cyberdark sites override news.example fontSize 14
  cyberdark sites override news.example colorBlindMode deuteranopia`,
	Args: cobra.ExactArgs(3),
	RunE: runSitesOverride,
}

var sitesOverrideClearCmd = &cobra.Command{
	Use:   "override-clear <domain> [field]",
	Short: "Drop a site's override, or one field of it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSitesOverrideClear,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesBlockCmd)
	sitesCmd.AddCommand(sitesUnblockCmd)
	sitesCmd.AddCommand(sitesOverrideCmd)
	sitesCmd.AddCommand(sitesOverrideClearCmd)
}

// overrideSpec mirrors fieldSpec for the nullable per-site fields.
type overrideSpec struct {
	set   func(*settings.SiteOverride, string) (string, error)
	get   func(*settings.SiteOverride) string
	clear func(*settings.SiteOverride)
}

func ovColor(ptr func(*settings.SiteOverride) **string) overrideSpec {
	return overrideSpec{
		set: func(ov *settings.SiteOverride, raw string) (string, error) {
			v := raw
			*ptr(ov) = &v
			return strings.ToLower(strings.TrimSpace(raw)), nil
		},
		get: func(ov *settings.SiteOverride) string {
			if p := *ptr(ov); p != nil {
				return *p
			}
			return ""
		},
		clear: func(ov *settings.SiteOverride) { *ptr(ov) = nil },
	}
}

func ovFloat(ptr func(*settings.SiteOverride) **float64) overrideSpec {
	return overrideSpec{
		set: func(ov *settings.SiteOverride, raw string) (string, error) {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", fmt.Errorf("%q is not a number", raw)
			}
			*ptr(ov) = &f
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		},
		get: func(ov *settings.SiteOverride) string {
			if p := *ptr(ov); p != nil {
				return strconv.FormatFloat(*p, 'g', -1, 64)
			}
			return ""
		},
		clear: func(ov *settings.SiteOverride) { *ptr(ov) = nil },
	}
}

func ovBool(ptr func(*settings.SiteOverride) **bool) overrideSpec {
	return overrideSpec{
		set: func(ov *settings.SiteOverride, raw string) (string, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return "", fmt.Errorf("%q is not a boolean", raw)
			}
			*ptr(ov) = &b
			return strconv.FormatBool(b), nil
		},
		get: func(ov *settings.SiteOverride) string {
			if p := *ptr(ov); p != nil {
				return strconv.FormatBool(*p)
			}
			return ""
		},
		clear: func(ov *settings.SiteOverride) { *ptr(ov) = nil },
	}
}

var overrideFields = map[string]overrideSpec{
	"backgroundColor": ovColor(func(o *settings.SiteOverride) **string { return &o.BackgroundColor }),
	"surfaceColor":    ovColor(func(o *settings.SiteOverride) **string { return &o.SurfaceColor }),
	"textColor":       ovColor(func(o *settings.SiteOverride) **string { return &o.TextColor }),
	"accentColor":     ovColor(func(o *settings.SiteOverride) **string { return &o.AccentColor }),

	"fontSize":   ovFloat(func(o *settings.SiteOverride) **float64 { return &o.FontSize }),
	"lineHeight": ovFloat(func(o *settings.SiteOverride) **float64 { return &o.LineHeight }),

	"textShadow":    ovBool(func(o *settings.SiteOverride) **bool { return &o.TextShadow }),
	"highContrast":  ovBool(func(o *settings.SiteOverride) **bool { return &o.HighContrast }),
	"focusOutline":  ovBool(func(o *settings.SiteOverride) **bool { return &o.FocusOutline }),
	"reducedMotion": ovBool(func(o *settings.SiteOverride) **bool { return &o.ReducedMotion }),

	"colorBlindMode": {
		set: func(ov *settings.SiteOverride, raw string) (string, error) {
			mode := parseColorBlindMode(raw)
			ov.ColorBlindMode = &mode
			return string(mode), nil
		},
		get: func(ov *settings.SiteOverride) string {
			if ov.ColorBlindMode != nil {
				return string(*ov.ColorBlindMode)
			}
			return ""
		},
		clear: func(ov *settings.SiteOverride) { ov.ColorBlindMode = nil },
	},
}

func overrideFieldNames() []string {
	names := make([]string, 0, len(overrideFields))
	for name := range overrideFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runSitesList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	fmt.Println(renderer.RenderSites(record.Blacklist, record.PerSiteOverrides))
	return nil
}

func runSitesBlock(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	domain := settings.SanitizeDomain(args[0])
	if domain == "" {
		return fmt.Errorf("invalid domain %q", args[0])
	}

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	for _, d := range record.Blacklist {
		if d == domain {
			fmt.Println(renderer.RenderSaved(domain, "already blocked"))
			return nil
		}
	}

	record.Blacklist = append(record.Blacklist, domain)
	stored, err := app.SaveSettings(ctx, record)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	if !containsDomain(stored.Blacklist, domain) {
		fmt.Println(renderer.RenderAdjusted("blacklist", domain,
			fmt.Sprintf("dropped (limit of %d domains reached)", settings.MaxBlacklistEntries)))
		return nil
	}
	fmt.Println(renderer.RenderSaved(domain, "blocked"))
	return nil
}

func runSitesUnblock(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	domain := settings.SanitizeDomain(args[0])
	if domain == "" {
		return fmt.Errorf("invalid domain %q", args[0])
	}

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	kept := record.Blacklist[:0]
	for _, d := range record.Blacklist {
		if d != domain {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(record.Blacklist) {
		fmt.Println(renderer.RenderError(fmt.Errorf("%s is not in the blacklist", domain)))
		return nil
	}
	record.Blacklist = kept

	if _, err := app.SaveSettings(ctx, record); err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	fmt.Println(renderer.RenderSaved(domain, "unblocked"))
	return nil
}

func runSitesOverride(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	domain := settings.SanitizeDomain(args[0])
	if domain == "" {
		return fmt.Errorf("invalid domain %q", args[0])
	}
	field, raw := args[1], args[2]
	spec, ok := overrideFields[field]
	if !ok {
		return fmt.Errorf("unknown override field %q\nKnown fields: %s", field, strings.Join(overrideFieldNames(), ", "))
	}

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	ov, exists := record.PerSiteOverrides.Get(domain)
	if !exists {
		ov = &settings.SiteOverride{}
	}
	canonical, err := spec.set(ov, raw)
	if err != nil {
		return err
	}
	record.PerSiteOverrides.Set(domain, ov)

	stored, err := app.SaveSettings(ctx, record)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	storedOv, ok := stored.PerSiteOverrides.Get(domain)
	if !ok {
		fmt.Println(renderer.RenderAdjusted(domain, raw,
			fmt.Sprintf("dropped (limit of %d overrides reached)", settings.MaxSiteOverrides)))
		return nil
	}

	got := spec.get(storedOv)
	label := domain + " " + field
	switch {
	case got == "":
		fmt.Println(renderer.RenderAdjusted(label, raw, "(inherit)"))
	case strings.EqualFold(got, canonical):
		fmt.Println(renderer.RenderSaved(label, got))
	default:
		fmt.Println(renderer.RenderAdjusted(label, raw, got))
	}
	return nil
}

func runSitesOverrideClear(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	domain := settings.SanitizeDomain(args[0])
	if domain == "" {
		return fmt.Errorf("invalid domain %q", args[0])
	}

	record, err := app.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	ov, exists := record.PerSiteOverrides.Get(domain)
	if !exists {
		fmt.Println(renderer.RenderError(fmt.Errorf("no override for %s", domain)))
		return nil
	}

	cleared := "override"
	if len(args) == 2 {
		field := args[1]
		spec, ok := overrideFields[field]
		if !ok {
			return fmt.Errorf("unknown override field %q\nKnown fields: %s", field, strings.Join(overrideFieldNames(), ", "))
		}
		spec.clear(ov)
		if ov.IsZero() {
			record.PerSiteOverrides.Delete(domain)
		} else {
			record.PerSiteOverrides.Set(domain, ov)
		}
		cleared = field
	} else {
		record.PerSiteOverrides.Delete(domain)
	}

	if _, err := app.SaveSettings(ctx, record); err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	fmt.Println(renderer.RenderSaved(domain, cleared+" cleared"))
	return nil
}

func containsDomain(list []string, domain string) bool {
	for _, d := range list {
		if d == domain {
			return true
		}
	}
	return false
}
