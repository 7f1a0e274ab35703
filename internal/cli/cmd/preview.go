package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
	"github.com/mxnstrexgl/cyberdark/internal/dom"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/style"
)

var (
	previewPDF bool
	previewAt  string
)

var previewCmd = &cobra.Command{
	Use:   "preview <hostname>",
	Short: "Dry-run the styling decision for a site",
	Long: `Build an in-memory page for the hostname, run the style controller
against the current settings, and report the decision and every artifact
that would be injected.

Examples:
  cyberdark preview news.example
  cyberdark preview docs.google.com
  cyberdark preview news.example --at 23:30
  cyberdark preview files.example --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&previewPDF, "pdf", false, "treat the page as a PDF viewer")
	previewCmd.Flags().StringVar(&previewAt, "at", "", "evaluate the schedule at this HH:MM instead of now")
}

func runPreview(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	hostname := settings.SanitizeDomain(args[0])
	if hostname == "" {
		return fmt.Errorf("invalid hostname %q", args[0])
	}

	now := time.Now()
	if previewAt != "" {
		at, err := time.Parse("15:04", previewAt)
		if err != nil {
			return fmt.Errorf("invalid --at time %q, want HH:MM", previewAt)
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.Local)
	}

	st, err := app.Store(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	record, err := st.Settings(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	enabled, err := st.Enabled(ctx)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	cache, err := background.NewCache(ctx, st)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	defer cache.Close()

	doc, sameFrame, crossFrame, shadow := buildPreviewPage(hostname)
	ctrl := style.NewController(doc, st, style.Options{
		Queries:      cache,
		FadeDuration: 10 * time.Millisecond,
		Now:          func() time.Time { return now },
	})
	defer func() { _ = ctrl.Close() }()

	if err := ctrl.Begin(ctx); err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	// Let the overlay fade finish so the steady state is reported.
	time.Sleep(50 * time.Millisecond)

	decision := style.Resolve(record, enabled, hostname, now)
	artifacts := collectArtifacts(doc, sameFrame, crossFrame, shadow)
	fmt.Println(renderer.RenderDecision(hostname, decision, artifacts))
	return nil
}

// buildPreviewPage assembles a small but representative document: structural
// chrome, a same-origin and a cross-origin frame, and a shadow root.
func buildPreviewPage(hostname string) (*dom.Document, *dom.Frame, *dom.Frame, *dom.ShadowRoot) {
	doc := dom.NewDocument(hostname)
	if previewPDF {
		doc.SetContentType("application/pdf")
	}

	doc.AddElements(
		dom.NewElement("header").SetInline("background", "white"),
		dom.NewElement("th"),
		dom.NewElement("div").SetAttr("role", "alert"),
		dom.NewElement("div").AddClass("banner"),
		dom.NewElement("p"),
	)
	sameFrame := doc.AddFrame(false)
	crossFrame := doc.AddFrame(true)
	shadow := doc.AttachShadowRoot()
	return doc, sameFrame, crossFrame, shadow
}

// collectArtifacts lists what the controller left on the page.
func collectArtifacts(doc *dom.Document, sameFrame, crossFrame *dom.Frame, shadow *dom.ShadowRoot) []string {
	var artifacts []string
	add := func(scope style.Scope, kind style.Kind, label string) {
		if ok, err := scope.HasStyle(kind); err == nil && ok {
			artifacts = append(artifacts, label)
		}
	}

	add(doc, style.KindEmergency, "emergency stylesheet (document)")
	add(doc, style.KindOverlay, "fade overlay (document)")
	add(doc, style.KindMain, "main stylesheet (document)")
	add(doc, style.KindStructural, "structural stylesheet (document)")
	add(doc, style.KindColorScheme, "color-scheme hint (document)")
	add(sameFrame, style.KindIframe, "iframe stylesheet (same-origin frame)")
	add(shadow, style.KindMain, "main stylesheet clone (shadow root)")

	if ok, err := crossFrame.HasStyle(style.KindIframe); err != nil || !ok {
		if has, _ := doc.HasStyle(style.KindMain); has {
			artifacts = append(artifacts, "cross-origin frame skipped")
		}
	}

	overridden := 0
	els, err := doc.QueryStructural(style.StructuralSelectors)
	if err == nil {
		for _, el := range els {
			if el.Overridden() {
				overridden++
			}
		}
	}
	if overridden > 0 {
		artifacts = append(artifacts, fmt.Sprintf("structural overrides (%d elements)", overridden))
	}
	return artifacts
}
