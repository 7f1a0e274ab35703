package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

const exportFilePerm = 0o644

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export settings as a signed document",
	Long: `Export the settings record as a signed JSON document.

The document carries a checksum so a later import can detect tampering.
With no file argument the document goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import settings from a file",
	Long: `Import settings from a JSON file.

Both signed export documents and plain settings JSON are accepted. Signed
documents are verified first; a mismatching checksum rejects the import.
Every imported value passes through the sanitizer.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	t := app.Theme

	data, err := app.Export(ctx)
	if err != nil {
		fmt.Println(styles.NewSettingsRenderer(t).RenderError(err))
		return nil
	}

	if len(args) == 0 {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(args[0], data, exportFilePerm); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	iconStyle := lipgloss.NewStyle().Foreground(t.Success)
	fmt.Printf("\n  %s Settings exported to %s\n", iconStyle.Render(styles.IconCheck), t.Highlight.Render(args[0]))
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewSettingsRenderer(app.Theme)

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	record, err := app.Import(ctx, raw)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	iconStyle := lipgloss.NewStyle().Foreground(app.Theme.Success)
	fmt.Printf("\n  %s Settings imported from %s\n", iconStyle.Render(styles.IconCheck), app.Theme.Highlight.Render(args[0]))
	fmt.Println(renderer.RenderRecord(record))
	return nil
}
