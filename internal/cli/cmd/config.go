package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
	"github.com/mxnstrexgl/cyberdark/internal/config"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

var schemaApp bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	RunE:  runConfigPath,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the settings record JSON schema",
	Long: `Print the JSON schema of the settings record, for editor completion
and validation of export files. With --app, print the schema of the daemon
config file instead.`,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSchemaCmd)
	configSchemaCmd.Flags().BoolVar(&schemaApp, "app", false, "print the daemon config schema instead")
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	t := app.Theme

	path, err := config.GetConfigFile()
	if err != nil {
		return err
	}

	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		fmt.Printf("\n  %s Config %s\n  %s\n",
			iconStyle.Render(styles.IconConfig),
			t.Subtle.Render(path),
			t.Subtle.Render("The file will be created on first run with all defaults."),
		)
		return nil
	}
	fmt.Printf("\n  %s Config %s\n", iconStyle.Render(styles.IconConfig), t.Normal.Render(path))
	fmt.Printf("  %s Store  %s (%s)\n",
		iconStyle.Render(styles.IconDatabase),
		t.Normal.Render(app.Config.Store.Path),
		t.Subtle.Render(string(app.Config.Store.Backend)),
	)
	return nil
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	var (
		data []byte
		err  error
	)
	if schemaApp {
		data, err = config.Schema()
	} else {
		data, err = settings.Schema()
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
