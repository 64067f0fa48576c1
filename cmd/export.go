package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agenda23/insightdash/internal/settings"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export settings, API keys, theme and tasks to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		data, err := json.MarshalIndent(a.settings.Export(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding export: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported to %s.\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a previously exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		var data settings.ExportData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing import file: %w", err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.settings.Import(data) {
			return fmt.Errorf("import failed; store may be partially updated")
		}
		fmt.Println("Imported.")
		return nil
	},
}
