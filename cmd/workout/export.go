// ABOUTME: CLI command for exporting the training log.
// ABOUTME: Supports YAML and Markdown formats over finalized sessions and body weights.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the training log",
	Long: `Export finalized sessions and body-weight entries.

FORMATS:

  yaml       YAML export (human-readable, one entry per session)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include data since this date (YYYY-MM-DD)

EXAMPLES:

  workout export yaml                        # Export everything as YAML
  workout export yaml -o log.yaml            # Save to file
  workout export markdown --since 2026-01-01 # Sessions from 2026 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var since *time.Time
		if exportSince != "" {
			t, err := time.ParseInLocation("2006-01-02", exportSince, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
			since = &t
		}

		var data []byte
		var err error

		switch format {
		case "yaml", "yml":
			data, err = repo.ExportYAML(since)
		case "markdown", "md":
			var md string
			md, err = repo.ExportMarkdown(since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use yaml or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
}
