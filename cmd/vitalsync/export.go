package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's history as JSON",
	Long: `Stream a user's readings and activity history as a versioned JSON
document, suitable for backup or transfer to another device.

Example:
  vitalsync export --user alice > alice.json
  vitalsync export --user alice --out alice.json`,
	RunE: runExport,
}

var (
	exportUser string
	exportOut  string
)

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User ID (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("user")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := vitalsync.NewStore(cfg.LocalPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := store.ExportJSON(context.Background(), exportUser, out); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", exportOut)
	}
	return nil
}
