package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a user's history from a JSON export",
	Long: `Import readings and activity from a JSON export file.

Existing entries are skipped by default; pass --replace to overwrite them.

Example:
  vitalsync import alice.json
  vitalsync import alice.json --replace`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importReplace bool

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace existing entries instead of skipping them")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := vitalsync.NewStore(cfg.LocalPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	strategy := vitalsync.MergeStrategySkip
	if importReplace {
		strategy = vitalsync.MergeStrategyReplace
	}

	result, err := store.ImportJSON(context.Background(), f, strategy)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d entries (%d skipped)\n",
		result.Imported, result.Total, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", e)
	}
	return nil
}
