package main

import (
	"os"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath    string
	cfgRemoteURL string
	cfgAPIKey    string
	outputJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "vitalsync",
	Short: "vitalsync - local-first wearable vitals sync",
	Long: `vitalsync records wearable vitals and activity locally and keeps a
remote document store in sync with daily summaries.

It is the operator shell around the vitalsync library: ingest samples,
trigger syncs, inspect history, and move data in and out.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to local vitals database (default: ~/.vitalsync/vitals.db)")
	rootCmd.PersistentFlags().StringVar(&cfgRemoteURL, "remote-url", "", "Base URL of the remote document store")
	rootCmd.PersistentFlags().StringVar(&cfgAPIKey, "api-key", "", "API key for the remote document store")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON instead of text")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
}

func loadConfig() vitalsync.Config {
	cfg := vitalsync.DefaultConfig()

	// CLI invocations are one-shot; the scheduler belongs to long-lived shells.
	cfg.AutoSync = false

	// Override with flags
	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgRemoteURL != "" {
		cfg.RemoteURL = cfgRemoteURL
	}
	if cfgAPIKey != "" {
		cfg.APIKey = cfgAPIKey
	}

	// Override with environment variables
	if v := os.Getenv("VITALSYNC_DB_PATH"); v != "" && cfgDBPath == "" {
		cfg.LocalPath = v
	}
	if v := os.Getenv("VITALSYNC_REMOTE_URL"); v != "" && cfgRemoteURL == "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("VITALSYNC_API_KEY"); v != "" && cfgAPIKey == "" {
		cfg.APIKey = v
	}
	if os.Getenv("VITALSYNC_DEBUG") != "" {
		cfg.Debug = true
		cfg.DebugLogPath = os.Getenv("VITALSYNC_DEBUG_LOG")
	}

	return cfg
}
