package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client, err := vitalsync.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	stats, err := client.Stats()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Readings:           %d\n", stats.ReadingCount)
	fmt.Fprintf(out, "Activity days:      %d\n", stats.ActivityDays)
	fmt.Fprintf(out, "Last vitals sync:   %s\n", formatSyncTime(stats.LastVitalsSync))
	fmt.Fprintf(out, "Last activity sync: %s\n", formatSyncTime(stats.LastActivitySync))
	fmt.Fprintf(out, "Schema version:     %s\n", stats.SchemaVersion)

	health := client.HealthCheck(context.Background())
	if health.RemoteReachable {
		fmt.Fprintln(out, "Remote store:       reachable")
	} else if !cfg.IsOffline() {
		fmt.Fprintln(out, "Remote store:       unreachable")
	}

	return nil
}

func formatSyncTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
