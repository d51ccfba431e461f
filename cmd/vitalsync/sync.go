package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync a day's data to the remote store",
	Long: `Upload one day's aggregated vitals and activity to the remote
document store.

Example:
  vitalsync sync --user alice                   # today
  vitalsync sync --user alice --date 2026-08-28 # a specific day`,
	RunE: runSync,
}

var (
	syncUser string
	syncDate string
)

func init() {
	syncCmd.Flags().StringVar(&syncUser, "user", "", "User ID (required)")
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Calendar date YYYY-MM-DD (default: today)")
	_ = syncCmd.MarkFlagRequired("user")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.RemoteURL == "" {
		return fmt.Errorf("VITALSYNC_REMOTE_URL not configured")
	}

	client, err := vitalsync.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()

	date := syncDate
	if date == "" {
		date = vitalsync.DateOf(time.Now())
	}

	fmt.Printf("Syncing %s for %s...\n", date, syncUser)
	if err := client.SyncDate(ctx, syncUser, syncDate); err != nil {
		// Distinguish the failure kinds a person can act on.
		switch {
		case errors.Is(err, vitalsync.ErrSyncInProgress):
			return fmt.Errorf("a sync is already in progress, try again shortly")
		case errors.Is(err, vitalsync.ErrPermissionDenied):
			return fmt.Errorf("access denied by the remote store, check your API key")
		case errors.Is(err, vitalsync.ErrRemoteUnavailable):
			return fmt.Errorf("no connection to the remote store: %w", err)
		default:
			return fmt.Errorf("sync: %w", err)
		}
	}

	fmt.Printf("Sync complete (took %s)\n", time.Since(start).Round(time.Millisecond))

	stats, err := client.Stats()
	if err == nil {
		fmt.Printf("Local readings: %d\n", stats.ReadingCount)
		if !stats.LastVitalsSync.IsZero() {
			fmt.Printf("Last vitals sync: %s\n", stats.LastVitalsSync.Format(time.RFC3339))
		}
	}

	return nil
}
