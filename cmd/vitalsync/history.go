package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show vitals or activity history",
	Long: `Show daily history for a user, walking the read path: local
readings first, then the remote store, then synthetic fallback data.

Example:
  vitalsync history --user alice --days 7
  vitalsync history --user alice --days 30 --activity --json`,
	RunE: runHistory,
}

var (
	historyUser     string
	historyDays     int
	historyActivity bool
)

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "User ID (required)")
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
	historyCmd.Flags().BoolVar(&historyActivity, "activity", false, "Show activity instead of vitals")
	_ = historyCmd.MarkFlagRequired("user")
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, err := vitalsync.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()

	if historyActivity {
		records := client.ActivityHistory(ctx, historyUser, historyDays)
		if outputJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		for _, a := range records {
			fmt.Fprintf(out, "%s  steps=%-6d distance=%.1fkm active=%dmin calories=%d (%s)\n",
				a.Date, a.Steps, a.DistanceKm, a.ActiveMinutes, a.CaloriesBurned, a.Source)
		}
		return reportReadErr(client)
	}

	days := client.VitalsHistory(ctx, historyUser, historyDays)
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(days)
	}
	for _, d := range days {
		fmt.Fprintf(out, "%s  readings=%-4d hr=%s spo2=%s temp=%s (%s)\n",
			d.Date, len(d.Readings),
			formatStat(d.Summary.AvgHeartRate, d.Summary.MinHeartRate, d.Summary.MaxHeartRate),
			formatStat(d.Summary.AvgSpO2, d.Summary.MinSpO2, d.Summary.MaxSpO2),
			formatTempStat(d.Summary),
			d.Source)
	}
	return reportReadErr(client)
}

func reportReadErr(client *vitalsync.Client) error {
	if err := client.LastSyncError(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "note: remote fetch failed, data may be local or synthetic: %v\n", err)
	}
	return nil
}

func formatStat(avg *float64, min, max *int) string {
	if avg == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f[%d..%d]", *avg, *min, *max)
}

func formatTempStat(s vitalsync.VitalsSummary) string {
	if s.AvgTemperature == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f[%.1f..%.1f]", *s.AvgTemperature, *s.MinTemperature, *s.MaxTemperature)
}
