package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperengineering/vitalsync"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record a vitals reading locally",
	Long: `Record a single wearable sample in the local store.

Ingestion is synchronous and local-only; the reading is uploaded later as
part of its day's aggregate.

Example:
  vitalsync ingest --user alice --heart-rate 72 --spo2 98 --temperature 36.6`,
	RunE: runIngest,
}

var (
	ingestUser        string
	ingestHeartRate   int
	ingestSpO2        int
	ingestTemperature float64
	ingestAt          string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "User ID (required)")
	ingestCmd.Flags().IntVar(&ingestHeartRate, "heart-rate", 0, "Heart rate in BPM")
	ingestCmd.Flags().IntVar(&ingestSpO2, "spo2", 0, "Blood oxygen saturation in percent")
	ingestCmd.Flags().Float64Var(&ingestTemperature, "temperature", 0, "Body temperature in Celsius")
	ingestCmd.Flags().StringVar(&ingestAt, "at", "", "Sample time, RFC 3339 (default: now)")
	_ = ingestCmd.MarkFlagRequired("user")
}

func runIngest(cmd *cobra.Command, args []string) error {
	client, err := vitalsync.New(loadConfig())
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	reading := vitalsync.Reading{UserID: ingestUser}
	if cmd.Flags().Changed("heart-rate") {
		reading.HeartRate = &ingestHeartRate
	}
	if cmd.Flags().Changed("spo2") {
		reading.SpO2 = &ingestSpO2
	}
	if cmd.Flags().Changed("temperature") {
		reading.TemperatureC = &ingestTemperature
	}
	if ingestAt != "" {
		at, err := time.Parse(time.RFC3339, ingestAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
		reading.Timestamp = at.UnixMilli()
	}

	stored, err := client.RecordReading(context.Background(), reading)
	if err != nil {
		return fmt.Errorf("record reading: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded reading %s at %s\n",
		stored.ID, time.UnixMilli(stored.Timestamp).Format(time.RFC3339))
	return nil
}
