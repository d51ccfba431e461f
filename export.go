package vitalsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportFormat is the top-level structure for JSON exports.
type ExportFormat struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	UserID     string          `json:"user_id"`
	Readings   []Reading       `json:"readings"`
	Activity   []DailyActivity `json:"activity"`
}

// MergeStrategy defines how to handle conflicts during import.
type MergeStrategy string

const (
	// MergeStrategySkip skips entries that already exist (by ID or date).
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace replaces existing entries with imported versions.
	MergeStrategyReplace MergeStrategy = "replace"
)

// ImportResult summarizes an import operation.
type ImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportJSON streams one user's readings and activity history as JSON to
// the writer. Readings are streamed with cursor-based iteration to avoid
// loading the full history into memory.
func (s *Store) ExportJSON(ctx context.Context, userID string, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	if userID == "" {
		return ErrEmptyUserID
	}

	header := fmt.Sprintf(`{"version":%q,"exported_at":%q,"user_id":%q,"readings":[`,
		ExportVersion,
		time.Now().UTC().Format(time.RFC3339),
		userID,
	)
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, ts, heart_rate, spo2, temperature
		FROM readings WHERE user_id = ? ORDER BY ts ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	first := true
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := scanReading(rows)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode reading %s: %w", r.ID, err)
		}

		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		first = false

		if _, err := w.Write(encoded); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `],"activity":[`); err != nil {
		return err
	}

	activityRows, err := s.db.QueryContext(ctx, `
		SELECT user_id, date, steps, distance_km, active_minutes, calories_burned
		FROM daily_activity WHERE user_id = ? ORDER BY date ASC
	`, userID)
	if err != nil {
		return fmt.Errorf("query activity: %w", err)
	}
	defer activityRows.Close()

	first = true
	for activityRows.Next() {
		var a DailyActivity
		if err := activityRows.Scan(&a.UserID, &a.Date, &a.Steps, &a.DistanceKm, &a.ActiveMinutes, &a.CaloriesBurned); err != nil {
			return err
		}

		encoded, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode activity %s: %w", a.Date, err)
		}

		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		first = false

		if _, err := w.Write(encoded); err != nil {
			return err
		}
	}
	if err := activityRows.Err(); err != nil {
		return err
	}

	_, err = io.WriteString(w, "]}")
	return err
}
