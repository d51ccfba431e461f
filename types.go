package vitalsync

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the library and as
// the remote document key. ISO dates sort lexicographically, so the same
// string serves as document ID, range-filter bound, and order-by key.
const DateLayout = "2006-01-02"

// Reading is a single instantaneous wearable sample. Readings are immutable
// once written to the local store; they are uploaded only inside a daily
// aggregate, never individually.
type Reading struct {
	ID           string   `json:"id"`
	UserID       string   `json:"-"`
	Timestamp    int64    `json:"timestamp"` // epoch milliseconds
	HeartRate    *int     `json:"heart_rate,omitempty"`
	SpO2         *int     `json:"spo2,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// VitalsSummary holds per-metric daily statistics. A nil field means the
// metric had no samples that day; zero is a valid physiological value and is
// never used to encode absence.
type VitalsSummary struct {
	AvgHeartRate   *float64 `json:"avg_heart_rate,omitempty"`
	MinHeartRate   *int     `json:"min_heart_rate,omitempty"`
	MaxHeartRate   *int     `json:"max_heart_rate,omitempty"`
	AvgSpO2        *float64 `json:"avg_spo2,omitempty"`
	MinSpO2        *int     `json:"min_spo2,omitempty"`
	MaxSpO2        *int     `json:"max_spo2,omitempty"`
	AvgTemperature *float64 `json:"avg_temperature,omitempty"`
	MinTemperature *float64 `json:"min_temperature,omitempty"`
	MaxTemperature *float64 `json:"max_temperature,omitempty"`
}

// Empty reports whether the summary carries no statistics at all.
func (s VitalsSummary) Empty() bool {
	return s.AvgHeartRate == nil && s.AvgSpO2 == nil && s.AvgTemperature == nil
}

// DailyVitals is the remote document for one (user, date): the raw readings,
// their summary, and sync bookkeeping. It is recomputed from local readings
// on every upload; the remote copy is never authoritative.
type DailyVitals struct {
	Date     string        `json:"date"`
	Readings []Reading     `json:"readings"`
	Summary  VitalsSummary `json:"summary"`
	SyncID   string        `json:"sync_id,omitempty"`
	SyncedAt time.Time     `json:"synced_at,omitempty"`
	Source   string        `json:"source,omitempty"` // "local", "remote" or "synthetic" on the read path
}

// DailyActivity is a pre-aggregated wellness record for one (user, date).
// It is produced outside this library and forwarded as-is.
type DailyActivity struct {
	UserID         string    `json:"-"`
	Date           string    `json:"date"`
	Steps          int       `json:"steps"`
	DistanceKm     float64   `json:"distance_km"`
	ActiveMinutes  int       `json:"active_minutes"`
	CaloriesBurned int       `json:"calories_burned"`
	SyncID         string    `json:"sync_id,omitempty"`
	SyncedAt       time.Time `json:"synced_at,omitempty"`
	Source         string    `json:"source,omitempty"`
}

// Data-source labels used on the read path.
const (
	SourceLocal     = "local"
	SourceRemote    = "remote"
	SourceSynthetic = "synthetic"
)

// StoreStats contains statistics about the local store.
type StoreStats struct {
	ReadingCount     int       `json:"reading_count"`
	ActivityDays     int       `json:"activity_days"`
	LastVitalsSync   time.Time `json:"last_vitals_sync"`
	LastActivitySync time.Time `json:"last_activity_sync"`
	SchemaVersion    string    `json:"schema_version"`
}

// HealthStatus reports client health: local store integrity and remote
// reachability.
type HealthStatus struct {
	Healthy         bool   `json:"healthy"`
	StoreOK         bool   `json:"store_ok"`
	RemoteReachable bool   `json:"remote_reachable"`
	Error           string `json:"error,omitempty"`
}

// Physiological plausibility bounds enforced at ingestion.
const (
	MinHeartRate    = 20
	MaxHeartRate    = 260
	MinSpO2         = 50
	MaxSpO2         = 100
	MinTemperatureC = 30.0
	MaxTemperatureC = 45.0
)

// ParseDate validates an ISO calendar date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// DateOf formats a moment as its local calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// DayBounds returns the [start, end) epoch-millisecond window for a calendar
// date in the local time zone.
func DayBounds(date string) (startMillis, endMillis int64, err error) {
	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	start := day
	end := day.AddDate(0, 0, 1)
	return start.UnixMilli(), end.UnixMilli(), nil
}

// DatesBack returns the last n calendar dates ending at (and including) the
// date of ref, newest first.
func DatesBack(ref time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, DateOf(ref.AddDate(0, 0, -i)))
	}
	return dates
}
