package vitalsync

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a store in a temp directory, closed at test end.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "vitals.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// insertTestReadings adds n heart-rate readings for userID spaced one minute
// apart starting at base.
func insertTestReadings(t *testing.T, store *Store, userID string, base time.Time, n int) []Reading {
	t.Helper()

	inserted := make([]Reading, 0, n)
	for i := 0; i < n; i++ {
		rate := 60 + i
		r, err := store.InsertReading(Reading{
			UserID:    userID,
			Timestamp: base.Add(time.Duration(i) * time.Minute).UnixMilli(),
			HeartRate: &rate,
		})
		if err != nil {
			t.Fatalf("InsertReading #%d failed: %v", i, err)
		}
		inserted = append(inserted, *r)
	}
	return inserted
}

func TestStore_InsertReadingAssignsID(t *testing.T) {
	store := newTestStore(t)

	rate := 72
	r, err := store.InsertReading(Reading{UserID: "alice", HeartRate: &rate})
	if err != nil {
		t.Fatalf("InsertReading: %v", err)
	}
	if r.ID == "" {
		t.Error("reading should get a generated ID")
	}
	if r.Timestamp == 0 {
		t.Error("reading should get a timestamp")
	}
}

func TestStore_InsertReadingValidation(t *testing.T) {
	store := newTestStore(t)

	hr := func(v int) *int { return &v }
	sp := func(v int) *int { return &v }
	tc := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		reading Reading
		wantErr error
	}{
		{"missing user", Reading{HeartRate: hr(70)}, ErrEmptyUserID},
		{"no measurements", Reading{UserID: "alice"}, ErrEmptyReading},
		{"heart rate too low", Reading{UserID: "alice", HeartRate: hr(5)}, ErrReadingOutOfRange},
		{"heart rate too high", Reading{UserID: "alice", HeartRate: hr(400)}, ErrReadingOutOfRange},
		{"spo2 over 100", Reading{UserID: "alice", SpO2: sp(101)}, ErrReadingOutOfRange},
		{"temperature implausible", Reading{UserID: "alice", TemperatureC: tc(20)}, ErrReadingOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.InsertReading(tt.reading)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertReading error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_ReadingsInRange(t *testing.T) {
	store := newTestStore(t)

	day, _ := time.ParseInLocation(DateLayout, "2026-08-28", time.Local)
	insertTestReadings(t, store, "alice", day.Add(8*time.Hour), 5)
	// Another user's and another day's readings must not leak in.
	insertTestReadings(t, store, "bob", day.Add(9*time.Hour), 3)
	insertTestReadings(t, store, "alice", day.Add(30*time.Hour), 2)

	start, end, _ := DayBounds("2026-08-28")
	readings, err := store.ReadingsInRange("alice", start, end)
	if err != nil {
		t.Fatalf("ReadingsInRange: %v", err)
	}

	if len(readings) != 5 {
		t.Fatalf("got %d readings, want 5", len(readings))
	}
	for i := 1; i < len(readings); i++ {
		if readings[i].Timestamp < readings[i-1].Timestamp {
			t.Fatal("readings must be ordered by timestamp ascending")
		}
	}
	for _, r := range readings {
		if r.UserID != "alice" {
			t.Errorf("leaked reading for %q", r.UserID)
		}
	}
}

func TestStore_ReadingsInRangeEmpty(t *testing.T) {
	store := newTestStore(t)

	start, end, _ := DayBounds("2026-08-28")
	readings, err := store.ReadingsInRange("nobody", start, end)
	if err != nil {
		t.Fatalf("empty range should not error: %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("got %d readings, want 0", len(readings))
	}
}

func TestStore_ReadingsPreserveNilFields(t *testing.T) {
	store := newTestStore(t)

	rate := 68
	day, _ := time.ParseInLocation(DateLayout, "2026-08-28", time.Local)
	_, err := store.InsertReading(Reading{
		UserID:    "alice",
		Timestamp: day.Add(10 * time.Hour).UnixMilli(),
		HeartRate: &rate,
	})
	if err != nil {
		t.Fatalf("InsertReading: %v", err)
	}

	start, end, _ := DayBounds("2026-08-28")
	readings, err := store.ReadingsInRange("alice", start, end)
	if err != nil {
		t.Fatalf("ReadingsInRange: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("got %d readings, want 1", len(readings))
	}

	r := readings[0]
	if r.HeartRate == nil || *r.HeartRate != 68 {
		t.Errorf("HeartRate = %v, want 68", r.HeartRate)
	}
	if r.SpO2 != nil || r.TemperatureC != nil {
		t.Error("unset measurements must round-trip as nil, not zero")
	}
}

func TestStore_UpsertDailyActivity(t *testing.T) {
	store := newTestStore(t)

	activity := DailyActivity{
		UserID:         "alice",
		Date:           "2026-08-28",
		Steps:          8000,
		DistanceKm:     5.6,
		ActiveMinutes:  45,
		CaloriesBurned: 2100,
	}
	if err := store.UpsertDailyActivity(activity); err != nil {
		t.Fatalf("UpsertDailyActivity: %v", err)
	}

	// Second upsert for the same (user, date) replaces, never duplicates.
	activity.Steps = 9500
	if err := store.UpsertDailyActivity(activity); err != nil {
		t.Fatalf("second UpsertDailyActivity: %v", err)
	}

	got, err := store.DailyActivityFor("alice", "2026-08-28")
	if err != nil {
		t.Fatalf("DailyActivityFor: %v", err)
	}
	if got.Steps != 9500 {
		t.Errorf("Steps = %d, want 9500", got.Steps)
	}

	stats, _ := store.Stats()
	if stats.ActivityDays != 1 {
		t.Errorf("ActivityDays = %d, want 1", stats.ActivityDays)
	}
}

func TestStore_DailyActivityNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DailyActivityFor("alice", "2026-08-28")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpsertDailyActivityValidation(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertDailyActivity(DailyActivity{Date: "2026-08-28"}); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("error = %v, want ErrEmptyUserID", err)
	}
	if err := store.UpsertDailyActivity(DailyActivity{UserID: "alice", Date: "bogus"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("error = %v, want ErrInvalidDate", err)
	}
}

func TestStore_Metadata(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetMetadata("last_vitals_sync", "2026-08-28T10:00:00Z"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	got, err := store.GetMetadata("last_vitals_sync")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got != "2026-08-28T10:00:00Z" {
		t.Errorf("value = %q", got)
	}

	// Unset keys read as empty, not as an error.
	got, err = store.GetMetadata("never_set")
	if err != nil || got != "" {
		t.Errorf("GetMetadata(never_set) = %q, %v", got, err)
	}

	// Overwrites replace.
	_ = store.SetMetadata("last_vitals_sync", "2026-08-29T10:00:00Z")
	got, _ = store.GetMetadata("last_vitals_sync")
	if got != "2026-08-29T10:00:00Z" {
		t.Errorf("value after overwrite = %q", got)
	}
}

func TestStore_ActiveUser(t *testing.T) {
	store := newTestStore(t)

	user, err := store.ActiveUser()
	if err != nil || user != "" {
		t.Fatalf("fresh store ActiveUser = %q, %v", user, err)
	}

	if err := store.SetActiveUser("alice"); err != nil {
		t.Fatalf("SetActiveUser: %v", err)
	}
	user, _ = store.ActiveUser()
	if user != "alice" {
		t.Errorf("ActiveUser = %q, want alice", user)
	}
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	insertTestReadings(t, store, "alice", time.Now().Add(-time.Hour), 3)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ReadingCount != 3 {
		t.Errorf("ReadingCount = %d, want 3", stats.ReadingCount)
	}
	if stats.SchemaVersion != schemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", stats.SchemaVersion, schemaVersion)
	}
	if !stats.LastVitalsSync.IsZero() {
		t.Error("LastVitalsSync should be zero before any sync")
	}
}

func TestStore_Closed(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rate := 70
	if _, err := store.InsertReading(Reading{UserID: "alice", HeartRate: &rate}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("InsertReading on closed store = %v, want ErrStoreClosed", err)
	}
	if _, err := store.ReadingsInRange("alice", 0, 1); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("ReadingsInRange on closed store = %v, want ErrStoreClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("double Close should be a no-op: %v", err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitals.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	insertTestReadings(t, store, "alice", time.Now().Add(-time.Hour), 2)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	stats, err := reopened.Stats()
	if err != nil {
		t.Fatalf("Stats after reopen: %v", err)
	}
	if stats.ReadingCount != 2 {
		t.Errorf("ReadingCount after reopen = %d, want 2", stats.ReadingCount)
	}
}
