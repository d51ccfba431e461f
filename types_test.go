package vitalsync

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid", "2026-08-29", false},
		{"leap day", "2024-02-29", false},
		{"empty", "", true},
		{"slashes", "2026/08/29", true},
		{"not a date", "today", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.date)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2026-08-29")
	if err != nil {
		t.Fatalf("DayBounds: %v", err)
	}

	if end-start != int64(24*time.Hour/time.Millisecond) {
		t.Errorf("window = %dms, want 24h", end-start)
	}

	day, _ := time.ParseInLocation(DateLayout, "2026-08-29", time.Local)
	if start != day.UnixMilli() {
		t.Errorf("start = %d, want local midnight %d", start, day.UnixMilli())
	}

	if _, _, err := DayBounds("bogus"); err == nil {
		t.Error("DayBounds should reject invalid dates")
	}
}

func TestDatesBack(t *testing.T) {
	ref := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	dates := DatesBack(ref, 3)
	want := []string{"2026-03-02", "2026-03-01", "2026-02-28"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}

	if got := DatesBack(ref, 0); got != nil {
		t.Errorf("DatesBack(_, 0) = %v, want nil", got)
	}
}
