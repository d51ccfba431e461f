package vitalsync

import (
	"reflect"
	"testing"
)

func TestSyntheticProvider_Deterministic(t *testing.T) {
	p := SyntheticProvider{}
	dates := []string{"2026-08-28", "2026-08-27"}

	first := p.Vitals("alice", dates)
	second := p.Vitals("alice", dates)
	if !reflect.DeepEqual(first, second) {
		t.Error("same user and dates must generate identical vitals")
	}

	other := p.Vitals("bob", dates)
	if reflect.DeepEqual(first, other) {
		t.Error("different users should generate different vitals")
	}
}

func TestSyntheticProvider_VitalsArePlausible(t *testing.T) {
	docs := SyntheticProvider{}.Vitals("alice", []string{"2026-08-28"})
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}

	doc := docs[0]
	if doc.Source != SourceSynthetic {
		t.Errorf("source = %q, want synthetic", doc.Source)
	}
	if len(doc.Readings) == 0 {
		t.Fatal("synthetic day should have readings")
	}
	if doc.Summary.Empty() {
		t.Error("synthetic day should summarize")
	}
	for _, r := range doc.Readings {
		if r.HeartRate == nil || *r.HeartRate < MinHeartRate || *r.HeartRate > MaxHeartRate {
			t.Errorf("heart rate out of range: %v", r.HeartRate)
		}
		if r.SpO2 == nil || *r.SpO2 < MinSpO2 || *r.SpO2 > MaxSpO2 {
			t.Errorf("spo2 out of range: %v", r.SpO2)
		}
		if r.TemperatureC == nil || *r.TemperatureC < MinTemperatureC || *r.TemperatureC > MaxTemperatureC {
			t.Errorf("temperature out of range: %v", r.TemperatureC)
		}
	}
}

func TestSyntheticProvider_Activity(t *testing.T) {
	p := SyntheticProvider{}
	dates := []string{"2026-08-28", "2026-08-27"}

	records := p.Activity("alice", dates)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, rec := range records {
		if rec.Date != dates[i] {
			t.Errorf("record %d date = %q, want %q", i, rec.Date, dates[i])
		}
		if rec.Steps <= 0 || rec.DistanceKm <= 0 || rec.ActiveMinutes <= 0 || rec.CaloriesBurned <= 0 {
			t.Errorf("record %d not plausible: %+v", i, rec)
		}
		if rec.Source != SourceSynthetic {
			t.Errorf("record %d source = %q, want synthetic", i, rec.Source)
		}
	}

	if !reflect.DeepEqual(records, p.Activity("alice", dates)) {
		t.Error("activity generation must be deterministic")
	}
}

func TestSyntheticProvider_SkipsInvalidDates(t *testing.T) {
	p := SyntheticProvider{}

	if docs := p.Vitals("alice", []string{"not-a-date"}); len(docs) != 0 {
		t.Errorf("invalid dates should be skipped, got %d docs", len(docs))
	}
	if recs := p.Activity("alice", []string{"not-a-date"}); len(recs) != 0 {
		t.Errorf("invalid dates should be skipped, got %d records", len(recs))
	}
}
