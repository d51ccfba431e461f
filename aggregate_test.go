package vitalsync

import (
	"math"
	"testing"
)

func hr(v int) Reading       { return Reading{HeartRate: &v} }
func spo2(v int) Reading     { return Reading{SpO2: &v} }
func temp(v float64) Reading { return Reading{TemperatureC: &v} }

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	if !s.Empty() {
		t.Fatal("summary of no readings should be empty")
	}
	// Every statistic must be nil, not zero: zero is a valid measurement.
	if s.AvgHeartRate != nil || s.MinHeartRate != nil || s.MaxHeartRate != nil {
		t.Error("heart rate stats should be nil for empty input")
	}
	if s.AvgSpO2 != nil || s.MinSpO2 != nil || s.MaxSpO2 != nil {
		t.Error("spo2 stats should be nil for empty input")
	}
	if s.AvgTemperature != nil || s.MinTemperature != nil || s.MaxTemperature != nil {
		t.Error("temperature stats should be nil for empty input")
	}
}

func TestSummarize_HeartRate(t *testing.T) {
	s := Summarize([]Reading{hr(60), hr(80), hr(100)})

	if s.AvgHeartRate == nil || *s.AvgHeartRate != 80 {
		t.Errorf("AvgHeartRate = %v, want 80", s.AvgHeartRate)
	}
	if s.MinHeartRate == nil || *s.MinHeartRate != 60 {
		t.Errorf("MinHeartRate = %v, want 60", s.MinHeartRate)
	}
	if s.MaxHeartRate == nil || *s.MaxHeartRate != 100 {
		t.Errorf("MaxHeartRate = %v, want 100", s.MaxHeartRate)
	}
	// Other metrics had no samples and must stay nil.
	if s.AvgSpO2 != nil || s.AvgTemperature != nil {
		t.Error("untouched metrics should remain nil")
	}
}

func TestSummarize_MixedNilFields(t *testing.T) {
	readings := []Reading{
		hr(70),
		spo2(97),
		temp(36.5),
		{}, // a reading with no measurements contributes nothing
		hr(90),
	}
	s := Summarize(readings)

	if s.AvgHeartRate == nil || *s.AvgHeartRate != 80 {
		t.Errorf("AvgHeartRate = %v, want 80", s.AvgHeartRate)
	}
	if s.MinSpO2 == nil || *s.MinSpO2 != 97 || *s.MaxSpO2 != 97 {
		t.Errorf("SpO2 min/max = %v/%v, want 97/97", s.MinSpO2, s.MaxSpO2)
	}
	if s.AvgTemperature == nil || math.Abs(*s.AvgTemperature-36.5) > 1e-9 {
		t.Errorf("AvgTemperature = %v, want 36.5", s.AvgTemperature)
	}
}

func TestSummarize_SingleReading(t *testing.T) {
	s := Summarize([]Reading{hr(65)})

	if *s.AvgHeartRate != 65 || *s.MinHeartRate != 65 || *s.MaxHeartRate != 65 {
		t.Errorf("single reading stats = %v/%v/%v, want all 65",
			*s.AvgHeartRate, *s.MinHeartRate, *s.MaxHeartRate)
	}
}

func TestSummarize_ZeroIsAValue(t *testing.T) {
	// A measured zero participates in statistics; only nil means "no data".
	zero := 50 // MinSpO2 bound is 50; use the low bound as the "measured low"
	s := Summarize([]Reading{spo2(zero), spo2(100)})

	if s.MinSpO2 == nil || *s.MinSpO2 != 50 {
		t.Errorf("MinSpO2 = %v, want 50", s.MinSpO2)
	}
	if *s.AvgSpO2 != 75 {
		t.Errorf("AvgSpO2 = %v, want 75", *s.AvgSpO2)
	}
}

func TestSummarize_PureFunction(t *testing.T) {
	readings := []Reading{hr(60), hr(80)}

	first := Summarize(readings)
	second := Summarize(readings)

	if *first.AvgHeartRate != *second.AvgHeartRate {
		t.Error("Summarize must be deterministic")
	}
	if readings[0].HeartRate == nil || *readings[0].HeartRate != 60 {
		t.Error("Summarize must not mutate its input")
	}
}
