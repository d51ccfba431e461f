package vitalsync

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// FallbackProvider supplies synthetic records when neither the local store
// nor the remote store has data for a requested range. It is only consulted
// as the last link of the read-path chain.
type FallbackProvider interface {
	Vitals(userID string, dates []string) []DailyVitals
	Activity(userID string, dates []string) []DailyActivity
}

// SyntheticProvider generates plausible resting-range vitals and activity.
// Output is deterministic per (userID, date) so repeated reads of the same
// empty range render the same placeholder data.
type SyntheticProvider struct{}

// Vitals generates one synthetic daily document per date, with hourly
// readings through a waking day.
func (SyntheticProvider) Vitals(userID string, dates []string) []DailyVitals {
	result := make([]DailyVitals, 0, len(dates))
	for _, date := range dates {
		day, err := ParseDate(date)
		if err != nil {
			continue
		}
		rng := rand.New(rand.NewSource(seed(userID, date)))

		readings := make([]Reading, 0, 16)
		for hour := 7; hour < 23; hour++ {
			hr := 58 + rng.Intn(40)
			spo2 := 95 + rng.Intn(5)
			temp := 36.2 + rng.Float64()
			readings = append(readings, Reading{
				Timestamp:    day.Add(time.Duration(hour) * time.Hour).UnixMilli(),
				HeartRate:    &hr,
				SpO2:         &spo2,
				TemperatureC: &temp,
			})
		}

		result = append(result, DailyVitals{
			Date:     date,
			Readings: readings,
			Summary:  Summarize(readings),
			Source:   SourceSynthetic,
		})
	}
	return result
}

// Activity generates one synthetic activity record per date.
func (SyntheticProvider) Activity(userID string, dates []string) []DailyActivity {
	result := make([]DailyActivity, 0, len(dates))
	for _, date := range dates {
		if _, err := ParseDate(date); err != nil {
			continue
		}
		rng := rand.New(rand.NewSource(seed(userID, date)))

		steps := 3000 + rng.Intn(9000)
		result = append(result, DailyActivity{
			UserID:         userID,
			Date:           date,
			Steps:          steps,
			DistanceKm:     float64(steps) * 0.0007,
			ActiveMinutes:  20 + rng.Intn(70),
			CaloriesBurned: 1500 + rng.Intn(900),
			Source:         SourceSynthetic,
		})
	}
	return result
}

func seed(userID, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{'/'})
	h.Write([]byte(date))
	return int64(h.Sum64())
}
