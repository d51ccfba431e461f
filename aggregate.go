package vitalsync

// Summarize rolls a day's readings up into per-metric statistics. It is a
// pure, total function: an empty input (or a metric with no samples) yields
// nil statistics rather than zeros or an error, so "no data" is always
// distinguishable from a measured zero.
//
// Callers are expected to pass readings already scoped to one calendar day;
// Summarize itself does no filtering.
func Summarize(readings []Reading) VitalsSummary {
	var (
		s VitalsSummary

		hrSum, hrCount, hrMin, hrMax int
		spSum, spCount, spMin, spMax int
		tpSum                        float64
		tpCount                      int
		tpMin, tpMax                 float64
	)

	for _, r := range readings {
		if r.HeartRate != nil {
			v := *r.HeartRate
			if hrCount == 0 || v < hrMin {
				hrMin = v
			}
			if hrCount == 0 || v > hrMax {
				hrMax = v
			}
			hrSum += v
			hrCount++
		}
		if r.SpO2 != nil {
			v := *r.SpO2
			if spCount == 0 || v < spMin {
				spMin = v
			}
			if spCount == 0 || v > spMax {
				spMax = v
			}
			spSum += v
			spCount++
		}
		if r.TemperatureC != nil {
			v := *r.TemperatureC
			if tpCount == 0 || v < tpMin {
				tpMin = v
			}
			if tpCount == 0 || v > tpMax {
				tpMax = v
			}
			tpSum += v
			tpCount++
		}
	}

	if hrCount > 0 {
		avg := float64(hrSum) / float64(hrCount)
		s.AvgHeartRate = &avg
		s.MinHeartRate = intPtr(hrMin)
		s.MaxHeartRate = intPtr(hrMax)
	}
	if spCount > 0 {
		avg := float64(spSum) / float64(spCount)
		s.AvgSpO2 = &avg
		s.MinSpO2 = intPtr(spMin)
		s.MaxSpO2 = intPtr(spMax)
	}
	if tpCount > 0 {
		avg := tpSum / float64(tpCount)
		s.AvgTemperature = &avg
		s.MinTemperature = floatPtr(tpMin)
		s.MaxTemperature = floatPtr(tpMax)
	}

	return s
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
