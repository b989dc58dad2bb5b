package weather

import (
	"math"
	"sort"
	"time"
)

// AggregateForecast groups samples by local calendar day and returns exactly
// days entries. Each day's range covers every sample temperature together
// with the provider's per-sample min and max; the condition is the most
// frequent description, ties going to the sample nearest midday and then to
// the earliest. Days beyond the data are padded with Missing entries.
func AggregateForecast(series ForecastSeries, days int) Forecast {
	type dayKey string

	type bucket struct {
		date    time.Time
		min     float64
		max     float64
		samples []ForecastSample
	}

	buckets := make(map[dayKey]*bucket)
	for _, s := range series.Samples {
		t := s.Time
		k := dayKey(t.Format("2006-01-02"))
		b, ok := buckets[k]
		if !ok {
			b = &bucket{
				date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()),
				min:  math.Inf(1),
				max:  math.Inf(-1),
			}
			buckets[k] = b
		}
		b.min = math.Min(b.min, math.Min(s.Temperature, s.TempMin))
		b.max = math.Max(b.max, math.Max(s.Temperature, s.TempMax))
		b.samples = append(b.samples, s)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	out := Forecast{Location: series.Location, Days: make([]ForecastDay, 0, days)}
	for _, k := range keys {
		if len(out.Days) >= days {
			break
		}
		b := buckets[dayKey(k)]
		out.Days = append(out.Days, ForecastDay{
			Date:      b.date,
			TempMin:   b.min,
			TempMax:   b.max,
			Condition: dominantCondition(b.samples),
		})
	}

	next := time.Now().UTC().Truncate(24 * time.Hour)
	if n := len(out.Days); n > 0 {
		next = out.Days[n-1].Date.AddDate(0, 0, 1)
	}
	for len(out.Days) < days {
		out.Days = append(out.Days, ForecastDay{Date: next, Missing: true})
		next = next.AddDate(0, 0, 1)
	}
	return out
}

func dominantCondition(samples []ForecastSample) string {
	type tally struct {
		count  int
		first  int
		midday time.Duration
	}

	tallies := make(map[string]*tally)
	for i, s := range samples {
		dist := middayDistance(s.Time)
		t, ok := tallies[s.Condition]
		if !ok {
			tallies[s.Condition] = &tally{count: 1, first: i, midday: dist}
			continue
		}
		t.count++
		if dist < t.midday {
			t.midday = dist
		}
	}

	var (
		best     string
		bestTall *tally
	)
	for cond, t := range tallies {
		switch {
		case bestTall == nil,
			t.count > bestTall.count,
			t.count == bestTall.count && t.midday < bestTall.midday,
			t.count == bestTall.count && t.midday == bestTall.midday && t.first < bestTall.first:
			best, bestTall = cond, t
		}
	}
	return best
}

func middayDistance(t time.Time) time.Duration {
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	d := t.Sub(noon)
	if d < 0 {
		d = -d
	}
	return d
}
