// Package temporal computes the time-based spread metrics: velocity
// (events per hour over a cascade's lifetime) and posting patterns
// bucketed by hour of day or day of week. All bucketing uses UTC.
package temporal

import (
	"math"
	"time"

	"github.com/misinfo-watch/cascadia/models"
)

// Velocity is the cascade's event count divided by its elapsed hours.
// A cascade with no span (empty, single event, or identical
// timestamps) has velocity 0.0 by convention; callers can rely on 0 as
// a real, reproducible sentinel rather than an error.
func Velocity(c *models.Cascade) float64 {
	if c == nil || len(c.Events) == 0 {
		return 0.0
	}
	elapsedHours := c.Duration().Hours()
	if elapsedHours == 0 {
		return 0.0
	}
	return float64(len(c.Events)) / elapsedHours
}

// Pattern is a fixed-width histogram of posting activity: 24 bins for
// hour-of-day, 7 for day-of-week.
type Pattern struct {
	Bins []int `json:"histogram"`
	// PeakBin is the modal bin, ties broken by the lowest bin index.
	// Nil when there are no events.
	PeakBin *int `json:"peak_bin"`
	// Std is the population standard deviation of counts across all
	// bins, a concentration measure: bursty round-the-clock bots
	// score high, diurnal humans lower.
	Std float64 `json:"std"`
}

// HourlyPattern buckets events into 24 UTC hour-of-day bins.
func HourlyPattern(events []models.Event) Pattern {
	return bucket(events, 24, func(ts time.Time) int {
		return ts.In(time.UTC).Hour()
	})
}

// DailyPattern buckets events into 7 UTC day-of-week bins
// (0 = Sunday).
func DailyPattern(events []models.Event) Pattern {
	return bucket(events, 7, func(ts time.Time) int {
		return int(ts.In(time.UTC).Weekday())
	})
}

func bucket(events []models.Event, width int, binFor func(time.Time) int) Pattern {
	p := Pattern{Bins: make([]int, width)}
	if len(events) == 0 {
		return p
	}
	for _, ev := range events {
		p.Bins[binFor(ev.Timestamp)]++
	}

	peak := 0
	sum := 0
	for bin, count := range p.Bins {
		sum += count
		if count > p.Bins[peak] {
			peak = bin
		}
	}
	p.PeakBin = &peak

	mean := float64(sum) / float64(width)
	variance := 0.0
	for _, count := range p.Bins {
		d := float64(count) - mean
		variance += d * d
	}
	p.Std = math.Sqrt(variance / float64(width))
	return p
}
