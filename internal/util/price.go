// Package util provides small numeric helpers shared across the engine.
package util

import (
	"math"
	"time"
)

// RoundToTick rounds x to the nearest tick increment.
// For example, with tick=0.01, 1.2345 becomes 1.23 or 1.24 depending on rounding.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}

// CalendarDaysBetween returns whole calendar days from first to last,
// clamped at zero for same-day or inverted inputs.
func CalendarDaysBetween(first, last time.Time) int {
	f := first.UTC().Truncate(24 * time.Hour)
	l := last.UTC().Truncate(24 * time.Hour)
	days := int(l.Sub(f).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
