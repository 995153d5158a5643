package models

import (
	"fmt"
	"time"
)

// ParseDate validates a YYYY-MM-DD string and returns its canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(DateLayout), nil
}

// NormalizeRange swaps start and end when they arrive reversed. Both dates
// must already be in canonical form.
func NormalizeRange(start, end string) (string, string) {
	if start > end {
		return end, start
	}
	return start, end
}

// DaysInclusive returns the number of calendar days covered by the closed
// range [start, end]. A same-day range counts as one day.
func DaysInclusive(start, end string) int {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0
	}
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// EachDay calls fn for every day of the closed range [start, end] in order.
func EachDay(start, end string, fn func(day string)) {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(d.Format(DateLayout))
	}
}

// RangesOverlap reports whether two closed date ranges intersect.
func RangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && aEnd >= bStart
}
