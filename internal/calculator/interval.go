package calculator

import (
	"math"
	"time"

	"RatioChart/internal/model"
)

// SelectInterval picks the sampling granularity for a date range.
// Days are counted on each end's wall clock, so a DST change inside the range
// does not add or remove an hour. A reversed or empty range counts as the
// shortest bucket.
func SelectInterval(from, to time.Time) model.Granularity {
	days := math.Ceil(wallClock(to).Sub(wallClock(from)).Hours() / 24)
	switch {
	case days <= 7:
		return model.FiveMin
	case days <= 30:
		return model.ThirtyMin
	case days <= 90:
		return model.OneHour
	default:
		return model.OneDay
	}
}

// wallClock re-reads t's local date and time as UTC.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, m, d, h, mi, sec, t.Nanosecond(), time.UTC)
}
