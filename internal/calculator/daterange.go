package calculator

import (
	"fmt"
	"strings"
	"time"

	"RatioChart/internal/model"
)

// Range presets offered by the host page.
const (
	RangeToday  = "today"
	Range7Days  = "7days"
	Range1Month = "1month"
	RangeCustom = "custom"
)

const dayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse date %q: %v", model.ErrInvalidRequest, s, err)
	}
	return t, nil
}

// ResolveRange turns host input into a half-open [from, to) fetch window.
//
// Presets are anchored at now. For custom ranges both dates are required and the
// end date is pushed forward one day so the selected day is included. With no
// preset and no dates the last 7 days are used.
func ResolveRange(preset, fromDay, toDay string, now time.Time, loc *time.Location) (from, to time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	preset = strings.ToLower(strings.TrimSpace(preset))
	if preset == "" {
		if fromDay != "" || toDay != "" {
			preset = RangeCustom
		} else {
			preset = Range7Days
		}
	}

	switch preset {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), now, nil
	case Range7Days:
		return now.AddDate(0, 0, -7), now, nil
	case Range1Month:
		return now.AddDate(0, -1, 0), now, nil
	case RangeCustom:
		if fromDay == "" || toDay == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom range needs both from and to", model.ErrInvalidRequest)
		}
		if from, err = ParseDay(fromDay, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to, err = ParseDay(toDay, loc); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return from, to.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown range preset %q", model.ErrInvalidRequest, preset)
	}
}
