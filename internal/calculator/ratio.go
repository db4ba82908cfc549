package calculator

import (
	"math"
	"time"

	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

// AlignRatio inner-joins two series on timestamp and returns numerator/denominator
// for every timestamp where both closes are present and non-zero.
//
// Unmatched or missing samples are dropped silently. Points follow the
// denominator's order. DayKey is taken in loc (UTC when nil), which must stay
// fixed for a whole run. An empty result is an empty slice, not an error.
func AlignRatio(num, den *model.RawSeries, loc *time.Location) []model.RatioPoint {
	if loc == nil {
		loc = time.UTC
	}
	if num == nil || den == nil {
		return []model.RatioPoint{}
	}

	closes := make(map[int64]float64, len(num.Points))
	for _, p := range num.Points {
		if !usable(p.Close) {
			continue
		}
		if _, ok := closes[p.Timestamp]; !ok {
			closes[p.Timestamp] = p.Close.Float64
		}
	}

	out := make([]model.RatioPoint, 0, min(len(closes), len(den.Points)))
	emitted := make(map[int64]struct{}, cap(out))
	for _, p := range den.Points {
		if !usable(p.Close) {
			continue
		}
		n, ok := closes[p.Timestamp]
		if !ok {
			continue
		}
		if _, dup := emitted[p.Timestamp]; dup {
			continue
		}
		r := n / p.Close.Float64
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		emitted[p.Timestamp] = struct{}{}
		t := time.Unix(p.Timestamp, 0).In(loc)
		out = append(out, model.RatioPoint{
			Time:   t,
			Ratio:  r,
			DayKey: t.Format(dayLayout),
		})
	}
	return out
}

func usable(c null.Float) bool {
	if !c.Valid || c.Float64 == 0 {
		return false
	}
	return !math.IsNaN(c.Float64) && !math.IsInf(c.Float64, 0)
}
