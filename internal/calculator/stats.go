package calculator

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"RatioChart/internal/model"
)

// ComputeDayStats summarizes one day's ratios. Points must be time-ordered.
func ComputeDayStats(points []model.RatioPoint) model.DayStats {
	if len(points) == 0 {
		return model.DayStats{}
	}
	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Ratio
	}

	s := model.DayStats{
		Count: len(xs),
		First: xs[0],
		Last:  xs[len(xs)-1],
		Min:   floats.Min(xs),
		Max:   floats.Max(xs),
	}
	if len(xs) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	} else {
		s.Mean = xs[0]
	}
	if s.First != 0 {
		s.Change = (s.Last - s.First) / s.First * 100
	}
	return s
}
