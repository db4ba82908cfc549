package model

import "time"

// RatioPoint is one aligned sample of numerator/denominator.
type RatioPoint struct {
	Time   time.Time
	Ratio  float64
	DayKey string // YYYY-MM-DD in the run's time zone
}

// DayStats summarizes one day of ratio points.
type DayStats struct {
	Count  int     `json:"count"`
	First  float64 `json:"first"`
	Last   float64 `json:"last"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Change float64 `json:"change_pct"` // (last-first)/first*100
}

// DaySeries holds the points of one calendar day, ascending by time. Never empty.
type DaySeries struct {
	DayKey     string
	Points     []RatioPoint
	ColorIndex int
	Color      string
	Stats      DayStats
}

// XY is one chart point.
type XY struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// PlotDataset is the renderer-facing projection of a DaySeries.
type PlotDataset struct {
	Label      string   `json:"label"`
	Points     []XY     `json:"points"`
	ColorIndex int      `json:"colorIndex"`
	Color      string   `json:"color"`
	Stats      DayStats `json:"stats"`
}

// RatioChart is the complete output of one render cycle. It is never mutated after it is built.
type RatioChart struct {
	ID                string        `json:"id"`
	Pair              Pair          `json:"pair"`
	Title             string        `json:"title"`
	From              time.Time     `json:"from"`
	To                time.Time     `json:"to"`
	Granularity       Granularity   `json:"granularity"`
	TimeUnit          string        `json:"timeUnit"`
	Datasets          []PlotDataset `json:"datasets"`
	Days              []DaySeries   `json:"-"`
	PointsNumerator   int           `json:"pointsNumerator"`
	PointsDenominator int           `json:"pointsDenominator"`
	PointsAligned     int           `json:"pointsAligned"`
	GeneratedAt       time.Time     `json:"generatedAt"`
}

// LastRatio returns the most recent ratio in the chart.
func (c *RatioChart) LastRatio() (RatioPoint, bool) {
	if c == nil || len(c.Days) == 0 {
		return RatioPoint{}, false
	}
	d := c.Days[len(c.Days)-1]
	return d.Points[len(d.Points)-1], true
}
