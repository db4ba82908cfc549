package calculator

import (
	"sort"

	"RatioChart/internal/model"
)

// Palette is cycled by day rank to give each day its own line color.
var Palette = []string{
	"rgb(75, 192, 192)",  // teal
	"rgb(255, 99, 132)",  // pink
	"rgb(54, 162, 235)",  // blue
	"rgb(255, 206, 86)",  // yellow
	"rgb(153, 102, 255)", // purple
	"rgb(255, 159, 64)",  // orange
	"rgb(75, 192, 75)",   // green
}

// PartitionByDay groups points by DayKey, ascending, each day sorted by time.
// The input slice is not modified.
func PartitionByDay(points []model.RatioPoint) []model.DaySeries {
	groups := make(map[string][]model.RatioPoint)
	for _, p := range points {
		groups[p.DayKey] = append(groups[p.DayKey], p)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]model.DaySeries, 0, len(keys))
	for i, k := range keys {
		pts := groups[k]
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Time.Before(pts[b].Time) })
		idx := i % len(Palette)
		days = append(days, model.DaySeries{
			DayKey:     k,
			Points:     pts,
			ColorIndex: idx,
			Color:      Palette[idx],
			Stats:      ComputeDayStats(pts),
		})
	}
	return days
}

// Datasets projects day series into the renderer payload.
func Datasets(days []model.DaySeries) []model.PlotDataset {
	out := make([]model.PlotDataset, 0, len(days))
	for _, d := range days {
		xy := make([]model.XY, len(d.Points))
		for i, p := range d.Points {
			xy[i] = model.XY{X: p.Time, Y: p.Ratio}
		}
		out = append(out, model.PlotDataset{
			Label:      d.DayKey,
			Points:     xy,
			ColorIndex: d.ColorIndex,
			Color:      d.Color,
			Stats:      d.Stats,
		})
	}
	return out
}
