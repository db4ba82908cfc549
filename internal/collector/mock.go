package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
	"time"

	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It is only used when selected explicitly, never as a fallback.
type MockFetcher struct {
	Series map[string]*model.RawSeries // fixed series per symbol
	Errors map[string]error            // forced error per symbol
	Delay  time.Duration               // simulated latency, honours ctx

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many fetches were made.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchSeries(ctx context.Context, symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &model.TransportError{Symbol: symbol, Err: ctx.Err()}
		case <-time.After(m.Delay):
		}
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if s, ok := m.Series[symbol]; ok {
		cp := *s
		cp.Points = append([]model.PricePoint(nil), s.Points...)
		return &cp, nil
	}
	return generateMockSeries(symbol, from, to, g)
}

func step(g model.Granularity) time.Duration {
	switch g {
	case model.FiveMin:
		return 5 * time.Minute
	case model.ThirtyMin:
		return 30 * time.Minute
	case model.OneHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// generateMockSeries produces a deterministic wave around a per-symbol base price.
func generateMockSeries(symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error) {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	base := 50 + float64(h.Sum32()%400)

	d := step(g)
	start := from.Truncate(d)
	if start.Before(from) {
		start = start.Add(d)
	}
	var ts []int64
	var closes []null.Float
	for i, t := 0, start; t.Before(to); i, t = i+1, t.Add(d) {
		ts = append(ts, t.Unix())
		closes = append(closes, null.FloatFrom(base*(1+0.02*math.Sin(float64(i)/12))))
	}
	return buildSeries(symbol, g, ts, closes)
}
