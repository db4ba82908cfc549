package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"RatioChart/internal/calculator"
	"RatioChart/internal/model"
)

// Collector fetches both legs of a pair and turns them into a RatioChart.
type Collector struct {
	Fetcher  Fetcher
	Location *time.Location // day-key zone, fixed for the process
	Now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, loc *time.Location) *Collector {
	if loc == nil {
		loc = time.UTC
	}
	return &Collector{Fetcher: fetcher, Location: loc, Now: time.Now}
}

// Collect runs one render cycle: fetch both symbols concurrently, fail fast if
// either fails, then align, partition and project.
func (c *Collector) Collect(ctx context.Context, req model.Request) (*model.RatioChart, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pair := req.Pair()
	gran := calculator.SelectInterval(req.From, req.To)

	var num, den *model.RawSeries
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s, err := c.Fetcher.FetchSeries(egCtx, pair.Numerator, req.From, req.To, gran)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", pair.Numerator, err)
		}
		num = s
		return nil
	})
	eg.Go(func() error {
		s, err := c.Fetcher.FetchSeries(egCtx, pair.Denominator, req.From, req.To, gran)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", pair.Denominator, err)
		}
		den = s
		return nil
	})
	if err := eg.Wait(); err != nil {
		collectTotal.WithLabelValues(model.ErrorKind(err)).Inc()
		return nil, err
	}

	points := calculator.AlignRatio(num, den, c.Location)
	if len(points) == 0 {
		err := &model.EmptyOverlapError{Numerator: pair.Numerator, Denominator: pair.Denominator}
		collectTotal.WithLabelValues(model.ErrorKind(err)).Inc()
		return nil, err
	}
	days := calculator.PartitionByDay(points)

	chart := &model.RatioChart{
		ID:                uuid.NewString(),
		Pair:              pair,
		Title:             fmt.Sprintf("%s Price Ratio", pair),
		From:              req.From,
		To:                req.To,
		Granularity:       gran,
		TimeUnit:          gran.TimeUnit(),
		Days:              days,
		Datasets:          calculator.Datasets(days),
		PointsNumerator:   num.ValidCount(),
		PointsDenominator: den.ValidCount(),
		PointsAligned:     len(points),
		GeneratedAt:       c.Now(),
	}
	collectTotal.WithLabelValues("ok").Inc()
	log.Printf("[INFO] %s %s: %d/%d points aligned into %d days",
		pair, gran, chart.PointsAligned, min(chart.PointsNumerator, chart.PointsDenominator), len(days))
	return chart, nil
}
