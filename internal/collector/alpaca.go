package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

// AlpacaFetcher implements Fetcher using Alpaca market data bars.
type AlpacaFetcher struct {
	client *marketdata.Client
}

// NewAlpacaFetcher creates a fetcher; an empty baseURL uses Alpaca's default data host.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func alpacaTimeFrame(g model.Granularity) marketdata.TimeFrame {
	switch g {
	case model.FiveMin:
		return marketdata.NewTimeFrame(5, marketdata.Min)
	case model.ThirtyMin:
		return marketdata.NewTimeFrame(30, marketdata.Min)
	case model.OneHour:
		return marketdata.OneHour
	default:
		return marketdata.OneDay
	}
}

type alpacaResult struct {
	bars []marketdata.Bar
	err  error
}

func (f *AlpacaFetcher) FetchSeries(ctx context.Context, symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error) {
	// The SDK call takes no context, so it runs aside and is abandoned on cancellation.
	ch := make(chan alpacaResult, 1)
	go func() {
		bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: alpacaTimeFrame(g),
			Start:     from,
			End:       to,
		})
		ch <- alpacaResult{bars: bars, err: err}
	}()

	var res alpacaResult
	select {
	case <-ctx.Done():
		return nil, &model.TransportError{Symbol: symbol, Err: ctx.Err()}
	case res = <-ch:
	}
	if res.err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: fmt.Errorf("alpaca bars: %w", res.err)}
	}

	timestamps := make([]int64, len(res.bars))
	closes := make([]null.Float, len(res.bars))
	for i, b := range res.bars {
		timestamps[i] = b.Timestamp.Unix()
		closes[i] = null.FloatFrom(b.Close)
	}
	s, err := buildSeries(symbol, g, timestamps, closes)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] alpaca: %s %s %d bars", symbol, g, len(s.Points))
	return s, nil
}
