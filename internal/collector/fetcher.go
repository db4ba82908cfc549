package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

// Fetcher retrieves the close series of one symbol over [from, to) at one granularity.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// buildSeries validates parallel timestamp/close arrays into a RawSeries.
func buildSeries(symbol string, g model.Granularity, timestamps []int64, closes []null.Float) (*model.RawSeries, error) {
	if len(timestamps) == 0 {
		return nil, &model.NoDataError{Symbol: symbol}
	}
	if closes == nil {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "missing close series"}
	}
	if len(closes) != len(timestamps) {
		return nil, &model.DataFormatError{
			Symbol: symbol,
			Reason: fmt.Sprintf("%d timestamps but %d closes", len(timestamps), len(closes)),
		}
	}

	s := &model.RawSeries{
		Symbol:      symbol,
		Granularity: g,
		Points:      make([]model.PricePoint, len(timestamps)),
	}
	for i, ts := range timestamps {
		s.Points[i] = model.PricePoint{Timestamp: ts, Close: closes[i]}
	}
	if s.ValidCount() == 0 {
		return nil, &model.NoDataError{Symbol: symbol}
	}
	return s, nil
}
