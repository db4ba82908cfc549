package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string            // chart endpoint, overridable for tests
	RelayURL  string            // optional relay prefix; the target URL is appended query-escaped
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL, relayURL string) *YahooFetcher {
	return &YahooFetcher{
		Client:   newHTTPClient(proxyURL),
		BaseURL:  yahooChartURL,
		RelayURL: relayURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []null.Float `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) chartURL(symbol string, from, to time.Time, g model.Granularity) string {
	base := f.BaseURL
	if base == "" {
		base = yahooChartURL
	}
	u := fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=%s",
		strings.TrimRight(base, "/")+"/", url.PathEscape(f.yahooSymbol(symbol)), from.Unix(), to.Unix(), g)
	if f.RelayURL != "" {
		return f.RelayURL + url.QueryEscape(u)
	}
	return u
}

func (f *YahooFetcher) FetchSeries(ctx context.Context, symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error) {
	u := f.chartURL(symbol, from, to, g)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: fmt.Errorf("yahoo fetch: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: fmt.Errorf("yahoo read body: %w", err)}
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Unknown tickers come back as 404 with a chart error; that is an empty result, not a transport fault.
		if decodeErr == nil && chart.Chart.Error != nil && chart.Chart.Error.Code == "Not Found" {
			return nil, &model.NoDataError{Symbol: symbol}
		}
		return nil, &model.TransportError{
			Symbol:     symbol,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("yahoo: %s", snippet(body)),
		}
	}
	if decodeErr != nil {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "yahoo decode", Err: decodeErr}
	}
	if chart.Chart.Error != nil {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "yahoo api error: " + chart.Chart.Error.Description}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "missing chart result"}
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, &model.NoDataError{Symbol: symbol}
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "missing quote indicators"}
	}

	s, err := buildSeries(symbol, g, result.Timestamp, result.Indicators.Quote[0].Close)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] yahoo: %s %s %d points (%d with close)", symbol, g, len(s.Points), s.ValidCount())
	return s, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
