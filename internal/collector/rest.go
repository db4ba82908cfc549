package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"RatioChart/internal/model"
)

// RESTFetcher implements Fetcher against a generic series REST API:
//
//	GET {base}/v1/series?symbol=&period1=&period2=&interval=
//	{"result":[{"timestamp":[...],"closes":[...]}]}
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restResponse is the expected JSON shape from the series API.
type restResponse struct {
	Result []struct {
		Timestamp []int64      `json:"timestamp"`
		Closes    []null.Float `json:"closes"`
	} `json:"result"`
	Error string `json:"error"`
}

func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol string, from, to time.Time, g model.Granularity) (*model.RawSeries, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period1", fmt.Sprint(from.Unix()))
	q.Set("period2", fmt.Sprint(to.Unix()))
	q.Set("interval", string(g))
	endpoint := f.BaseURL + "/v1/series?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: err}
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &model.TransportError{Symbol: symbol, Err: fmt.Errorf("fetch series: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &model.TransportError{
			Symbol:     symbol,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("fetch series: %s", snippet(body)),
		}
	}

	var rr restResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "decode series", Err: err}
	}
	if rr.Error != "" {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "provider error: " + rr.Error}
	}
	if rr.Result == nil {
		return nil, &model.DataFormatError{Symbol: symbol, Reason: "missing result"}
	}
	if len(rr.Result) == 0 {
		return nil, &model.NoDataError{Symbol: symbol}
	}
	return buildSeries(symbol, g, rr.Result[0].Timestamp, rr.Result[0].Closes)
}
