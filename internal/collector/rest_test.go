package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatioChart/internal/model"
)

func TestRESTFetcher_FetchSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/series", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "MSTR", q.Get("symbol"))
		assert.Equal(t, "30m", q.Get("interval"))
		assert.Equal(t, "1704067200", q.Get("period1"))
		_, _ = w.Write([]byte(`{"result":[{"timestamp":[100,200],"closes":[null,3.5]}]}`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "")
	s, err := f.FetchSeries(context.Background(), "MSTR", testFrom, testTo, model.ThirtyMin)
	require.NoError(t, err)
	require.Len(t, s.Points, 2)
	assert.False(t, s.Points[0].Close.Valid)
	assert.Equal(t, 3.5, s.Points[1].Close.Float64)
	assert.Equal(t, model.ThirtyMin, s.Granularity)
}

func TestRESTFetcher_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, "transport"},
		{"garbage", http.StatusOK, `[1,2`, "format"},
		{"provider error", http.StatusOK, `{"error":"unsupported interval"}`, "format"},
		{"missing result", http.StatusOK, `{}`, "format"},
		{"empty result", http.StatusOK, `{"result":[]}`, "no_data"},
		{"empty series", http.StatusOK, `{"result":[{"timestamp":[],"closes":[]}]}`, "no_data"},
		{"mismatch", http.StatusOK, `{"result":[{"timestamp":[1,2,3],"closes":[1,2]}]}`, "format"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			_, err := NewRESTFetcher(srv.URL, "", "").FetchSeries(context.Background(), "X", testFrom, testTo, model.FiveMin)
			require.Error(t, err)
			assert.Equal(t, c.kind, model.ErrorKind(err), err.Error())
		})
	}
}

func TestRESTFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRESTFetcher(url, "", "").FetchSeries(context.Background(), "X", testFrom, testTo, model.FiveMin)
	require.Error(t, err)
	assert.Equal(t, "transport", model.ErrorKind(err))
}
