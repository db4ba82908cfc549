package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatioChart/internal/calculator"
	"RatioChart/internal/collector"
	"RatioChart/internal/model"
	"RatioChart/internal/prefs"
	"RatioChart/internal/recorder"
	"RatioChart/internal/session"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, rec recorder.Recorder) (*Scheduler, *fakeSender) {
	t.Helper()
	col := collector.NewCollector(fetcher, time.UTC)
	sess := session.New(col, rec)
	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.json"), prefs.Prefs{SymbolA: "TSLA", SymbolB: "MSTR"})
	require.NoError(t, err)

	sender := &fakeSender{}
	s := NewScheduler(context.Background(), sess, store, sender, rec, time.UTC, calculator.Range7Days)
	s.Now = func() time.Time { return time.Date(2024, 3, 8, 21, 0, 0, 0, time.UTC) }
	return s, sender
}

func TestRunNow_SuccessIsSilent(t *testing.T) {
	s, sender := newTestScheduler(t, &collector.MockFetcher{}, nil)

	s.RunNow()

	chart := s.Session.Current()
	require.NotNil(t, chart)
	assert.Equal(t, "TSLA/MSTR Price Ratio", chart.Title)
	assert.Equal(t, model.FiveMin, chart.Granularity)
	assert.Empty(t, sender.sent())
}

func TestRunNow_FailureIsReported(t *testing.T) {
	fetcher := &collector.MockFetcher{Errors: map[string]error{
		"MSTR": &model.TransportError{Symbol: "MSTR", StatusCode: 503, Err: errors.New("unavailable")},
	}}
	s, sender := newTestScheduler(t, fetcher, nil)

	s.RunNow()

	assert.Nil(t, s.Session.Current())
	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "TSLA/MSTR")
	assert.Contains(t, msgs[0], "数据源暂时不可用")
}

func TestHandleCommand_PairThenRatio(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{}, nil)
	ctx := context.Background()

	assert.Equal(t, "✅ 已切换到 AMD/NVDA", s.HandleCommand(ctx, "/pair nvda amd b/a"))

	reply := s.HandleCommand(ctx, "/ratio@RatioChartBot 1month")
	assert.Contains(t, reply, "AMD/NVDA Price Ratio")
	assert.Contains(t, reply, "(30m)")
}

func TestHandleCommand_Errors(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{}, nil)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/pair TSLA"), "用法")
	assert.Contains(t, s.HandleCommand(ctx, "/pair TSLA tsla"), "请求无效")
	assert.Contains(t, s.HandleCommand(ctx, "/pair TSLA MSTR sideways"), "unknown ratio order")
	assert.Contains(t, s.HandleCommand(ctx, "/ratio custom"), "HTTP")
	assert.Contains(t, s.HandleCommand(ctx, "/ratio yesterday"), "请求无效")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/ratio")
	assert.Equal(t, "TSLA", s.Prefs.Get().SymbolA)
}

func TestHandleCommand_StatusShowsHistory(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer rec.Close()

	s, _ := newTestScheduler(t, &collector.MockFetcher{}, rec)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/status"), "暂无刷新记录")

	s.RunNow()
	reply := s.HandleCommand(ctx, "/status")
	assert.Contains(t, reply, "当前组合: TSLA/MSTR")
	assert.Contains(t, reply, "TSLA/MSTR [schedule] ok")
}

func TestRegisterAll_RejectsBadCron(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{}, nil)
	assert.Error(t, s.RegisterAll("not a cron", "0 0 16 * * 1-5"))
	assert.True(t, s.NextRefresh().IsZero())
}

func TestRunNow_DoesNotSupersedeViewSession(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fetcher := &collector.MockFetcher{}
	view := session.New(collectFunc(func(ctx context.Context, r model.Request) (*model.RatioChart, error) {
		close(entered)
		<-release
		return collector.NewCollector(fetcher, time.UTC).Collect(ctx, r)
	}), nil)

	done := make(chan error, 1)
	go func() {
		_, err := view.Refresh(context.Background(), "http", model.Request{
			SymbolA: "NVDA", SymbolB: "AMD",
			From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		})
		done <- err
	}()
	<-entered

	s, _ := newTestScheduler(t, &collector.MockFetcher{}, nil)
	s.RunNow()
	require.NotNil(t, s.Session.Current())
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, "NVDA/AMD Price Ratio", view.Current().Title)
	assert.Equal(t, uint64(1), view.Generation())
}

type collectFunc func(ctx context.Context, req model.Request) (*model.RatioChart, error)

func (f collectFunc) Collect(ctx context.Context, req model.Request) (*model.RatioChart, error) {
	return f(ctx, req)
}
