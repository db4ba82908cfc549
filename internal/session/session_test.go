package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RatioChart/internal/model"
	"RatioChart/internal/recorder"
)

type collectFunc func(ctx context.Context, req model.Request) (*model.RatioChart, error)

func (f collectFunc) Collect(ctx context.Context, req model.Request) (*model.RatioChart, error) {
	return f(ctx, req)
}

type memRecorder struct {
	mu     sync.Mutex
	events []recorder.RefreshEvent
}

func (m *memRecorder) RecordRefresh(evt *recorder.RefreshEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *evt)
	return nil
}

func (m *memRecorder) Recent(int) ([]recorder.RefreshEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recorder.RefreshEvent(nil), m.events...), nil
}

func (m *memRecorder) Close() error { return nil }

func chartFor(req model.Request) *model.RatioChart {
	return &model.RatioChart{ID: req.SymbolA + req.SymbolB, Pair: req.Pair()}
}

func req(a, b string) model.Request { return model.Request{SymbolA: a, SymbolB: b} }

func TestSession_LastRequestWins_CancelsInFlight(t *testing.T) {
	entered := make(chan struct{})
	c := collectFunc(func(ctx context.Context, r model.Request) (*model.RatioChart, error) {
		if r.SymbolA == "SLOW" {
			close(entered)
			<-ctx.Done()
			return nil, &model.TransportError{Symbol: r.SymbolA, Err: ctx.Err()}
		}
		return chartFor(r), nil
	})
	rec := &memRecorder{}
	s := New(c, rec)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), "test", req("SLOW", "B"))
		done <- err
	}()
	<-entered

	chart, err := s.Refresh(context.Background(), "test", req("FAST", "B"))
	require.NoError(t, err)
	assert.Equal(t, "FASTB", chart.ID)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, model.ErrStale)
		assert.Equal(t, "stale", model.ErrorKind(err))
	case <-time.After(2 * time.Second):
		t.Fatal("stale refresh was not cancelled")
	}

	assert.Same(t, chart, s.Current())
	assert.Equal(t, uint64(2), s.Generation())
	require.Len(t, rec.events, 1, "stale refreshes are not journaled")
	assert.Equal(t, "ok", rec.events[0].Outcome)
}

func TestSession_SlowResultIgnoringCancelIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c := collectFunc(func(ctx context.Context, r model.Request) (*model.RatioChart, error) {
		if r.SymbolA == "OLD" {
			close(entered)
			<-release
		}
		return chartFor(r), nil
	})
	s := New(c, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), "test", req("OLD", "B"))
		done <- err
	}()
	<-entered

	newer, err := s.Refresh(context.Background(), "test", req("NEW", "B"))
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, model.ErrStale)
	assert.Same(t, newer, s.Current())
}

func TestSession_FailureKeepsPreviousChart(t *testing.T) {
	fail := false
	c := collectFunc(func(ctx context.Context, r model.Request) (*model.RatioChart, error) {
		if fail {
			return nil, &model.EmptyOverlapError{Numerator: r.SymbolA, Denominator: r.SymbolB}
		}
		return chartFor(r), nil
	})
	rec := &memRecorder{}
	s := New(c, rec)

	first, err := s.Refresh(context.Background(), "test", req("A", "B"))
	require.NoError(t, err)

	fail = true
	_, err = s.Refresh(context.Background(), "schedule", req("A", "C"))
	var oe *model.EmptyOverlapError
	require.True(t, errors.As(err, &oe))

	assert.Same(t, first, s.Current())
	out, ok := s.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, "empty_overlap", out.Kind)
	assert.Equal(t, "schedule", out.Source)
	assert.Equal(t, model.Pair{Numerator: "A", Denominator: "C"}, out.Pair)
	require.Len(t, rec.events, 2)
	assert.Equal(t, "empty_overlap", rec.events[1].Outcome)
}

func TestSession_EmptyBeforeFirstRefresh(t *testing.T) {
	s := New(collectFunc(func(context.Context, model.Request) (*model.RatioChart, error) { return nil, nil }), nil)
	assert.Nil(t, s.Current())
	_, ok := s.LastOutcome()
	assert.False(t, ok)
}
