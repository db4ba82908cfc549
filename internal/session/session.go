// Package session owns the current render state of one chart view.
//
// A Session replaces the single long-lived chart handle of a page: every
// Refresh starts a new generation, cancels whatever the previous generation
// still has in flight, and only commits its result if no newer generation has
// started meanwhile (last request wins). Committed charts are never mutated.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"RatioChart/internal/model"
	"RatioChart/internal/recorder"
)

var refreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ratiochart_session_refresh_total",
		Help: "Session refreshes by outcome",
	},
	[]string{"outcome"},
)

// Collector produces a chart for a request.
type Collector interface {
	Collect(ctx context.Context, req model.Request) (*model.RatioChart, error)
}

// Outcome describes the last committed refresh.
type Outcome struct {
	Generation uint64        `json:"generation"`
	Source     string        `json:"source"`
	Pair       model.Pair    `json:"pair"`
	Kind       string        `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	At         time.Time     `json:"at"`
	Duration   time.Duration `json:"duration"`
}

// Session tracks the request generation and the latest committed chart.
type Session struct {
	collector Collector
	recorder  recorder.Recorder

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *model.RatioChart
	last       *Outcome
}

// New creates a Session. rec may be nil.
func New(c Collector, rec recorder.Recorder) *Session {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Session{collector: c, recorder: rec}
}

// Refresh runs req as the newest generation. If a newer Refresh starts before
// this one finishes, this one is cancelled and returns model.ErrStale without
// touching the current chart.
func (s *Session) Refresh(ctx context.Context, source string, req model.Request) (*model.RatioChart, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	chart, err := s.collector.Collect(runCtx, req)
	elapsed := time.Since(start)

	s.mu.Lock()
	if gen != s.generation {
		current := s.generation
		s.mu.Unlock()
		refreshTotal.WithLabelValues("stale").Inc()
		log.Printf("[INFO] discarding stale refresh generation %d (current %d)", gen, current)
		return nil, fmt.Errorf("generation %d: %w", gen, model.ErrStale)
	}
	s.cancel = nil

	req = req.Normalize()
	out := &Outcome{
		Generation: gen,
		Source:     source,
		Pair:       req.Pair(),
		Kind:       "ok",
		At:         time.Now(),
		Duration:   elapsed,
	}
	if err != nil {
		out.Kind = model.ErrorKind(err)
		out.Error = err.Error()
	} else {
		s.current = chart
	}
	s.last = out
	s.mu.Unlock()

	refreshTotal.WithLabelValues(out.Kind).Inc()
	s.record(out, req, chart)
	if err != nil {
		log.Printf("[WARN] refresh %s (%s) failed: %v", out.Pair, source, err)
		return nil, err
	}
	return chart, nil
}

// Current returns the last committed chart, or nil before the first success.
func (s *Session) Current() *model.RatioChart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastOutcome returns a copy of the last committed outcome.
func (s *Session) LastOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

// Generation returns the number of refreshes started so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) record(out *Outcome, req model.Request, chart *model.RatioChart) {
	evt := &recorder.RefreshEvent{
		ID:          fmt.Sprintf("%d-%d", out.At.UnixNano(), out.Generation),
		At:          out.At,
		Source:      out.Source,
		Numerator:   out.Pair.Numerator,
		Denominator: out.Pair.Denominator,
		From:        req.From,
		To:          req.To,
		Outcome:     out.Kind,
		Error:       out.Error,
		Duration:    out.Duration,
	}
	if chart != nil {
		evt.ID = chart.ID
		evt.Granularity = string(chart.Granularity)
		evt.PointsAligned = chart.PointsAligned
		evt.Days = len(chart.Days)
		if p, ok := chart.LastRatio(); ok {
			evt.LastRatio = p.Ratio
		}
	}
	if err := s.recorder.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}
}
