package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"RatioChart/internal/model"
)

// GuardConfig tunes the provider guard.
type GuardConfig struct {
	RequestsPerSecond float64
	Burst             int
	BreakerFailures   uint32        // consecutive transport failures before opening
	BreakerTimeout    time.Duration // open duration before a half-open probe
}

// Guard wraps a Fetcher with a token-bucket limit, a circuit breaker and metrics.
// It never retries; a rejected call surfaces as a TransportError.
type Guard struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard decorates next. Zero config values fall back to conservative defaults.
func NewGuard(next Fetcher, cfg GuardConfig) *Guard {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	name := next.Name()
	g := &Guard{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[WARN] provider %s breaker: %s -> %s", name, from, to)
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	breakerState.WithLabelValues(name).Set(0)
	return g
}

func (g *Guard) Name() string { return g.next.Name() }

func (g *Guard) FetchSeries(ctx context.Context, symbol string, from, to time.Time, gran model.Granularity) (*model.RawSeries, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, g.fail(&model.TransportError{Symbol: symbol, Err: fmt.Errorf("rate limit: %w", err)})
	}

	start := time.Now()
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchSeries(ctx, symbol, from, to, gran)
	})
	fetchDuration.WithLabelValues(g.Name(), string(gran)).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, g.fail(&model.TransportError{Symbol: symbol, Err: fmt.Errorf("provider %s unavailable: %w", g.Name(), err)})
	}
	if err != nil {
		return nil, g.fail(err)
	}
	return res.(*model.RawSeries), nil
}

func (g *Guard) fail(err error) error {
	fetchErrors.WithLabelValues(g.Name(), model.ErrorKind(err)).Inc()
	return err
}

// countsAsSuccess keeps empty or malformed answers and cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var te *model.TransportError
	return !errors.As(err, &te)
}
