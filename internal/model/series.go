package model

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"
)

// Granularity is the sampling interval of a price series.
type Granularity string

const (
	FiveMin   Granularity = "5m"
	ThirtyMin Granularity = "30m"
	OneHour   Granularity = "1h"
	OneDay    Granularity = "1d"
)

// ParseGranularity accepts the provider interval strings.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case FiveMin, ThirtyMin, OneHour, OneDay:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// TimeUnit is the x-axis unit hint handed to the renderer.
func (g Granularity) TimeUnit() string {
	switch g {
	case FiveMin, ThirtyMin:
		return "hour"
	default:
		return "day"
	}
}

// PricePoint is one provider sample. An invalid Close means no trade was recorded.
type PricePoint struct {
	Timestamp int64 // epoch seconds
	Close     null.Float
}

// RawSeries is the validated close series for one symbol, in source order.
type RawSeries struct {
	Symbol      string
	Granularity Granularity
	Points      []PricePoint
}

// ValidCount returns how many points carry a present close.
func (s *RawSeries) ValidCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.Points {
		if p.Close.Valid {
			n++
		}
	}
	return n
}

// RatioOrder selects which of the two input symbols is the numerator.
type RatioOrder string

const (
	OrderAOverB RatioOrder = "a/b"
	OrderBOverA RatioOrder = "b/a"
)

// ParseRatioOrder defaults to a/b for an empty string.
func ParseRatioOrder(s string) (RatioOrder, error) {
	switch o := RatioOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderAOverB, nil
	case OrderAOverB, OrderBOverA:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ratio order %q (want a/b or b/a)", s)
	}
}

// Pair names the numerator and denominator of the ratio explicitly.
type Pair struct {
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
}

// NewPair orients symbolA and symbolB according to order.
func NewPair(symbolA, symbolB string, order RatioOrder) Pair {
	if order == OrderBOverA {
		return Pair{Numerator: symbolB, Denominator: symbolA}
	}
	return Pair{Numerator: symbolA, Denominator: symbolB}
}

func (p Pair) String() string { return p.Numerator + "/" + p.Denominator }
