package model

import (
	"fmt"
	"strings"
	"time"
)

// Request is the host input for one render cycle. From is inclusive, To exclusive.
type Request struct {
	SymbolA string
	SymbolB string
	Order   RatioOrder
	From    time.Time
	To      time.Time
}

// Normalize trims and upper-cases the symbols.
func (r Request) Normalize() Request {
	r.SymbolA = strings.ToUpper(strings.TrimSpace(r.SymbolA))
	r.SymbolB = strings.ToUpper(strings.TrimSpace(r.SymbolB))
	if r.Order == "" {
		r.Order = OrderAOverB
	}
	return r
}

// Validate checks the symbols only. A reversed range is accepted and handled by interval selection.
func (r Request) Validate() error {
	if r.SymbolA == "" || r.SymbolB == "" {
		return fmt.Errorf("%w: both symbols are required", ErrInvalidRequest)
	}
	if r.SymbolA == r.SymbolB {
		return fmt.Errorf("%w: symbols must differ", ErrInvalidRequest)
	}
	if r.Order != OrderAOverB && r.Order != OrderBOverA {
		return fmt.Errorf("%w: unknown order %q", ErrInvalidRequest, r.Order)
	}
	return nil
}

// Pair returns the oriented numerator/denominator pair.
func (r Request) Pair() Pair { return NewPair(r.SymbolA, r.SymbolB, r.Order) }
