package model

import (
	"context"
	"errors"
	"fmt"
)

// TransportError means the provider could not be reached or answered non-2xx.
// Callers may retry; the core never does.
type TransportError struct {
	Symbol     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error for %s: status %d: %v", e.Symbol, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error for %s: %v", e.Symbol, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DataFormatError means the response did not have the expected series shape.
type DataFormatError struct {
	Symbol string
	Reason string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid data format for %s: %s: %v", e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid data format for %s: %s", e.Symbol, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// NoDataError is a well-formed but empty series.
type NoDataError struct {
	Symbol string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no price data available for %s", e.Symbol)
}

// EmptyOverlapError means both series were fetched but share no usable timestamp.
type EmptyOverlapError struct {
	Numerator   string
	Denominator string
}

func (e *EmptyOverlapError) Error() string {
	return fmt.Sprintf("no overlapping data for %s/%s", e.Numerator, e.Denominator)
}

// ErrInvalidRequest wraps host input validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// ErrStale is returned when a newer request superseded this one.
var ErrStale = errors.New("request superseded by a newer one")

// ErrorKind classifies err for status codes, metrics and messages.
func ErrorKind(err error) string {
	var (
		te *TransportError
		fe *DataFormatError
		ne *NoDataError
		oe *EmptyOverlapError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStale):
		return "stale"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.As(err, &fe):
		return "format"
	case errors.As(err, &ne):
		return "no_data"
	case errors.As(err, &oe):
		return "empty_overlap"
	case errors.As(err, &te), errors.Is(err, context.DeadlineExceeded):
		return "transport"
	default:
		return "internal"
	}
}
