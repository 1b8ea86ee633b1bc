package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; the typed errors below carry detail.
var (
	ErrFetchFailure         = errors.New("fetch failure")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FetchError reports a resource that could not be retrieved or decoded.
type FetchError struct {
	Resource string
	Status   int    // HTTP status, 0 when the request never completed
	Detail   string // status text or decoder message
	Err      error
}

func (e *FetchError) Error() string {
	msg := "Failed to load data"
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Resource != "" {
		msg += " (" + e.Resource + ")"
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetchFailure, e.Err}
	}
	return []error{ErrFetchFailure}
}

// ShapeError reports a series whose values do not line up with the categories.
type ShapeError struct {
	Series string
	Got    int
	Want   int
	Index  int
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		if e.Reason == "missing value" {
			return fmt.Sprintf("series %q: missing value at index %d", e.Series, e.Index)
		}
		return fmt.Sprintf("series %q: %s", e.Series, e.Reason)
	}
	return fmt.Sprintf("series %q has %d values, want %d", e.Series, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// ConfigError reports an unusable chart or application option.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }
