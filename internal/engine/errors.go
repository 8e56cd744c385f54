package engine

import (
	"errors"
	"fmt"
)

// Domain errors for evolution operations.
var (
	// ErrInvalidInput indicates a non-finite value or unrecognized calculation type.
	ErrInvalidInput = errors.New("engine: invalid input")

	// ErrNumericOverflow indicates the evolution produced NaN or Inf mid-run.
	ErrNumericOverflow = errors.New("engine: numeric overflow (NaN or Inf detected)")

	// ErrInsufficientData indicates a series shorter than the required window.
	ErrInsufficientData = errors.New("engine: insufficient data for analysis window")
)

// EvolutionError wraps an error with the step at which it occurred.
type EvolutionError struct {
	Step    int
	Wrapped error
}

func (e *EvolutionError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Wrapped.Error())
}

func (e *EvolutionError) Unwrap() error {
	return e.Wrapped
}
