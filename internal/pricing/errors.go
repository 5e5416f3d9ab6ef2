package pricing

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is wrapped by every precondition failure. Callers can
// match it with errors.Is to map pricing failures to user-facing responses.
var ErrInvalidParameter = errors.New("invalid parameter")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// PayoffError reports a caller-supplied payoff failing during simulation.
// It carries the path index and the terminal price that triggered the failure.
type PayoffError struct {
	Path     int
	Terminal float64
	Err      error
}

func (e *PayoffError) Error() string {
	return fmt.Sprintf("payoff evaluation failed on path %d (terminal price %g): %v", e.Path, e.Terminal, e.Err)
}

func (e *PayoffError) Unwrap() error { return e.Err }
