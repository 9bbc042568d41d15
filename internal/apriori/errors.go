package apriori

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput reports malformed or empty transaction data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidParameter reports a threshold or option outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInternalConsistency reports a broken invariant, such as a subset of a
	// frequent itemset missing from the result. It always indicates a bug or
	// hand-built input, never a data problem.
	ErrInternalConsistency = errors.New("internal consistency violation")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func invalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternalConsistency, fmt.Sprintf(format, args...))
}

// validateThreshold checks that v lies in (0, 1].
func validateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return invalidParameter("%s must be in (0, 1], got %v", name, v)
	}
	return nil
}
