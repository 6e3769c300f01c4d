package oracle

import (
	"errors"
	"fmt"
)

// ErrCompositionMismatch signals that the number of inner oracles handed to a
// composite does not equal the arity of its composition polynomial.
var ErrCompositionMismatch = errors.New("composition size doesn't match the number of inner polynomials")

// ErrUnknownOracle signals a lookup with an id the set never issued.
var ErrUnknownOracle = errors.New("unknown oracle id")

// IncorrectNumberOfVariablesError reports a variable-count mismatch between a
// parent oracle and one of its constituents.
type IncorrectNumberOfVariablesError struct {
	Expected int
	Actual   int
}

func (e *IncorrectNumberOfVariablesError) Error() string {
	return fmt.Sprintf("incorrect number of variables, expected %d, got %d", e.Expected, e.Actual)
}

// InvalidShiftError reports an out-of-range shift offset or block size.
type InvalidShiftError struct {
	Offset    int
	BlockBits int
	NVars     int
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf(
		"invalid shift: offset %d must be in (0, 2^%d] and block bits %d must not exceed %d variables",
		e.Offset, e.BlockBits, e.BlockBits, e.NVars,
	)
}

// InvalidQueryLengthError reports a composition queried with the wrong number
// of values.
type InvalidQueryLengthError struct {
	Expected int
	Actual   int
}

func (e *InvalidQueryLengthError) Error() string {
	return fmt.Sprintf("invalid query length, composition takes %d values, got %d", e.Expected, e.Actual)
}
