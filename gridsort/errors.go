package gridsort

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDimension         = errors.New("dimension of square matrix must be positive")
	ErrNotDivisible      = errors.New("number of processes does not divide dimension of square matrix")
	ErrDimensionMismatch = errors.New("number of processes does not equal dimension of square matrix")
	ErrMatrixSize        = errors.New("initial matrix does not match the dimension")
	ErrNotSorted         = errors.New("matrix is not sorted")
	ErrPassLimit         = errors.New("matrix not sorted within the pass limit")
	ErrTransition        = errors.New("illegal state transition")
)

// ProtocolError reports a message that does not fit the pass the receiving
// rank is in.
type ProtocolError struct {
	Rank   int
	Step   Step
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rank %d: protocol violation in %s: %s", e.Rank, e.Step, e.Detail)
}
