// Package sumcheck implements the prover side of the sumcheck protocol over
// constraint sets: batches of polynomial-identity constraints on named
// multilinear oracles, optionally weighted by an equality indicator
// (MLE-check). Each proof run writes its round polynomials and final
// evaluations to the Fiat-Shamir transcript and returns the reduced
// evaluation point together with the claimed values of the oracle columns.
package sumcheck

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
)

// EvaluationOrder selects which end of the tensor index convention a
// protocol folds first. It is a protocol parameter: prover and verifier must
// agree on it.
type EvaluationOrder uint8

const (
	LowToHigh EvaluationOrder = iota
	HighToLow
)

func (o EvaluationOrder) String() string {
	if o == LowToHigh {
		return "low-to-high"
	}
	return "high-to-low"
}

// SwitchoverFn maps a column's variable count to the round at which its fold
// representation switches from the original table weighted by the tensor of
// prior challenges to a materialized folded table. The engine threads it
// through without interpreting the value beyond that.
type SwitchoverFn func(nVars int) int

// StandardSwitchover switches halfway through the rounds
func StandardSwitchover(nVars int) int {
	return max(nVars/2, 1)
}

// A Constraint asserts that the given composition of the constraint set's
// columns sums to Sum over the hypercube (or, under MLE-check semantics,
// that its equality-weighted sum equals the claimed evaluation).
type Constraint struct {
	Name        string
	Composition oracle.Composition
	Sum         fr.Element
}

// A ConstraintSet is the unit of work handed to the reduction: constraints
// over a shared list of columns. The columns are the named oracles followed
// by the transparent tables; transparent columns are known to the verifier
// and produce no reduced claims.
type ConstraintSet struct {
	NVars       int
	OracleIds   []oracle.OracleId
	Transparent []polynomial.MultiLin
	Constraints []Constraint
}

// ErrNoConstraints signals an empty constraint set handed to the prover
var ErrNoConstraints = errors.New("constraint set contains no constraints")

// ColumnLengthError reports a column whose table does not match the
// constraint set's variable count
type ColumnLengthError struct {
	Column   int
	Expected int
	Actual   int
}

func (e *ColumnLengthError) Error() string {
	return fmt.Sprintf("column %d must have %d entries, got %d", e.Column, e.Expected, e.Actual)
}

// EqTableSource supplies (possibly cached) equality-indicator expansions of
// evaluation points. The evalcheck memoization cache implements it.
type EqTableSource interface {
	EqExpansion(point []fr.Element) polynomial.MultiLin
}
