// Package evalcheck reduces evaluation claims on virtual multilinear oracles
// to claims on the committed leaves backing them. The Prover dispatches each
// claim on its oracle's kind, emitting sumcheck constraints for composite
// oracles and direct child claims for the structural kinds; the greedy
// driver discharges the emitted constraints round by round until only
// committed-leaf claims remain.
package evalcheck

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/sumcheck"
)

// A Claim asserts that the oracle evaluates to Eval at EvalPoint. Claims are
// algebraic facts: created by a producer step, consumed by exactly one
// reduction step, never mutated.
type Claim struct {
	OracleID  oracle.OracleId
	EvalPoint []fr.Element
	Eval      fr.Element
}

// ClaimShapeError reports a claim whose point length does not match its
// oracle's variable count
type ClaimShapeError struct {
	ID       oracle.OracleId
	Expected int
	Actual   int
}

func (e *ClaimShapeError) Error() string {
	return fmt.Sprintf("claim on oracle %d must have a point of length %d, got %d", e.ID, e.Expected, e.Actual)
}

// ConstraintSetEqIndPoint is the unit of work handed to the MLE-check
// reduction: a constraint set together with the equality indicator's binding
// point.
type ConstraintSetEqIndPoint struct {
	EqIndChallenges []fr.Element
	ConstraintSet   sumcheck.ConstraintSet
}
