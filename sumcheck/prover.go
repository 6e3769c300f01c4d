package sumcheck

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
	"github.com/virtualpoly/towerproof/transcript"
	"github.com/virtualpoly/towerproof/witness"
)

// Prove runs one sumcheck reduction over a constraint set. When eqPoint is
// nil the constraints are plain hypercube sums; when eqPoint is non-nil the
// run has MLE-check semantics: every constraint is weighted by the equality
// indicator bound at eqPoint, and the constraint sums are the claimed
// evaluations at that point. eqSrc, when non-nil, supplies cached equality
// expansions.
//
// The prover writes each round polynomial's coefficients and the final
// oracle-column evaluations to the transcript, deriving one challenge per
// round. It returns the reduced evaluation point (the challenges, in
// variable order) and the final evaluation of each oracle column, from which
// the caller forms child evaluation claims.
func Prove(
	oracles *oracle.MultilinearOracleSet,
	index *witness.Index,
	set ConstraintSet,
	eqPoint []fr.Element,
	eqSrc EqTableSource,
	t *transcript.Transcript,
	switchover SwitchoverFn,
) (challenges, evals []fr.Element, err error) {
	if len(set.Constraints) == 0 {
		return nil, nil, ErrNoConstraints
	}
	if eqPoint != nil && len(eqPoint) != set.NVars {
		return nil, nil, &oracle.IncorrectNumberOfVariablesError{Expected: set.NVars, Actual: len(eqPoint)}
	}

	size := 1 << set.NVars

	// assemble the columns: named oracles first, then transparent tables
	columns := make([]column, 0, len(set.OracleIds)+len(set.Transparent))
	for _, id := range set.OracleIds {
		table, err := index.MultiLin(id)
		if err != nil {
			return nil, nil, err
		}
		if len(table) != size {
			return nil, nil, &ColumnLengthError{Column: len(columns), Expected: size, Actual: len(table)}
		}
		columns = append(columns, newColumn(table, switchover(set.NVars)))
	}
	for _, table := range set.Transparent {
		if len(table) != size {
			return nil, nil, &ColumnLengthError{Column: len(columns), Expected: size, Actual: len(table)}
		}
		// transparent tables are cheap to fold from the start
		columns = append(columns, newColumn(table, 0))
	}

	var eq column
	hasEq := eqPoint != nil
	if hasEq {
		var eqTable polynomial.MultiLin
		if eqSrc != nil {
			eqTable = eqSrc.EqExpansion(eqPoint)
		} else {
			eqTable = polynomial.FoldedEqTable(eqPoint)
		}
		eq = newColumn(eqTable, 0)
	}

	// one batching coefficient mixes all constraints of the set
	var batchCoeff fr.Element
	batchCoeff.SetOne()
	if len(set.Constraints) > 1 {
		batchCoeff = t.Challenge()
	}

	maxDegree := 0
	for i := range set.Constraints {
		maxDegree = max(maxDegree, set.Constraints[i].Composition.Degree())
	}
	nEvals := maxDegree + 1
	if hasEq {
		nEvals++
	}

	challenges = make([]fr.Element, 0, set.NVars)
	tensor := polynomial.MultiLin{fr.One()}
	query := make([]fr.Element, len(columns))
	steps := make([]fr.Element, len(columns))

	for round := 0; round < set.NVars; round++ {
		mid := 1 << (set.NVars - round - 1)

		roundEvals := make([]fr.Element, nEvals)
		var eqStep, eqVal fr.Element
		var acc, term fr.Element
		for i := 0; i < mid; i++ {
			// the value of a column at sample point x is v0 + x (v1 - v0);
			// walk the points by repeated increments
			for c := range columns {
				v0, v1 := columns[c].pair(i, mid, tensor)
				query[c] = v0
				steps[c].Sub(&v1, &v0)
			}
			if hasEq {
				eqV0, eqV1 := eq.pair(i, mid, tensor)
				eqVal = eqV0
				eqStep.Sub(&eqV1, &eqV0)
			}
			for x := 0; x < nEvals; x++ {
				if x > 0 {
					for c := range columns {
						query[c].Add(&query[c], &steps[c])
					}
					if hasEq {
						eqVal.Add(&eqVal, &eqStep)
					}
				}
				acc.SetZero()
				coeff := fr.One()
				for j := range set.Constraints {
					v, err := set.Constraints[j].Composition.Evaluate(query)
					if err != nil {
						return nil, nil, err
					}
					term.Mul(&v, &coeff)
					acc.Add(&acc, &term)
					coeff.Mul(&coeff, &batchCoeff)
				}
				if hasEq {
					acc.Mul(&acc, &eqVal)
				}
				roundEvals[x].Add(&roundEvals[x], &acc)
			}
		}

		coeffs := polynomial.InterpolateOnRange(roundEvals)
		t.WriteElements(coeffs...)
		r := t.Challenge()

		for c := range columns {
			columns[c].fold(r, round, mid, tensor)
		}
		if hasEq {
			eq.fold(r, round, mid, tensor)
		}
		tensor = extendTensor(tensor, r)
		challenges = append(challenges, r)
	}

	evals = make([]fr.Element, len(set.OracleIds))
	for c := range evals {
		evals[c] = columns[c].final(tensor)
	}
	t.WriteElements(evals...)

	return challenges, evals, nil
}
