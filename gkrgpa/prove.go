package gkrgpa

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/evalcheck"
	"github.com/virtualpoly/towerproof/logger"
	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
	"github.com/virtualpoly/towerproof/sumcheck"
	"github.com/virtualpoly/towerproof/transcript"
)

// LayerClaim is an evaluation claim on one witness's raw value table,
// produced by the final layer reduction
type LayerClaim struct {
	EvalPoint []fr.Element
	Eval      fr.Element
}

// BatchProve reduces a batch of grand product claims to one evaluation claim
// per witness on its raw table. All instances must share the same variable
// count; the claims must match their witnesses' actual products, and a
// mismatch anywhere aborts the whole batch.
//
// The protocol descends the product tree one layer at a time. Each layer
// relates a block product to its two halves, so the current claims reduce
// through a batched sumcheck over the composition eq * left * right: one
// batching coefficient per layer mixes the instances, the round challenges
// are shared across them, and a final mixing challenge folds the left/right
// pair into the next layer's claim. order selects which end of the point the
// rounds bind first; prover and verifier must agree on it.
func BatchProve(
	order sumcheck.EvaluationOrder,
	witnesses []*GrandProductWitness,
	claims []GrandProductClaim,
	t *transcript.Transcript,
) ([]LayerClaim, error) {
	if len(witnesses) != len(claims) {
		return nil, ErrMismatchedClaims
	}
	if len(witnesses) == 0 {
		return nil, nil
	}

	nVars := witnesses[0].NVars()
	for j := range witnesses {
		if witnesses[j].NVars() != nVars {
			return nil, &oracle.IncorrectNumberOfVariablesError{Expected: nVars, Actual: witnesses[j].NVars()}
		}
		if claims[j].NVars != nVars {
			return nil, &oracle.IncorrectNumberOfVariablesError{Expected: nVars, Actual: claims[j].NVars}
		}
		product := witnesses[j].GrandProductEvaluation()
		if !claims[j].Product.Equal(&product) {
			return nil, &ProductMismatchError{Index: j}
		}
	}

	log := logger.Logger().With().Str("protocol", "gkrgpa").Logger()
	log.Debug().Int("nVars", nVars).Int("claims", len(claims)).Stringer("order", order).Msg("batch prove")

	var point []fr.Element
	values := make([]fr.Element, len(witnesses))
	for j := range values {
		// a zero-variable tree has no layers to descend, so the output claim
		// is the product itself; the loop overwrites this otherwise
		values[j] = claims[j].Product
	}

	for layer := nVars; layer >= 1; layer-- {
		k := nVars - layer

		// each instance's current layer value at z is
		// Σ_x eq(point, x) left(x) right(x) over the layer below
		eq := polynomial.FoldedEqTable(point)
		left := make([]polynomial.MultiLin, len(witnesses))
		right := make([]polynomial.MultiLin, len(witnesses))
		for j := range witnesses {
			below := witnesses[j].layers[layer-1]
			left[j] = make(polynomial.MultiLin, 1<<k)
			right[j] = make(polynomial.MultiLin, 1<<k)
			for i := range left[j] {
				left[j][i] = below[2*i]
				right[j][i] = below[2*i+1]
			}
		}

		var batchCoeff fr.Element
		batchCoeff.SetOne()
		if len(witnesses) > 1 {
			batchCoeff = t.Challenge()
		}

		challenges := layerSumcheck(order, eq, left, right, batchCoeff, k, t)

		// the final evaluations of each instance's pair, then the mixing
		// challenge binding the layer's extra variable
		for j := range witnesses {
			t.WriteElements(left[j][0], right[j][0])
		}
		mu := t.Challenge()

		point = append(challenges, mu)
		for j := range witnesses {
			var delta fr.Element
			delta.Sub(&right[j][0], &left[j][0])
			delta.Mul(&delta, &mu)
			values[j].Add(&left[j][0], &delta)
		}
	}

	out := make([]LayerClaim, len(witnesses))
	for j := range out {
		out[j] = LayerClaim{
			EvalPoint: append([]fr.Element{}, point...),
			Eval:      values[j],
		}
	}
	return out, nil
}

// layerSumcheck runs the k rounds of one layer reduction, folding eq and the
// instance pairs in place. It returns the bound point in coordinate order.
func layerSumcheck(
	order sumcheck.EvaluationOrder,
	eq polynomial.MultiLin,
	left, right []polynomial.MultiLin,
	batchCoeff fr.Element,
	k int,
	t *transcript.Transcript,
) []fr.Element {
	// eq * left * right has degree 3 in the bound variable
	const nEvals = 4

	challenges := make([]fr.Element, 0, k)
	lVal := make([]fr.Element, len(left))
	lStep := make([]fr.Element, len(left))
	rVal := make([]fr.Element, len(left))
	rStep := make([]fr.Element, len(left))
	var eqVal, eqStep, acc, prod fr.Element

	for round := 0; round < k; round++ {
		mid := 1 << (k - round - 1)

		var roundEvals [nEvals]fr.Element
		for i := 0; i < mid; i++ {
			// the value at sample point x is v0 + x (v1 - v0); walk the
			// points by repeated increments
			eq0, eq1 := samplePair(order, eq, i, mid)
			eqVal = eq0
			eqStep.Sub(&eq1, &eq0)
			for j := range left {
				v0, v1 := samplePair(order, left[j], i, mid)
				lVal[j] = v0
				lStep[j].Sub(&v1, &v0)
				v0, v1 = samplePair(order, right[j], i, mid)
				rVal[j] = v0
				rStep[j].Sub(&v1, &v0)
			}

			for x := 0; x < nEvals; x++ {
				if x > 0 {
					eqVal.Add(&eqVal, &eqStep)
					for j := range left {
						lVal[j].Add(&lVal[j], &lStep[j])
						rVal[j].Add(&rVal[j], &rStep[j])
					}
				}
				acc.SetZero()
				coeff := fr.One()
				for j := range left {
					prod.Mul(&lVal[j], &rVal[j])
					prod.Mul(&prod, &coeff)
					acc.Add(&acc, &prod)
					coeff.Mul(&coeff, &batchCoeff)
				}
				acc.Mul(&acc, &eqVal)
				roundEvals[x].Add(&roundEvals[x], &acc)
			}
		}

		coeffs := polynomial.InterpolateOnRange(roundEvals[:])
		t.WriteElements(coeffs...)
		r := t.Challenge()

		foldSample(order, &eq, r)
		for j := range left {
			foldSample(order, &left[j], r)
			foldSample(order, &right[j], r)
		}
		challenges = append(challenges, r)
	}

	if order == sumcheck.LowToHigh {
		// rounds bound the last coordinate first
		for i, j := 0, len(challenges)-1; i < j; i, j = i+1, j-1 {
			challenges[i], challenges[j] = challenges[j], challenges[i]
		}
	}
	return challenges
}

// samplePair returns the two table entries the current round interpolates
// between at position i: halves for high-to-low, adjacent pairs for
// low-to-high.
func samplePair(order sumcheck.EvaluationOrder, table polynomial.MultiLin, i, mid int) (fr.Element, fr.Element) {
	if order == sumcheck.HighToLow {
		return table[i], table[mid+i]
	}
	return table[2*i], table[2*i+1]
}

func foldSample(order sumcheck.EvaluationOrder, table *polynomial.MultiLin, r fr.Element) {
	if order == sumcheck.HighToLow {
		table.Fold(r)
	} else {
		table.FoldLow(r)
	}
}

// MakeEvalClaims pairs the layer claims produced by BatchProve with the
// oracle handles of the underlying tables, yielding ordinary evaluation
// claims for the evalcheck stage.
func MakeEvalClaims(ids []oracle.OracleId, layerClaims []LayerClaim) ([]evalcheck.Claim, error) {
	if len(ids) != len(layerClaims) {
		return nil, ErrMismatchedClaims
	}
	claims := make([]evalcheck.Claim, len(ids))
	for j := range ids {
		claims[j] = evalcheck.Claim{
			OracleID:  ids[j],
			EvalPoint: layerClaims[j].EvalPoint,
			Eval:      layerClaims[j].Eval,
		}
	}
	return claims, nil
}
