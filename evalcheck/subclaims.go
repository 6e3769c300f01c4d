package evalcheck

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/sumcheck"
	"github.com/virtualpoly/towerproof/transcript"
	"github.com/virtualpoly/towerproof/witness"
)

// ProveBivariateSumchecksWithSwitchover discharges a batch of plain sumcheck
// constraint sets, one sub-proof per set in order, and returns the reduced
// claims on each set's oracle columns.
func ProveBivariateSumchecksWithSwitchover(
	oracles *oracle.MultilinearOracleSet,
	index *witness.Index,
	sets []sumcheck.ConstraintSet,
	t *transcript.Transcript,
	switchover sumcheck.SwitchoverFn,
) ([]Claim, error) {
	var claims []Claim
	for _, set := range sets {
		challenges, evals, err := sumcheck.Prove(oracles, index, set, nil, nil, t, switchover)
		if err != nil {
			return nil, err
		}
		claims = append(claims, reducedClaims(set.OracleIds, challenges, evals)...)
	}
	return claims, nil
}

// ProveMLECheckWithSwitchover discharges one MLE-check batch: a sumcheck
// weighted by the equality indicator at the batch's binding point, with the
// indicator expansion served from the session cache.
func ProveMLECheckWithSwitchover(
	oracles *oracle.MultilinearOracleSet,
	index *witness.Index,
	unit ConstraintSetEqIndPoint,
	memoized *MemoizedData,
	t *transcript.Transcript,
	switchover sumcheck.SwitchoverFn,
) ([]Claim, error) {
	challenges, evals, err := sumcheck.Prove(
		oracles, index, unit.ConstraintSet, unit.EqIndChallenges, memoized, t, switchover)
	if err != nil {
		return nil, err
	}
	return reducedClaims(unit.ConstraintSet.OracleIds, challenges, evals), nil
}

func reducedClaims(ids []oracle.OracleId, challenges, evals []fr.Element) []Claim {
	claims := make([]Claim, len(ids))
	for i, id := range ids {
		claims[i] = Claim{OracleID: id, EvalPoint: challenges, Eval: evals[i]}
	}
	return claims
}
