package evalcheck

import (
	"github.com/virtualpoly/towerproof/logger"
	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/sumcheck"
	"github.com/virtualpoly/towerproof/transcript"
	"github.com/virtualpoly/towerproof/witness"
)

// roundState tracks the driver's fixpoint loop: Seeded once the initial
// claims are dispatched, Reducing while rounds still produce new claims,
// Fixpoint when a round produces none.
type roundState uint8

const (
	stateSeeded roundState = iota
	stateReducing
	stateFixpoint
)

func (s roundState) String() string {
	switch s {
	case stateSeeded:
		return "seeded"
	case stateReducing:
		return "reducing"
	case stateFixpoint:
		return "fixpoint"
	default:
		return "unknown"
	}
}

// next advances the state given whether the last step produced new claims
func (s roundState) next(newClaims bool) roundState {
	switch s {
	case stateSeeded:
		return stateReducing
	case stateReducing:
		if newClaims {
			return stateReducing
		}
		return stateFixpoint
	default:
		return stateFixpoint
	}
}

// ProveOutput is the artifact of one driver run: the committed-leaf claims
// for the commitment-opening stage and the session cache, whose folded
// indicator tables that stage can reuse.
type ProveOutput struct {
	EvalClaims []Claim
	Memoized   *MemoizedData
}

// GreedyProve reduces the given claims all the way down to committed
// leaves. Each round drains the constraints the prover queued, discharges
// them through the sumcheck engine on the shared transcript, and feeds the
// reduced claims back in; the loop stops when a round produces nothing new.
// Every claim chases its oracle's inner handles, so the round count is
// bounded by the depth of the oracle graph.
func GreedyProve(
	oracles *oracle.MultilinearOracleSet,
	index *witness.Index,
	claims []Claim,
	switchover sumcheck.SwitchoverFn,
	t *transcript.Transcript,
) (*ProveOutput, error) {
	log := logger.Logger().With().Str("protocol", "evalcheck").Logger()

	prover := NewProver(oracles, index)
	if err := prover.Prove(claims); err != nil {
		return nil, err
	}

	state := stateSeeded.next(true)
	for round := 1; state == stateReducing; round++ {
		bivariate := prover.TakeNewBivariateSumchecksConstraints()
		mlechecks := prover.TakeNewMLEchecksConstraints()

		var newClaims []Claim
		if len(bivariate) > 0 {
			reduced, err := ProveBivariateSumchecksWithSwitchover(oracles, index, bivariate, t, switchover)
			if err != nil {
				return nil, err
			}
			newClaims = append(newClaims, reduced...)
		}
		for _, unit := range mlechecks {
			reduced, err := ProveMLECheckWithSwitchover(oracles, index, unit, prover.Memoized(), t, switchover)
			if err != nil {
				return nil, err
			}
			newClaims = append(newClaims, reduced...)
		}

		log.Debug().
			Int("round", round).
			Int("bivariate", len(bivariate)).
			Int("mlechecks", len(mlechecks)).
			Int("newClaims", len(newClaims)).
			Msg("reduction round")

		state = state.next(len(newClaims) > 0)
		if state == stateReducing {
			if err := prover.Prove(newClaims); err != nil {
				return nil, err
			}
		}
	}

	return &ProveOutput{
		EvalClaims: prover.CommittedEvalClaims(),
		Memoized:   prover.Memoized(),
	}, nil
}
