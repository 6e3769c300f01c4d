package evalcheck

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
	"github.com/virtualpoly/towerproof/sumcheck"
	"github.com/virtualpoly/towerproof/witness"
)

// Prover is the claim-reduction state machine. It consumes evaluation
// claims, records claims on committed leaves, derives child claims for the
// structural virtual kinds, and queues sumcheck constraints for composite
// oracles. Queued constraints are drained by the round driver, discharged
// through the sumcheck engine, and their reduced claims fed back in.
type Prover struct {
	oracles  *oracle.MultilinearOracleSet
	index    *witness.Index
	memoized *MemoizedData

	committed        []Claim
	claimedCommitted *bitset.BitSet
	visited          map[evalKey]struct{}

	newBivariate    []sumcheck.ConstraintSet
	mlechecks       []*mlecheckBuilder
	mlecheckByPoint map[string]int
}

// NewProver returns a prover over the given oracle set and witness index
// with empty memoization. One prover serves one proving session.
func NewProver(oracles *oracle.MultilinearOracleSet, index *witness.Index) *Prover {
	return &Prover{
		oracles:          oracles,
		index:            index,
		memoized:         NewMemoizedData(),
		claimedCommitted: bitset.New(uint(oracles.NumOracles())),
		visited:          make(map[evalKey]struct{}),
		mlecheckByPoint:  make(map[string]int),
	}
}

// Memoized exposes the session cache, shared with the MLE-check reductions
func (p *Prover) Memoized() *MemoizedData { return p.memoized }

// Prove dispatches each claim on its oracle's kind. Claims on committed
// leaves are collected; claims on virtual oracles produce child claims or
// queued constraints. A claim already seen at the same point is skipped.
func (p *Prover) Prove(claims []Claim) error {
	for i := range claims {
		if err := p.proveClaim(claims[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prover) proveClaim(c Claim) error {
	o, err := p.oracles.Oracle(c.OracleID)
	if err != nil {
		return err
	}
	if len(c.EvalPoint) != o.NVars() {
		return &ClaimShapeError{ID: c.OracleID, Expected: o.NVars(), Actual: len(c.EvalPoint)}
	}

	key := evalKey{id: c.OracleID, point: pointKey(c.EvalPoint)}
	if _, seen := p.visited[key]; seen {
		return nil
	}
	p.visited[key] = struct{}{}

	switch o.Kind() {
	case oracle.KindCommitted:
		p.committed = append(p.committed, c)
		p.claimedCommitted.Set(uint(c.OracleID))
		return nil
	case oracle.KindComposite:
		p.queueMLECheck(c, o.Composite())
		return nil
	case oracle.KindShifted:
		p.queueShiftedSumcheck(c, o.Shifted(), o.NVars())
		return nil
	case oracle.KindPacked:
		return p.provePacked(c, o.Packed())
	case oracle.KindProjected:
		pr := o.Projected()
		point := append(append([]fr.Element{}, c.EvalPoint...), pr.Values()...)
		return p.proveClaim(Claim{OracleID: pr.Inner(), EvalPoint: point, Eval: c.Eval})
	case oracle.KindLinearCombination:
		return p.proveLinearCombination(c, o.LinearCombination())
	default:
		return oracle.ErrUnknownOracle
	}
}

// queueMLECheck adds the composite's identity at the claim's point to the
// pending MLE-check batch for that point, sharing one constraint set among
// all composites bound there.
func (p *Prover) queueMLECheck(c Claim, composite *oracle.CompositePolyOracle) {
	key := pointKey(c.EvalPoint)
	at, ok := p.mlecheckByPoint[key]
	if !ok {
		at = len(p.mlechecks)
		p.mlechecks = append(p.mlechecks, newMLECheckBuilder(c.EvalPoint))
		p.mlecheckByPoint[key] = at
	}
	p.mlechecks[at].add(c.OracleID, composite, c.Eval)
}

// queueShiftedSumcheck reduces a shifted claim to a bivariate sumcheck: the
// shifted oracle's value at the point is the inner table weighted by the
// permuted equality indicator, a transparent column the verifier can build
// itself.
func (p *Prover) queueShiftedSumcheck(c Claim, sh *oracle.Shifted, nVars int) {
	eqTable := p.memoized.EqExpansion(c.EvalPoint)
	indicator := make(polynomial.MultiLin, len(eqTable))
	for z := range indicator {
		indicator[sh.SourceIndex(z)] = eqTable[z]
	}

	p.newBivariate = append(p.newBivariate, sumcheck.ConstraintSet{
		NVars:       nVars,
		OracleIds:   []oracle.OracleId{sh.Inner()},
		Transparent: []polynomial.MultiLin{indicator},
		Constraints: []sumcheck.Constraint{{
			Name:        fmt.Sprintf("shifted-%d", c.OracleID),
			Composition: oracle.BilinearProduct(),
			Sum:         c.Eval,
		}},
	})
}

// provePacked splits a packed claim into one inner claim per slot of the
// packing block; the inner evaluations come from the witness through the
// session cache.
func (p *Prover) provePacked(c Claim, pk *oracle.Packed) error {
	logDegree := pk.LogDegree()
	for b := 0; b < 1<<logDegree; b++ {
		point := make([]fr.Element, len(c.EvalPoint), len(c.EvalPoint)+logDegree)
		copy(point, c.EvalPoint)
		// slot bits bind the inner oracle's last variables, high bit first
		for j := logDegree - 1; j >= 0; j-- {
			var bit fr.Element
			if b&(1<<j) != 0 {
				bit.SetOne()
			}
			point = append(point, bit)
		}

		eval, err := p.memoized.Evaluate(p.index, pk.Inner(), point)
		if err != nil {
			return err
		}
		if err := p.proveClaim(Claim{OracleID: pk.Inner(), EvalPoint: point, Eval: eval}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prover) proveLinearCombination(c Claim, lc *oracle.LinearCombination) error {
	for _, id := range lc.Inner() {
		eval, err := p.memoized.Evaluate(p.index, id, c.EvalPoint)
		if err != nil {
			return err
		}
		if err := p.proveClaim(Claim{OracleID: id, EvalPoint: c.EvalPoint, Eval: eval}); err != nil {
			return err
		}
	}
	return nil
}

// TakeNewBivariateSumchecksConstraints drains the pending bivariate
// sumcheck constraint sets. An empty result is the fixpoint signal, not an
// error.
func (p *Prover) TakeNewBivariateSumchecksConstraints() []sumcheck.ConstraintSet {
	out := p.newBivariate
	p.newBivariate = nil
	return out
}

// TakeNewMLEchecksConstraints drains the pending MLE-check batches, one per
// distinct binding point, in the order the points were first seen.
func (p *Prover) TakeNewMLEchecksConstraints() []ConstraintSetEqIndPoint {
	out := make([]ConstraintSetEqIndPoint, len(p.mlechecks))
	for i, b := range p.mlechecks {
		out[i] = b.build()
	}
	p.mlechecks = nil
	p.mlecheckByPoint = make(map[string]int)
	return out
}

// CommittedEvalClaims returns the committed-leaf claims collected so far
func (p *Prover) CommittedEvalClaims() []Claim {
	return p.committed
}

// CommittedOracles returns the set of committed oracle handles with at
// least one collected claim.
func (p *Prover) CommittedOracles() *bitset.BitSet {
	return p.claimedCommitted.Clone()
}

// mlecheckBuilder accumulates the composite constraints bound at one point
// into a single constraint set over the union of their inner oracles.
type mlecheckBuilder struct {
	point       []fr.Element
	ids         []oracle.OracleId
	pos         map[oracle.OracleId]int
	constraints []sumcheck.Constraint
}

func newMLECheckBuilder(point []fr.Element) *mlecheckBuilder {
	return &mlecheckBuilder{
		point: append([]fr.Element{}, point...),
		pos:   make(map[oracle.OracleId]int),
	}
}

func (b *mlecheckBuilder) add(id oracle.OracleId, composite *oracle.CompositePolyOracle, eval fr.Element) {
	inner := composite.InnerOracleIds()
	positions := make([]int, len(inner))
	for i, innerID := range inner {
		at, ok := b.pos[innerID]
		if !ok {
			at = len(b.ids)
			b.ids = append(b.ids, innerID)
			b.pos[innerID] = at
		}
		positions[i] = at
	}

	b.constraints = append(b.constraints, sumcheck.Constraint{
		Name:        fmt.Sprintf("composite-%d", id),
		Composition: &mappedComposition{inner: composite.Composition(), positions: positions},
		Sum:         eval,
	})
}

func (b *mlecheckBuilder) build() ConstraintSetEqIndPoint {
	return ConstraintSetEqIndPoint{
		EqIndChallenges: b.point,
		ConstraintSet: sumcheck.ConstraintSet{
			NVars:       len(b.point),
			OracleIds:   b.ids,
			Constraints: b.constraints,
		},
	}
}

// mappedComposition adapts a composite's composition, whose variables index
// its own inner list, to the shared column list of a merged constraint set.
type mappedComposition struct {
	inner     oracle.Composition
	positions []int
}

func (c *mappedComposition) NVars() int            { return len(c.positions) }
func (c *mappedComposition) Degree() int           { return c.inner.Degree() }
func (c *mappedComposition) BinaryTowerLevel() int { return c.inner.BinaryTowerLevel() }

func (c *mappedComposition) Evaluate(query []fr.Element) (fr.Element, error) {
	sub := make([]fr.Element, len(c.positions))
	for i, at := range c.positions {
		if at >= len(query) {
			return fr.Element{}, &oracle.InvalidQueryLengthError{Expected: at + 1, Actual: len(query)}
		}
		sub[i] = query[at]
	}
	return c.inner.Evaluate(sub)
}
