// Package oracle maintains the registry of multilinear polynomial oracles a
// proving session works over: committed leaves and the virtual oracles
// (composite, shifted, packed, projected, linear combination) derived from
// them. Oracles reference each other through small integer handles, never
// through owning pointers, so the graph is acyclic by construction.
package oracle

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// OracleId is a handle into a MultilinearOracleSet. Handles are stable for
// the life of a proving session and never reused.
type OracleId int

// OracleKind discriminates the variants of MultilinearPolyOracle
type OracleKind uint8

const (
	KindCommitted OracleKind = iota
	KindComposite
	KindShifted
	KindPacked
	KindProjected
	KindLinearCombination
)

func (k OracleKind) String() string {
	switch k {
	case KindCommitted:
		return "committed"
	case KindComposite:
		return "composite"
	case KindShifted:
		return "shifted"
	case KindPacked:
		return "packed"
	case KindProjected:
		return "projected"
	case KindLinearCombination:
		return "linear_combination"
	default:
		return "unknown"
	}
}

// ShiftVariant selects the direction of a circular shift
type ShiftVariant uint8

const (
	ShiftCircularLeft ShiftVariant = iota
	ShiftCircularRight
)

// Shifted describes a virtual oracle whose values are those of the inner
// oracle with the low blockBits index bits circularly shifted by offset.
type Shifted struct {
	inner     OracleId
	offset    int
	blockBits int
	variant   ShiftVariant
}

func (s *Shifted) Inner() OracleId       { return s.inner }
func (s *Shifted) Offset() int           { return s.offset }
func (s *Shifted) BlockBits() int        { return s.blockBits }
func (s *Shifted) Variant() ShiftVariant { return s.variant }

// Packed describes a virtual oracle combining 2^logDegree adjacent values of
// the inner oracle into one value of a 2^logDegree times larger
// representation. It has logDegree fewer variables and a tower level higher
// by logDegree than the inner oracle.
type Packed struct {
	inner     OracleId
	logDegree int
}

func (p *Packed) Inner() OracleId { return p.inner }
func (p *Packed) LogDegree() int  { return p.logDegree }

// Projected describes a virtual oracle obtained by fixing the last variables
// of the inner oracle to constant values.
type Projected struct {
	inner  OracleId
	values []fr.Element
}

func (p *Projected) Inner() OracleId { return p.inner }

// Values returns the projection constants, bound to the last variables of
// the inner oracle in order.
func (p *Projected) Values() []fr.Element {
	return append([]fr.Element{}, p.values...)
}

// LinearCombination describes a virtual oracle equal to an affine combination
// offset + Σ coeffs[i] * inner[i].
type LinearCombination struct {
	inner  []OracleId
	coeffs []fr.Element
	offset fr.Element
}

func (l *LinearCombination) Inner() []OracleId {
	return append([]OracleId{}, l.inner...)
}

func (l *LinearCombination) Coefficients() []fr.Element {
	return append([]fr.Element{}, l.coeffs...)
}

func (l *LinearCombination) Offset() fr.Element { return l.offset }

// MultilinearPolyOracle is one record of the oracle set: a tagged variant
// carrying the number of variables and the tower level of its values. The
// payload pointer matching the kind is set; all others are nil.
type MultilinearPolyOracle struct {
	id         OracleId
	kind       OracleKind
	nVars      int
	towerLevel int

	composite *CompositePolyOracle
	shifted   *Shifted
	packed    *Packed
	projected *Projected
	linComb   *LinearCombination
}

func (o *MultilinearPolyOracle) ID() OracleId     { return o.id }
func (o *MultilinearPolyOracle) Kind() OracleKind { return o.kind }
func (o *MultilinearPolyOracle) NVars() int       { return o.nVars }

// BinaryTowerLevel returns the minimum field-tower height needed to represent
// the oracle's values
func (o *MultilinearPolyOracle) BinaryTowerLevel() int { return o.towerLevel }

// Composite returns the composite payload; nil unless Kind is KindComposite
func (o *MultilinearPolyOracle) Composite() *CompositePolyOracle { return o.composite }

// Shifted returns the shift payload; nil unless Kind is KindShifted
func (o *MultilinearPolyOracle) Shifted() *Shifted { return o.shifted }

// Packed returns the packing payload; nil unless Kind is KindPacked
func (o *MultilinearPolyOracle) Packed() *Packed { return o.packed }

// Projected returns the projection payload; nil unless Kind is KindProjected
func (o *MultilinearPolyOracle) Projected() *Projected { return o.projected }

// LinearCombination returns the combination payload; nil unless Kind is
// KindLinearCombination
func (o *MultilinearPolyOracle) LinearCombination() *LinearCombination { return o.linComb }

// MultilinearOracleSet is the arena of oracle records for one proving
// session. It is built once before proving begins and only read afterwards.
type MultilinearOracleSet struct {
	oracles []MultilinearPolyOracle
}

// NewMultilinearOracleSet returns an empty oracle set
func NewMultilinearOracleSet() *MultilinearOracleSet {
	return &MultilinearOracleSet{}
}

// NumOracles returns the number of oracles added so far
func (s *MultilinearOracleSet) NumOracles() int {
	return len(s.oracles)
}

// Oracle returns the record for the given handle
func (s *MultilinearOracleSet) Oracle(id OracleId) (*MultilinearPolyOracle, error) {
	if id < 0 || int(id) >= len(s.oracles) {
		return nil, ErrUnknownOracle
	}
	return &s.oracles[id], nil
}

// NVars returns the number of variables of the given oracle; it panics on an
// unknown handle, which always indicates a caller bug.
func (s *MultilinearOracleSet) NVars(id OracleId) int {
	o, err := s.Oracle(id)
	if err != nil {
		panic(err)
	}
	return o.NVars()
}

// TowerLevel returns the tower level of the given oracle; it panics on an
// unknown handle.
func (s *MultilinearOracleSet) TowerLevel(id OracleId) int {
	o, err := s.Oracle(id)
	if err != nil {
		panic(err)
	}
	return o.BinaryTowerLevel()
}

func (s *MultilinearOracleSet) add(o MultilinearPolyOracle) OracleId {
	o.id = OracleId(len(s.oracles))
	s.oracles = append(s.oracles, o)
	return o.id
}

// AddCommitted registers a committed leaf with the given shape. The tower
// level is supplied by the caller, who knows the subfield the committed
// values live in.
func (s *MultilinearOracleSet) AddCommitted(nVars, towerLevel int) OracleId {
	return s.add(MultilinearPolyOracle{
		kind:       KindCommitted,
		nVars:      nVars,
		towerLevel: towerLevel,
	})
}

// AddComposite registers a composite oracle over the given inner handles.
// Construction fails, without adding anything, when the inner count does not
// match the composition arity or when any inner oracle has a different
// number of variables.
func (s *MultilinearOracleSet) AddComposite(nVars int, inner []OracleId, comp Composition) (OracleId, error) {
	innerOracles := make([]MultilinearPolyOracle, len(inner))
	for i, id := range inner {
		o, err := s.Oracle(id)
		if err != nil {
			return 0, err
		}
		innerOracles[i] = *o
	}
	composite, err := NewCompositePolyOracle(nVars, innerOracles, comp)
	if err != nil {
		return 0, err
	}
	return s.add(MultilinearPolyOracle{
		kind:       KindComposite,
		nVars:      nVars,
		towerLevel: composite.BinaryTowerLevel(),
		composite:  composite,
	}), nil
}

// AddShifted registers a circular shift of the inner oracle by offset within
// blocks of 2^blockBits values.
func (s *MultilinearOracleSet) AddShifted(inner OracleId, offset, blockBits int, variant ShiftVariant) (OracleId, error) {
	o, err := s.Oracle(inner)
	if err != nil {
		return 0, err
	}
	if blockBits > o.NVars() || offset <= 0 || offset > 1<<blockBits {
		return 0, &InvalidShiftError{Offset: offset, BlockBits: blockBits, NVars: o.NVars()}
	}
	return s.add(MultilinearPolyOracle{
		kind:       KindShifted,
		nVars:      o.NVars(),
		towerLevel: o.BinaryTowerLevel(),
		shifted:    &Shifted{inner: inner, offset: offset, blockBits: blockBits, variant: variant},
	}), nil
}

// AddPacked registers a packing of 2^logDegree adjacent values of the inner
// oracle. The packed oracle has logDegree fewer variables and its values live
// logDegree tower levels higher.
func (s *MultilinearOracleSet) AddPacked(inner OracleId, logDegree int) (OracleId, error) {
	o, err := s.Oracle(inner)
	if err != nil {
		return 0, err
	}
	if logDegree > o.NVars() {
		return 0, &IncorrectNumberOfVariablesError{Expected: o.NVars(), Actual: logDegree}
	}
	return s.add(MultilinearPolyOracle{
		kind:       KindPacked,
		nVars:      o.NVars() - logDegree,
		towerLevel: o.BinaryTowerLevel() + logDegree,
		packed:     &Packed{inner: inner, logDegree: logDegree},
	}), nil
}

// AddProjected registers a projection of the inner oracle: its last
// len(values) variables are fixed to the given constants.
func (s *MultilinearOracleSet) AddProjected(inner OracleId, values []fr.Element) (OracleId, error) {
	o, err := s.Oracle(inner)
	if err != nil {
		return 0, err
	}
	if len(values) > o.NVars() {
		return 0, &IncorrectNumberOfVariablesError{Expected: o.NVars(), Actual: len(values)}
	}
	towerLevel := o.BinaryTowerLevel()
	for i := range values {
		towerLevel = max(towerLevel, ConstantTowerLevel(values[i]))
	}
	return s.add(MultilinearPolyOracle{
		kind:       KindProjected,
		nVars:      o.NVars() - len(values),
		towerLevel: towerLevel,
		projected:  &Projected{inner: inner, values: append([]fr.Element{}, values...)},
	}), nil
}

// AddLinearCombination registers the affine combination
// offset + Σ coeffs[i] * inner[i] of oracles sharing the same variable count.
func (s *MultilinearOracleSet) AddLinearCombination(nVars int, inner []OracleId, coeffs []fr.Element, offset fr.Element) (OracleId, error) {
	if len(inner) != len(coeffs) {
		return 0, ErrCompositionMismatch
	}
	towerLevel := ConstantTowerLevel(offset)
	for i, id := range inner {
		o, err := s.Oracle(id)
		if err != nil {
			return 0, err
		}
		if o.NVars() != nVars {
			return 0, &IncorrectNumberOfVariablesError{Expected: nVars, Actual: o.NVars()}
		}
		towerLevel = max(towerLevel, o.BinaryTowerLevel(), ConstantTowerLevel(coeffs[i]))
	}
	return s.add(MultilinearPolyOracle{
		kind:       KindLinearCombination,
		nVars:      nVars,
		towerLevel: towerLevel,
		linComb: &LinearCombination{
			inner:  append([]OracleId{}, inner...),
			coeffs: append([]fr.Element{}, coeffs...),
			offset: offset,
		},
	}), nil
}
