package oracle

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	towerLevel2b  = 1
	towerLevel8b  = 3
	towerLevel32b = 5
)

// testByteComposition is x0 * x1 + 125 * x2; the constant 125 needs an 8-bit
// representation, so the intrinsic level is 3.
func testByteComposition() Composition {
	return Var(0).Mul(Var(1)).Add(ConstUint64(125).Mul(Var(2)))
}

func TestCompositeTowerLevel(t *testing.T) {
	const nVars = 5

	oracles := NewMultilinearOracleSet()
	poly2b := oracles.AddCommitted(nVars, towerLevel2b)
	poly8b := oracles.AddCommitted(nVars, towerLevel8b)
	poly32b := oracles.AddCommitted(nVars, towerLevel32b)

	composition := testByteComposition()

	record := func(id OracleId) MultilinearPolyOracle {
		o, err := oracles.Oracle(id)
		require.NoError(t, err)
		return *o
	}

	composite, err := NewCompositePolyOracle(
		nVars,
		[]MultilinearPolyOracle{record(poly2b), record(poly2b), record(poly2b)},
		composition,
	)
	require.NoError(t, err)
	assert.Equal(t, towerLevel8b, composite.BinaryTowerLevel())

	composite, err = NewCompositePolyOracle(
		nVars,
		[]MultilinearPolyOracle{record(poly2b), record(poly8b), record(poly8b)},
		composition,
	)
	require.NoError(t, err)
	assert.Equal(t, towerLevel8b, composite.BinaryTowerLevel())

	composite, err = NewCompositePolyOracle(
		nVars,
		[]MultilinearPolyOracle{record(poly2b), record(poly8b), record(poly32b)},
		composition,
	)
	require.NoError(t, err)
	assert.Equal(t, towerLevel32b, composite.BinaryTowerLevel())
}

func TestCompositeValidation(t *testing.T) {
	const nVars = 4

	oracles := NewMultilinearOracleSet()
	a := oracles.AddCommitted(nVars, 0)
	b := oracles.AddCommitted(nVars, 0)
	short := oracles.AddCommitted(nVars-1, 0)

	composition := testByteComposition()

	// Too few inner oracles for a ternary composition
	_, err := oracles.AddComposite(nVars, []OracleId{a, b}, composition)
	require.ErrorIs(t, err, ErrCompositionMismatch)

	// Inner oracle with the wrong variable count
	_, err = oracles.AddComposite(nVars, []OracleId{a, b, short}, composition)
	var nVarsErr *IncorrectNumberOfVariablesError
	require.ErrorAs(t, err, &nVarsErr)
	assert.Equal(t, nVars, nVarsErr.Expected)
	assert.Equal(t, nVars-1, nVarsErr.Actual)

	// No partial construction: the failed attempts added nothing
	assert.Equal(t, 3, oracles.NumOracles())

	// And the valid construction succeeds
	id, err := oracles.AddComposite(nVars, []OracleId{a, b, b}, composition)
	require.NoError(t, err)

	o, err := oracles.Oracle(id)
	require.NoError(t, err)
	assert.Equal(t, KindComposite, o.Kind())
	assert.Equal(t, nVars, o.NVars())
	assert.Equal(t, 2, o.Composite().MaxIndividualDegree())
	assert.Equal(t, 3, o.Composite().NMultilinears())
	assert.Equal(t, []OracleId{a, b, b}, o.Composite().InnerOracleIds())
}

func TestVirtualOracleMetadata(t *testing.T) {
	oracles := NewMultilinearOracleSet()
	base := oracles.AddCommitted(6, towerLevel8b)

	shifted, err := oracles.AddShifted(base, 3, 4, ShiftCircularLeft)
	require.NoError(t, err)
	assert.Equal(t, 6, oracles.NVars(shifted))
	assert.Equal(t, towerLevel8b, oracles.TowerLevel(shifted))

	_, err = oracles.AddShifted(base, 0, 4, ShiftCircularLeft)
	var shiftErr *InvalidShiftError
	require.ErrorAs(t, err, &shiftErr)

	packed, err := oracles.AddPacked(base, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, oracles.NVars(packed))
	assert.Equal(t, towerLevel8b+2, oracles.TowerLevel(packed))

	var v fr.Element
	v.SetUint64(7)
	projected, err := oracles.AddProjected(base, []fr.Element{v, v})
	require.NoError(t, err)
	assert.Equal(t, 4, oracles.NVars(projected))
	// Tower level stays monotonic in the inner oracle and projection values
	assert.GreaterOrEqual(t, oracles.TowerLevel(projected), towerLevel8b)

	var c fr.Element
	c.SetUint64(2)
	linComb, err := oracles.AddLinearCombination(6, []OracleId{base, shifted}, []fr.Element{c, c}, fr.Element{})
	require.NoError(t, err)
	assert.Equal(t, 6, oracles.NVars(linComb))
	assert.GreaterOrEqual(t, oracles.TowerLevel(linComb), towerLevel8b)

	_, err = oracles.AddLinearCombination(6, []OracleId{base, packed}, []fr.Element{c, c}, fr.Element{})
	var nVarsErr *IncorrectNumberOfVariablesError
	require.ErrorAs(t, err, &nVarsErr)
}

func TestConstantTowerLevel(t *testing.T) {
	// Smallest k with the value's bit length at most 2^k, computed on the
	// integer value, not the Montgomery representation.
	cases := []struct {
		value uint64
		level int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{15, 2},
		{16, 3},
		{125, towerLevel8b},
		{255, 3},
		{256, 4},
		{1<<32 - 1, towerLevel32b},
		{1 << 32, 6},
	}
	for _, c := range cases {
		var v fr.Element
		v.SetUint64(c.value)
		assert.Equal(t, c.level, ConstantTowerLevel(v), "value %d", c.value)
	}
}

func TestExpression(t *testing.T) {
	comp := testByteComposition()
	assert.Equal(t, 3, comp.NVars())
	assert.Equal(t, 2, comp.Degree())
	assert.Equal(t, 3, comp.BinaryTowerLevel())

	query := make([]fr.Element, 3)
	query[0].SetUint64(3)
	query[1].SetUint64(4)
	query[2].SetUint64(2)

	got, err := comp.Evaluate(query)
	require.NoError(t, err)

	var expected fr.Element
	expected.SetUint64(3*4 + 125*2)
	assert.True(t, expected.Equal(&got))

	_, err = comp.Evaluate(query[:2])
	var queryErr *InvalidQueryLengthError
	require.ErrorAs(t, err, &queryErr)

	// Pow degree and evaluation
	cube := Var(0).Pow(3)
	assert.Equal(t, 3, cube.Degree())
	got, err = cube.Evaluate(query[:1])
	require.NoError(t, err)
	expected.SetUint64(27)
	assert.True(t, expected.Equal(&got))
}
