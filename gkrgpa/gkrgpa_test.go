package gkrgpa

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
	"github.com/virtualpoly/towerproof/sumcheck"
	"github.com/virtualpoly/towerproof/transcript"
)

func randomTable(rng *rand.Rand, size int) polynomial.MultiLin {
	table := make(polynomial.MultiLin, size)
	for i := range table {
		table[i].SetUint64(rng.Uint64())
	}
	return table
}

func tableProduct(table polynomial.MultiLin) fr.Element {
	product := fr.One()
	for i := range table {
		product.Mul(&product, &table[i])
	}
	return product
}

func TestGrandProductEvaluation(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	const nVars = 6
	table := randomTable(rng, 1<<nVars)

	w, err := NewGrandProductWitness(nVars, table)
	require.NoError(t, err)
	require.Equal(t, nVars, w.NVars())

	expected := tableProduct(table)
	got := w.GrandProductEvaluation()
	assert.True(t, got.Equal(&expected))
}

func TestWitnessShapeRejection(t *testing.T) {
	const nVars = 4
	for _, size := range []int{1<<nVars - 1, 1<<nVars + 1} {
		_, err := NewGrandProductWitness(nVars, make(polynomial.MultiLin, size))
		var lenErr *InvalidWitnessLengthError
		require.ErrorAs(t, err, &lenErr, "size %d", size)
		assert.Equal(t, 1<<nVars, lenErr.Expected)
		assert.Equal(t, size, lenErr.Actual)
	}
}

func TestNewGrandProductWitnesses(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const nVars = 5

	tables := []polynomial.MultiLin{
		randomTable(rng, 1<<nVars),
		randomTable(rng, 1<<nVars),
		randomTable(rng, 1<<nVars),
	}
	witnesses, err := NewGrandProductWitnesses(nVars, tables)
	require.NoError(t, err)
	require.Len(t, witnesses, 3)
	for i := range tables {
		expected := tableProduct(tables[i])
		got := witnesses[i].GrandProductEvaluation()
		assert.True(t, got.Equal(&expected), "witness %d", i)
	}

	tables[1] = tables[1][:len(tables[1])-1]
	_, err = NewGrandProductWitnesses(nVars, tables)
	var lenErr *InvalidWitnessLengthError
	require.ErrorAs(t, err, &lenErr)
}

func TestBatchProveSingle(t *testing.T) {
	for _, order := range []sumcheck.EvaluationOrder{sumcheck.LowToHigh, sumcheck.HighToLow} {
		t.Run(order.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(2))
			const nVars = 5
			table := randomTable(rng, 1<<nVars)

			w, err := NewGrandProductWitness(nVars, table)
			require.NoError(t, err)
			claim := GrandProductClaim{NVars: nVars, Product: w.GrandProductEvaluation()}

			out, err := BatchProve(order, []*GrandProductWitness{w}, []GrandProductClaim{claim}, transcript.New())
			require.NoError(t, err)
			require.Len(t, out, 1)
			require.Len(t, out[0].EvalPoint, nVars)

			// the output claim must hold against the raw table
			expected := table.Evaluate(out[0].EvalPoint)
			assert.True(t, out[0].Eval.Equal(&expected))
		})
	}
}

func TestBatchProveZeroVariables(t *testing.T) {
	// a single-cell table has no layers to reduce; the output claim is the
	// raw value at the empty point
	table := make(polynomial.MultiLin, 1)
	table[0].SetUint64(7)

	w, err := NewGrandProductWitness(0, table)
	require.NoError(t, err)
	claim := GrandProductClaim{NVars: 0, Product: w.GrandProductEvaluation()}

	for _, order := range []sumcheck.EvaluationOrder{sumcheck.LowToHigh, sumcheck.HighToLow} {
		t.Run(order.String(), func(t *testing.T) {
			out, err := BatchProve(order, []*GrandProductWitness{w}, []GrandProductClaim{claim}, transcript.New())
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Empty(t, out[0].EvalPoint)
			assert.True(t, out[0].Eval.Equal(&table[0]))
		})
	}
}

func TestBatchProveBatched(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const nVars = 4
	const nClaims = 3

	tables := make([]polynomial.MultiLin, nClaims)
	for i := range tables {
		tables[i] = randomTable(rng, 1<<nVars)
	}
	witnesses, err := NewGrandProductWitnesses(nVars, tables)
	require.NoError(t, err)

	claims := make([]GrandProductClaim, nClaims)
	for i := range claims {
		claims[i] = GrandProductClaim{NVars: nVars, Product: witnesses[i].GrandProductEvaluation()}
	}

	out, err := BatchProve(sumcheck.LowToHigh, witnesses, claims, transcript.New())
	require.NoError(t, err)
	require.Len(t, out, nClaims)

	// round challenges are shared: all instances reduce to the same point
	for i := range out {
		assert.Equal(t, out[0].EvalPoint, out[i].EvalPoint)
		expected := tables[i].Evaluate(out[i].EvalPoint)
		assert.True(t, out[i].Eval.Equal(&expected), "claim %d", i)
	}
}

func TestBatchProveDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const nVars = 4
	table := randomTable(rng, 1<<nVars)

	run := func() ([]LayerClaim, []byte) {
		w, err := NewGrandProductWitness(nVars, table.Clone())
		require.NoError(t, err)
		claim := GrandProductClaim{NVars: nVars, Product: w.GrandProductEvaluation()}
		tr := transcript.New()
		out, err := BatchProve(sumcheck.HighToLow, []*GrandProductWitness{w}, []GrandProductClaim{claim}, tr)
		require.NoError(t, err)
		return out, tr.Bytes()
	}

	out1, bytes1 := run()
	out2, bytes2 := run()
	assert.Equal(t, out1, out2)
	assert.Equal(t, bytes1, bytes2)
}

func TestBatchProveErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const nVars = 3
	table := randomTable(rng, 1<<nVars)

	w, err := NewGrandProductWitness(nVars, table)
	require.NoError(t, err)
	claim := GrandProductClaim{NVars: nVars, Product: w.GrandProductEvaluation()}

	_, err = BatchProve(sumcheck.LowToHigh, []*GrandProductWitness{w}, nil, transcript.New())
	require.ErrorIs(t, err, ErrMismatchedClaims)

	bad := claim
	bad.Product.Add(&bad.Product, &bad.Product)
	_, err = BatchProve(sumcheck.LowToHigh, []*GrandProductWitness{w}, []GrandProductClaim{bad}, transcript.New())
	var prodErr *ProductMismatchError
	require.ErrorAs(t, err, &prodErr)
	assert.Equal(t, 0, prodErr.Index)

	short := claim
	short.NVars = nVars - 1
	_, err = BatchProve(sumcheck.LowToHigh, []*GrandProductWitness{w}, []GrandProductClaim{short}, transcript.New())
	var nVarsErr *oracle.IncorrectNumberOfVariablesError
	require.ErrorAs(t, err, &nVarsErr)

	out, err := BatchProve(sumcheck.LowToHigh, nil, nil, transcript.New())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMakeEvalClaims(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const nVars = 3

	oracles := oracle.NewMultilinearOracleSet()
	id := oracles.AddCommitted(nVars, 5)

	table := randomTable(rng, 1<<nVars)
	w, err := NewGrandProductWitness(nVars, table)
	require.NoError(t, err)
	claim := GrandProductClaim{NVars: nVars, Product: w.GrandProductEvaluation()}

	out, err := BatchProve(sumcheck.LowToHigh, []*GrandProductWitness{w}, []GrandProductClaim{claim}, transcript.New())
	require.NoError(t, err)

	evalClaims, err := MakeEvalClaims([]oracle.OracleId{id}, out)
	require.NoError(t, err)
	require.Len(t, evalClaims, 1)
	assert.Equal(t, id, evalClaims[0].OracleID)
	assert.Equal(t, out[0].EvalPoint, evalClaims[0].EvalPoint)
	assert.True(t, evalClaims[0].Eval.Equal(&out[0].Eval))

	_, err = MakeEvalClaims(nil, out)
	require.ErrorIs(t, err, ErrMismatchedClaims)
}

func benchmarkBatchProve(b *testing.B, order sumcheck.EvaluationOrder, nVars, nClaims int) {
	rng := rand.New(rand.NewSource(0))
	tables := make([]polynomial.MultiLin, nClaims)
	for i := range tables {
		tables[i] = randomTable(rng, 1<<nVars)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		witnesses, err := NewGrandProductWitnesses(nVars, tables)
		if err != nil {
			b.Fatal(err)
		}
		claims := make([]GrandProductClaim, nClaims)
		for j := range claims {
			claims[j] = GrandProductClaim{NVars: nVars, Product: witnesses[j].GrandProductEvaluation()}
		}
		if _, err := BatchProve(order, witnesses, claims, transcript.New()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBatchProveLowToHigh(b *testing.B) {
	for _, nVars := range []int{12, 16, 20} {
		b.Run(fmt.Sprintf("n_vars=%d", nVars), func(b *testing.B) {
			benchmarkBatchProve(b, sumcheck.LowToHigh, nVars, 1)
		})
	}
}

func BenchmarkBatchProveHighToLow(b *testing.B) {
	for _, nVars := range []int{12, 16, 20} {
		b.Run(fmt.Sprintf("n_vars=%d", nVars), func(b *testing.B) {
			benchmarkBatchProve(b, sumcheck.HighToLow, nVars, 1)
		})
	}
}

func BenchmarkBatchProveBatched(b *testing.B) {
	for _, nClaims := range []int{2, 4} {
		b.Run(fmt.Sprintf("claims=%d", nClaims), func(b *testing.B) {
			benchmarkBatchProve(b, sumcheck.LowToHigh, 12, nClaims)
		})
	}
}
