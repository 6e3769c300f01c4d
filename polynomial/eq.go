package polynomial

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// EvalEq computes Eq(q1, ... , qn, h1, ... , hn) = Π_1^n Eq(qi, hi)
// where Eq(x, y) = xy + (1-x)(1-y) = 1 - x - y + 2xy interpolates
//
//	    _________________
//	    |       |       |
//	    |   0   |   1   |
//	    |_______|_______|
//	y   |       |       |
//	    |   1   |   0   |
//	    |_______|_______|
//
//	            x
func EvalEq(q, h []fr.Element) fr.Element {
	var res, nxt, one, sum fr.Element
	one.SetOne()
	res.SetOne()
	for i := 0; i < len(q); i++ {
		nxt.Mul(&q[i], &h[i]) // nxt <- qi * hi
		nxt.Add(&nxt, &nxt)   // nxt <- 2 qi hi
		nxt.Add(&nxt, &one)   // nxt <- 1 + 2 qi hi
		sum.Add(&q[i], &h[i]) // sum <- qi + hi
		nxt.Sub(&nxt, &sum)   // nxt <- 1 + 2 qi hi - qi - hi
		res.Mul(&res, &nxt)
	}
	return res
}

// FoldedEqTable ought to start life as a sparse table over 2n variables
// containing 2^n ones only, folded n times according to the values in q.
// Instead we directly compute the folded array of length 2^n containing the
// values of Eq(q1, ... , qn, *, ... , *). The indexing convention matches
// MultiLin: q[0] corresponds to the high bit of the entry index, so that
// Σ_x FoldedEqTable(q)[x] · m[x] = m.Evaluate(q).
//
// The same table is the tensor expansion ⊗_i (1-qi, qi) of the point, which
// is why the switchover fold representation and the memoization cache both
// reuse it.
func FoldedEqTable(q []fr.Element) MultiLin {
	n := len(q)
	eq := make(MultiLin, 1<<n)
	eq[0].SetOne()

	for i, r := range q {
		for j := 0; j < 1<<i; j++ {
			J := j << (n - i)
			JNext := J + 1<<(n-1-i)
			eq[JNext].Mul(&r, &eq[J])
			eq[J].Sub(&eq[J], &eq[JNext])
		}
	}

	return eq
}
