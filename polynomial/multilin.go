// Package polynomial maintains dense multilinear polynomials as tables of
// their evaluations over the boolean hypercube, along with the folding and
// interpolation routines the sumcheck-style protocols need.
package polynomial

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MultiLin tracks the values of a (dense i.e. not sparse) multilinear
// polynomial. The variables are ordered so that the first variable selects
// between the two halves of the table: entry i holds the value at the point
// whose j-th coordinate is bit (n-1-j) of i.
type MultiLin []fr.Element

// NewMultiLin returns a table wrapping the given backing slice. The length
// must be a power of two; this is checked by the callers that accept
// externally supplied tables.
func NewMultiLin(table []fr.Element) MultiLin {
	return table
}

// NumVars returns the number of variables of the multilinear
func (m MultiLin) NumVars() int {
	return Log2Ceil(len(m))
}

// Fold fixes the first variable of the multilinear to r:
// m[i] <- m[i] + r (m[i+mid] - m[i]), then truncates to the first half.
func (m *MultiLin) Fold(r fr.Element) {
	mid := len(*m) / 2
	bottom, top := (*m)[:mid], (*m)[mid:]
	for i := range bottom {
		top[i].Sub(&top[i], &bottom[i])
		top[i].Mul(&top[i], &r)
		bottom[i].Add(&bottom[i], &top[i])
	}
	*m = (*m)[:mid]
}

// FoldLow fixes the last variable of the multilinear to r. The table entries
// come in adjacent pairs (x...0, x...1); each pair is interpolated at r.
func (m *MultiLin) FoldLow(r fr.Element) {
	mid := len(*m) / 2
	var t fr.Element
	for i := 0; i < mid; i++ {
		t.Sub(&(*m)[2*i+1], &(*m)[2*i])
		t.Mul(&t, &r)
		(*m)[i].Add(&(*m)[2*i], &t)
	}
	*m = (*m)[:mid]
}

// Clone returns a deep copy of the table. Both evaluation and sumcheck
// require folding an underlying array, and folding changes the array.
func (m MultiLin) Clone() MultiLin {
	clone := make(MultiLin, len(m))
	copy(clone, m)
	return clone
}

// Evaluate returns the value of the multilinear at the given point, folding
// a deep copy one coordinate at a time. The point length must equal NumVars.
func (m MultiLin) Evaluate(point []fr.Element) fr.Element {
	mCopy := m.Clone()
	for _, r := range point {
		mCopy.Fold(r)
	}
	return mCopy[0]
}

func (m MultiLin) String() string {
	return fmt.Sprintf("multilin[%d vars]", m.NumVars())
}

// Log2Floor computes the floored value of Log2
func Log2Floor(a int) int {
	res := 0
	for i := a; i > 1; i >>= 1 {
		res++
	}
	return res
}

// Log2Ceil computes the ceiled value of Log2
func Log2Ceil(a int) int {
	floor := Log2Floor(a)
	if a != 1<<floor {
		floor++
	}
	return floor
}
