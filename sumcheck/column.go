package sumcheck

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/polynomial"
)

// column is the fold state of one multilinear during a sumcheck run. Before
// its switchover round the original table is kept untouched and partial
// evaluations are taken against the tensor expansion of the challenges bound
// so far; from the switchover round on, a folded copy is materialized and
// folded in place. Only the latter mutates memory proportional to the
// (shrinking) table, which is the trade-off the switchover policy controls.
type column struct {
	orig       polynomial.MultiLin
	folded     polynomial.MultiLin
	switchover int
}

func newColumn(table polynomial.MultiLin, switchover int) column {
	c := column{orig: table, switchover: switchover}
	if switchover <= 0 {
		c.folded = table.Clone()
	}
	return c
}

// pair returns the column's partial evaluations at positions i and mid+i of
// the current (length 2*mid) effective table. tensor is the expansion of the
// challenges bound so far.
func (c *column) pair(i, mid int, tensor polynomial.MultiLin) (v0, v1 fr.Element) {
	if c.folded != nil {
		return c.folded[i], c.folded[mid+i]
	}
	stride := 2 * mid
	var t fr.Element
	for b := range tensor {
		t.Mul(&tensor[b], &c.orig[b*stride+i])
		v0.Add(&v0, &t)
		t.Mul(&tensor[b], &c.orig[b*stride+mid+i])
		v1.Add(&v1, &t)
	}
	return v0, v1
}

// fold binds the current first variable to r. round is the 0-based index of
// the round just completed; tensor is the expansion before absorbing r.
func (c *column) fold(r fr.Element, round, mid int, tensor polynomial.MultiLin) {
	if c.folded != nil {
		c.folded.Fold(r)
		return
	}
	if round+1 < c.switchover {
		// the tensor carries the new challenge
		return
	}
	folded := make(polynomial.MultiLin, mid)
	var t fr.Element
	for i := 0; i < mid; i++ {
		v0, v1 := c.pair(i, mid, tensor)
		t.Sub(&v1, &v0)
		t.Mul(&t, &r)
		folded[i].Add(&v0, &t)
	}
	c.folded = folded
}

// final returns the fully-bound value once all variables are folded
func (c *column) final(tensor polynomial.MultiLin) fr.Element {
	if c.folded != nil {
		return c.folded[0]
	}
	var res, t fr.Element
	for b := range tensor {
		t.Mul(&tensor[b], &c.orig[b])
		res.Add(&res, &t)
	}
	return res
}

// extendTensor absorbs one more challenge into the tensor expansion:
// out[2b] = in[b] (1 - r), out[2b+1] = in[b] r.
func extendTensor(tensor polynomial.MultiLin, r fr.Element) polynomial.MultiLin {
	out := make(polynomial.MultiLin, 2*len(tensor))
	for b := range tensor {
		out[2*b+1].Mul(&tensor[b], &r)
		out[2*b].Sub(&tensor[b], &out[2*b+1])
	}
	return out
}
