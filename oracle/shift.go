package oracle

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// SourceIndex returns the index in the inner oracle's value table backing
// position i of the shifted table: only the low BlockBits bits of the index
// move, the rest select the block.
func (s *Shifted) SourceIndex(i int) int {
	mask := 1<<s.blockBits - 1
	lo := i & mask
	switch s.variant {
	case ShiftCircularLeft:
		lo = (lo + s.offset) & mask
	case ShiftCircularRight:
		lo = (lo - s.offset + mask + 1) & mask
	}
	return i&^mask | lo
}

// PackingBasis returns the weights of the 2^logDegree packing slots: slot b
// carries weight 2^(32b), the canonical embedding for 32-bit-aligned packing.
func PackingBasis(logDegree int) []fr.Element {
	weights := make([]fr.Element, 1<<logDegree)
	var step fr.Element
	step.SetUint64(1 << 32)
	weights[0].SetOne()
	for b := 1; b < len(weights); b++ {
		weights[b].Mul(&weights[b-1], &step)
	}
	return weights
}
