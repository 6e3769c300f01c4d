// Package transcript implements the prover side of the Fiat-Shamir channel:
// an append-only byte stream from which verifier challenges are derived
// deterministically. Writes and challenge derivations must be interleaved in
// the exact order the verifier replays; there is no read-back and no rewind.
package transcript

import (
	"encoding/binary"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

const limbSize = fr.Bytes - 1

// Transcript accumulates prover messages and derives challenges from
// everything written so far. The zero value is not usable; construct with
// New.
type Transcript struct {
	h       hash.Hash
	data    []byte // the full appended stream, i.e. the proof for this phase
	pending []byte // written since the last challenge derivation
	state   [fr.Bytes]byte
	rounds  uint64
}

// New returns a fresh transcript with an all-zero initial state
func New() *Transcript {
	return &Transcript{h: mimc.NewMiMC()}
}

// WriteElements appends field elements to the transcript
func (t *Transcript) WriteElements(els ...fr.Element) {
	for i := range els {
		b := els[i].Bytes()
		t.append(b[:])
	}
}

// WriteBytes appends arbitrary bytes to the transcript
func (t *Transcript) WriteBytes(b []byte) {
	t.append(b)
}

// WriteUint64 appends a big-endian integer to the transcript
func (t *Transcript) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.append(b[:])
}

func (t *Transcript) append(b []byte) {
	t.data = append(t.data, b...)
	t.pending = append(t.pending, b...)
}

// Challenge absorbs everything written since the previous derivation and
// returns a pseudorandom field element. Absorption splits the pending bytes
// into 31-byte limbs so that every hash block is a canonical field element;
// a round counter and the pending length separate derivations that would
// otherwise absorb identical blocks.
func (t *Transcript) Challenge() fr.Element {
	t.h.Reset()
	t.mustWrite(t.state[:])

	var header [fr.Bytes]byte
	binary.BigEndian.PutUint64(header[16:24], t.rounds)
	binary.BigEndian.PutUint64(header[24:], uint64(len(t.pending)))
	t.mustWrite(header[:])

	for off := 0; off < len(t.pending); off += limbSize {
		var block [fr.Bytes]byte
		end := min(off+limbSize, len(t.pending))
		copy(block[fr.Bytes-(end-off):], t.pending[off:end])
		t.mustWrite(block[:])
	}

	copy(t.state[:], t.h.Sum(nil))
	t.pending = t.pending[:0]
	t.rounds++

	var challenge fr.Element
	challenge.SetBytes(t.state[:])
	return challenge
}

// Challenges derives n consecutive challenges
func (t *Transcript) Challenges(n int) []fr.Element {
	challenges := make([]fr.Element, n)
	for i := range challenges {
		challenges[i] = t.Challenge()
	}
	return challenges
}

// Bytes returns a copy of the full appended stream. Together with the
// derivation rule it is the non-interactive proof transcript of the
// reduction phase.
func (t *Transcript) Bytes() []byte {
	return append([]byte{}, t.data...)
}

func (t *Transcript) mustWrite(b []byte) {
	// blocks are always canonical field elements, so a write error indicates
	// transcript corruption, not a recoverable condition
	if _, err := t.h.Write(b); err != nil {
		panic(err)
	}
}
