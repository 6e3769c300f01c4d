package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminism(t *testing.T) {
	run := func() ([]fr.Element, []byte) {
		tr := New()
		var a, b fr.Element
		a.SetUint64(1)
		b.SetUint64(2)

		tr.WriteElements(a, b)
		c1 := tr.Challenge()
		tr.WriteBytes([]byte("layer"))
		tr.WriteUint64(42)
		c2 := tr.Challenge()
		return []fr.Element{c1, c2}, tr.Bytes()
	}

	challenges1, bytes1 := run()
	challenges2, bytes2 := run()

	assert.Equal(t, challenges1, challenges2)
	assert.Equal(t, bytes1, bytes2)
}

func TestOrderSensitivity(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(1)
	b.SetUint64(2)

	t1 := New()
	t1.WriteElements(a, b)
	c1 := t1.Challenge()

	t2 := New()
	t2.WriteElements(b, a)
	c2 := t2.Challenge()

	assert.False(t, c1.Equal(&c2), "reordered writes must change the challenge")

	// Interleaving a derivation between the writes changes it too
	t3 := New()
	t3.WriteElements(a)
	_ = t3.Challenge()
	t3.WriteElements(b)
	c3 := t3.Challenge()
	assert.False(t, c1.Equal(&c3))
}

func TestConsecutiveChallengesDiffer(t *testing.T) {
	tr := New()
	challenges := tr.Challenges(4)
	for i := range challenges {
		for j := i + 1; j < len(challenges); j++ {
			require.False(t, challenges[i].Equal(&challenges[j]), "%d and %d", i, j)
		}
	}
}

func TestChallengeDependsOnAllWrites(t *testing.T) {
	var a fr.Element
	a.SetUint64(1)

	t1 := New()
	t1.WriteElements(a)
	c1 := t1.Challenge()

	t2 := New()
	t2.WriteElements(a)
	t2.WriteUint64(0)
	c2 := t2.Challenge()

	assert.False(t, c1.Equal(&c2))
}

func TestBytesAccumulates(t *testing.T) {
	tr := New()
	var a fr.Element
	a.SetUint64(7)
	tr.WriteElements(a)
	_ = tr.Challenge()
	tr.WriteBytes([]byte{1, 2, 3})

	got := tr.Bytes()
	aBytes := a.Bytes()
	expected := append(aBytes[:], 1, 2, 3)
	assert.Equal(t, expected, got, "challenge derivation must not alter the stream")
}
