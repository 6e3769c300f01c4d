package evalcheck

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
	"github.com/virtualpoly/towerproof/witness"
)

// MemoizedData caches equality-indicator expansions and oracle evaluations
// across the rounds of one proving session. The cache is append-only and
// owned by a single Prover; a new session starts with a fresh one.
type MemoizedData struct {
	eqExpansions map[string]polynomial.MultiLin
	evaluations  map[evalKey]fr.Element
}

type evalKey struct {
	id    oracle.OracleId
	point string
}

func NewMemoizedData() *MemoizedData {
	return &MemoizedData{
		eqExpansions: make(map[string]polynomial.MultiLin),
		evaluations:  make(map[evalKey]fr.Element),
	}
}

// pointKey folds an evaluation point into a map key. fr.Bytes is canonical,
// so equal points always collide.
func pointKey(point []fr.Element) string {
	buf := make([]byte, 0, len(point)*fr.Bytes)
	for i := range point {
		b := point[i].Bytes()
		buf = append(buf, b[:]...)
	}
	return string(buf)
}

// EqExpansion returns the equality-indicator expansion of the point,
// computing it on first use. Callers must not mutate the returned table.
func (m *MemoizedData) EqExpansion(point []fr.Element) polynomial.MultiLin {
	key := pointKey(point)
	if table, ok := m.eqExpansions[key]; ok {
		return table
	}
	table := polynomial.FoldedEqTable(point)
	m.eqExpansions[key] = table
	return table
}

// Evaluate returns the oracle's value at the point, reusing a previously
// computed value when the same (oracle, point) pair comes up again.
func (m *MemoizedData) Evaluate(index *witness.Index, id oracle.OracleId, point []fr.Element) (fr.Element, error) {
	key := evalKey{id: id, point: pointKey(point)}
	if v, ok := m.evaluations[key]; ok {
		return v, nil
	}
	v, err := index.Evaluate(id, point)
	if err != nil {
		return fr.Element{}, err
	}
	m.evaluations[key] = v
	return v, nil
}

// Len returns the number of cached entries
func (m *MemoizedData) Len() int {
	return len(m.eqExpansions) + len(m.evaluations)
}
