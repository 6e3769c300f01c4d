// Package witness maps oracle handles to the concrete value tables backing
// them. Committed tables are supplied by the caller; tables of virtual
// oracles are materialized on demand from their structure and cached for the
// rest of the session.
package witness

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/virtualpoly/towerproof/oracle"
	"github.com/virtualpoly/towerproof/polynomial"
)

// MissingWitnessError reports a committed oracle with no table in the index
type MissingWitnessError struct {
	ID oracle.OracleId
}

func (e *MissingWitnessError) Error() string {
	return fmt.Sprintf("no witness for committed oracle %d", e.ID)
}

// TableSizeError reports a table whose length does not match its oracle's
// variable count
type TableSizeError struct {
	ID       oracle.OracleId
	Expected int
	Actual   int
}

func (e *TableSizeError) Error() string {
	return fmt.Sprintf("table for oracle %d must have %d entries, got %d", e.ID, e.Expected, e.Actual)
}

// Index holds the value tables of one proving session
type Index struct {
	oracles   *oracle.MultilinearOracleSet
	multilins map[oracle.OracleId]polynomial.MultiLin
}

// NewIndex returns an empty index over the given oracle set
func NewIndex(oracles *oracle.MultilinearOracleSet) *Index {
	return &Index{
		oracles:   oracles,
		multilins: make(map[oracle.OracleId]polynomial.MultiLin),
	}
}

// Set registers the value table of a committed oracle
func (idx *Index) Set(id oracle.OracleId, table polynomial.MultiLin) error {
	o, err := idx.oracles.Oracle(id)
	if err != nil {
		return err
	}
	if len(table) != 1<<o.NVars() {
		return &TableSizeError{ID: id, Expected: 1 << o.NVars(), Actual: len(table)}
	}
	idx.multilins[id] = table
	return nil
}

// Has reports whether a table for the oracle is present (set or already
// materialized)
func (idx *Index) Has(id oracle.OracleId) bool {
	_, ok := idx.multilins[id]
	return ok
}

// MultiLin returns the value table of any oracle, materializing virtual
// oracles recursively. Committed oracles must have been Set.
func (idx *Index) MultiLin(id oracle.OracleId) (polynomial.MultiLin, error) {
	if table, ok := idx.multilins[id]; ok {
		return table, nil
	}

	o, err := idx.oracles.Oracle(id)
	if err != nil {
		return nil, err
	}

	var table polynomial.MultiLin
	switch o.Kind() {
	case oracle.KindCommitted:
		return nil, &MissingWitnessError{ID: id}
	case oracle.KindComposite:
		table, err = idx.materializeComposite(o.Composite())
	case oracle.KindShifted:
		table, err = idx.materializeShifted(o.Shifted())
	case oracle.KindPacked:
		table, err = idx.materializePacked(o.Packed())
	case oracle.KindProjected:
		table, err = idx.materializeProjected(o.Projected())
	case oracle.KindLinearCombination:
		table, err = idx.materializeLinearCombination(o.LinearCombination())
	}
	if err != nil {
		return nil, err
	}

	idx.multilins[id] = table
	return table, nil
}

// Evaluate returns the value of the oracle at the given point. The point
// length must equal the oracle's variable count.
func (idx *Index) Evaluate(id oracle.OracleId, point []fr.Element) (fr.Element, error) {
	o, err := idx.oracles.Oracle(id)
	if err != nil {
		return fr.Element{}, err
	}
	if len(point) != o.NVars() {
		return fr.Element{}, &oracle.IncorrectNumberOfVariablesError{Expected: o.NVars(), Actual: len(point)}
	}
	table, err := idx.MultiLin(id)
	if err != nil {
		return fr.Element{}, err
	}
	return table.Evaluate(point), nil
}

func (idx *Index) materializeComposite(c *oracle.CompositePolyOracle) (polynomial.MultiLin, error) {
	ids := c.InnerOracleIds()
	inner := make([]polynomial.MultiLin, len(ids))
	for i, id := range ids {
		table, err := idx.MultiLin(id)
		if err != nil {
			return nil, err
		}
		inner[i] = table
	}

	comp := c.Composition()
	table := make(polynomial.MultiLin, 1<<c.NVars())
	query := make([]fr.Element, len(inner))
	for x := range table {
		for i := range inner {
			query[i] = inner[i][x]
		}
		v, err := comp.Evaluate(query)
		if err != nil {
			return nil, err
		}
		table[x] = v
	}
	return table, nil
}

func (idx *Index) materializeShifted(s *oracle.Shifted) (polynomial.MultiLin, error) {
	inner, err := idx.MultiLin(s.Inner())
	if err != nil {
		return nil, err
	}
	table := make(polynomial.MultiLin, len(inner))
	for i := range table {
		table[i] = inner[s.SourceIndex(i)]
	}
	return table, nil
}

func (idx *Index) materializePacked(p *oracle.Packed) (polynomial.MultiLin, error) {
	inner, err := idx.MultiLin(p.Inner())
	if err != nil {
		return nil, err
	}
	weights := oracle.PackingBasis(p.LogDegree())
	block := 1 << p.LogDegree()

	table := make(polynomial.MultiLin, len(inner)/block)
	var t fr.Element
	for i := range table {
		for b := 0; b < block; b++ {
			t.Mul(&inner[i*block+b], &weights[b])
			table[i].Add(&table[i], &t)
		}
	}
	return table, nil
}

func (idx *Index) materializeProjected(p *oracle.Projected) (polynomial.MultiLin, error) {
	inner, err := idx.MultiLin(p.Inner())
	if err != nil {
		return nil, err
	}
	values := p.Values()
	table := inner.Clone()
	// The last projection value binds the last variable first
	for j := len(values) - 1; j >= 0; j-- {
		table.FoldLow(values[j])
	}
	return table, nil
}

func (idx *Index) materializeLinearCombination(l *oracle.LinearCombination) (polynomial.MultiLin, error) {
	ids := l.Inner()
	coeffs := l.Coefficients()
	offset := l.Offset()

	var table polynomial.MultiLin
	var t fr.Element
	for i, id := range ids {
		inner, err := idx.MultiLin(id)
		if err != nil {
			return nil, err
		}
		if table == nil {
			table = make(polynomial.MultiLin, len(inner))
			for x := range table {
				table[x] = offset
			}
		}
		for x := range table {
			t.Mul(&inner[x], &coeffs[i])
			table[x].Add(&table[x], &t)
		}
	}
	return table, nil
}
