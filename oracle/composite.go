package oracle

// CompositePolyOracle describes a polynomial defined as an algebraic
// composition of several inner multilinear oracles, all sharing the same
// variable count. The composition object is shared: the same algebraic shape
// may back several composite instances. The inner oracles are referenced by
// handle, not owned.
type CompositePolyOracle struct {
	nVars       int
	inner       []MultilinearPolyOracle
	composition Composition
}

// NewCompositePolyOracle validates and builds a composite oracle. It fails
// with ErrCompositionMismatch when the inner count differs from the
// composition arity, and with IncorrectNumberOfVariablesError when any inner
// oracle's variable count differs from nVars. There is no partial
// construction.
func NewCompositePolyOracle(nVars int, inner []MultilinearPolyOracle, composition Composition) (*CompositePolyOracle, error) {
	if len(inner) != composition.NVars() {
		return nil, ErrCompositionMismatch
	}
	for i := range inner {
		if inner[i].NVars() != nVars {
			return nil, &IncorrectNumberOfVariablesError{Expected: nVars, Actual: inner[i].NVars()}
		}
	}
	return &CompositePolyOracle{
		nVars:       nVars,
		inner:       append([]MultilinearPolyOracle{}, inner...),
		composition: composition,
	}, nil
}

// MaxIndividualDegree of the multilinear composite equals the composition degree
func (c *CompositePolyOracle) MaxIndividualDegree() int {
	return c.composition.Degree()
}

// NMultilinears returns the composition arity
func (c *CompositePolyOracle) NMultilinears() int {
	return c.composition.NVars()
}

// BinaryTowerLevel is the maximum of the composition's own level and the
// levels of all inner oracles; never smaller than any input.
func (c *CompositePolyOracle) BinaryTowerLevel() int {
	level := c.composition.BinaryTowerLevel()
	for i := range c.inner {
		level = max(level, c.inner[i].BinaryTowerLevel())
	}
	return level
}

// NVars returns the number of variables of the composite
func (c *CompositePolyOracle) NVars() int {
	return c.nVars
}

// InnerOracleIds returns the handles of the inner oracles, in order
func (c *CompositePolyOracle) InnerOracleIds() []OracleId {
	ids := make([]OracleId, len(c.inner))
	for i := range c.inner {
		ids[i] = c.inner[i].ID()
	}
	return ids
}

// Inner returns copies of the inner oracle records
func (c *CompositePolyOracle) Inner() []MultilinearPolyOracle {
	return append([]MultilinearPolyOracle{}, c.inner...)
}

// Composition returns the shared composition object
func (c *CompositePolyOracle) Composition() Composition {
	return c.composition
}
