package oracle

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// A Composition is a low-degree multivariate polynomial combining the values
// of several multilinears into one. The same composition object may back
// several composite oracles; it is shared by pointer and never mutated after
// construction.
type Composition interface {
	// NVars returns the arity of the composition, i.e. the number of
	// multilinears it combines
	NVars() int
	// Degree returns the maximum individual degree of the polynomial,
	// e.g. Degree(x*y + x) = 2
	Degree() int
	// Evaluate computes the composition on a query of length NVars
	Evaluate(query []fr.Element) (fr.Element, error)
	// BinaryTowerLevel returns the tower height needed to represent the
	// composition's own constants
	BinaryTowerLevel() int
}

// BilinearProduct returns the composition (x, y) -> x * y, the shape used by
// the shift-reduction constraints.
func BilinearProduct() Composition {
	return Var(0).Mul(Var(1))
}

type exprKind uint8

const (
	exprConst exprKind = iota
	exprVar
	exprAdd
	exprMul
	exprPow
)

// Expr is an arithmetic-expression implementation of Composition. Expressions
// are built from Var and Const leaves with Add, Mul and Pow; they are
// immutable, so subtrees may be shared freely.
type Expr struct {
	kind     exprKind
	value    fr.Element // exprConst
	index    int        // exprVar
	args     [2]*Expr   // exprAdd, exprMul; args[0] only for exprPow
	exponent int        // exprPow
}

// Var returns the expression selecting the i-th multilinear of the query
func Var(i int) *Expr {
	return &Expr{kind: exprVar, index: i}
}

// Const returns a constant expression
func Const(v fr.Element) *Expr {
	return &Expr{kind: exprConst, value: v}
}

// ConstUint64 returns a constant expression from a small integer
func ConstUint64(v uint64) *Expr {
	var e fr.Element
	e.SetUint64(v)
	return Const(e)
}

// Add returns the expression e + other
func (e *Expr) Add(other *Expr) *Expr {
	return &Expr{kind: exprAdd, args: [2]*Expr{e, other}}
}

// Mul returns the expression e * other
func (e *Expr) Mul(other *Expr) *Expr {
	return &Expr{kind: exprMul, args: [2]*Expr{e, other}}
}

// Pow returns the expression e^k, k >= 1
func (e *Expr) Pow(k int) *Expr {
	return &Expr{kind: exprPow, args: [2]*Expr{e, nil}, exponent: k}
}

// NVars returns the arity of the expression: one more than the largest
// variable index appearing in it
func (e *Expr) NVars() int {
	switch e.kind {
	case exprConst:
		return 0
	case exprVar:
		return e.index + 1
	case exprPow:
		return e.args[0].NVars()
	default:
		return max(e.args[0].NVars(), e.args[1].NVars())
	}
}

// Degree returns the total degree of the expression
func (e *Expr) Degree() int {
	switch e.kind {
	case exprConst:
		return 0
	case exprVar:
		return 1
	case exprAdd:
		return max(e.args[0].Degree(), e.args[1].Degree())
	case exprMul:
		return e.args[0].Degree() + e.args[1].Degree()
	default:
		return e.args[0].Degree() * e.exponent
	}
}

// Evaluate computes the expression on the given query
func (e *Expr) Evaluate(query []fr.Element) (fr.Element, error) {
	if n := e.NVars(); len(query) < n {
		return fr.Element{}, &InvalidQueryLengthError{Expected: n, Actual: len(query)}
	}
	return e.eval(query), nil
}

func (e *Expr) eval(query []fr.Element) fr.Element {
	var res fr.Element
	switch e.kind {
	case exprConst:
		res.Set(&e.value)
	case exprVar:
		res.Set(&query[e.index])
	case exprAdd:
		l, r := e.args[0].eval(query), e.args[1].eval(query)
		res.Add(&l, &r)
	case exprMul:
		l, r := e.args[0].eval(query), e.args[1].eval(query)
		res.Mul(&l, &r)
	case exprPow:
		base := e.args[0].eval(query)
		res.SetOne()
		for i := 0; i < e.exponent; i++ {
			res.Mul(&res, &base)
		}
	}
	return res
}

// BinaryTowerLevel returns the maximum tower level of the expression's
// constants: the smallest level whose field is wide enough for each of them.
func (e *Expr) BinaryTowerLevel() int {
	switch e.kind {
	case exprConst:
		return ConstantTowerLevel(e.value)
	case exprVar:
		return 0
	case exprPow:
		return e.args[0].BinaryTowerLevel()
	default:
		return max(e.args[0].BinaryTowerLevel(), e.args[1].BinaryTowerLevel())
	}
}

// ConstantTowerLevel returns the smallest tower level k such that the value
// fits in 2^k bits. The element is taken out of Montgomery form first; the
// raw limbs have no meaningful bit length.
func ConstantTowerLevel(v fr.Element) int {
	bits := v.BigInt(new(big.Int)).BitLen()
	level := 0
	for 1<<level < bits {
		level++
	}
	return level
}
