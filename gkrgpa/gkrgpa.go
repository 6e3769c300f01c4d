// Package gkrgpa implements the prover side of the grand product argument:
// a GKR-style layered protocol reducing the claim "the product of all
// hypercube values of a multilinear equals a scalar" to a single evaluation
// claim on that multilinear at a transcript-derived point. Several claims
// are batched under shared per-round challenges.
package gkrgpa

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/virtualpoly/towerproof/polynomial"
)

// GrandProductClaim asserts that the product of all 2^NVars hypercube values
// of some multilinear equals Product.
type GrandProductClaim struct {
	NVars   int
	Product fr.Element
}

// InvalidWitnessLengthError reports a witness table whose length does not
// match the declared variable count
type InvalidWitnessLengthError struct {
	Expected int
	Actual   int
}

func (e *InvalidWitnessLengthError) Error() string {
	return fmt.Sprintf("witness must have %d values, got %d", e.Expected, e.Actual)
}

// ErrMismatchedClaims signals a batch whose witness and claim counts differ
var ErrMismatchedClaims = errors.New("number of claims does not match the number of witnesses")

// ProductMismatchError reports a claim whose product does not equal its
// witness's grand product
type ProductMismatchError struct {
	Index int
}

func (e *ProductMismatchError) Error() string {
	return fmt.Sprintf("claim %d does not match the witness grand product", e.Index)
}

// GrandProductWitness holds the hypercube of values whose product is claimed
// together with the partial-product layers of the binary product tree:
// layers[0] is the raw table and layers[k][i] is the product of the i-th
// block of 2^k adjacent values, so the top layer's single cell is the full
// product.
type GrandProductWitness struct {
	nVars  int
	layers []polynomial.MultiLin
}

// NewGrandProductWitness builds the product tree over the given values. It
// fails when the table length does not equal 2^nVars.
func NewGrandProductWitness(nVars int, values polynomial.MultiLin) (*GrandProductWitness, error) {
	if len(values) != 1<<nVars {
		return nil, &InvalidWitnessLengthError{Expected: 1 << nVars, Actual: len(values)}
	}

	layers := make([]polynomial.MultiLin, nVars+1)
	layers[0] = values
	for k := 1; k <= nVars; k++ {
		prev := layers[k-1]
		layer := make(polynomial.MultiLin, len(prev)/2)
		for i := range layer {
			layer[i].Mul(&prev[2*i], &prev[2*i+1])
		}
		layers[k] = layer
	}

	return &GrandProductWitness{nVars: nVars, layers: layers}, nil
}

// NewGrandProductWitnesses builds one witness per table on parallel workers.
// All tables must have 2^nVars values.
func NewGrandProductWitnesses(nVars int, tables []polynomial.MultiLin) ([]*GrandProductWitness, error) {
	witnesses := make([]*GrandProductWitness, len(tables))

	var g errgroup.Group
	for i := range tables {
		g.Go(func() error {
			w, err := NewGrandProductWitness(nVars, tables[i])
			witnesses[i] = w
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return witnesses, nil
}

func (w *GrandProductWitness) NVars() int { return w.nVars }

// GrandProductEvaluation reads the top layer's single cell, the full product
func (w *GrandProductWitness) GrandProductEvaluation() fr.Element {
	return w.layers[w.nVars][0]
}
