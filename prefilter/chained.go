// SPDX-License-Identifier: MIT

// Package prefilter - chained non-negative factorization reducer.
package prefilter

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/nmf"
	"github.com/katalvlaran/unmix/regress"
)

// ChainedNMF reduces spectra through a second non-negative factorization:
// the reduced representation is the coefficient matrix against a learned
// non-negative basis, so every intermediate quantity stays interpretable
// as a spectrum mixture.
type ChainedNMF struct {
	basis      *mat.Dense // r×features, ≥ 0
	basisT     *mat.Dense // features×r, cached for the coefficient solves
	features   int
	components int
	converged  bool
}

// FitChainedNMF factorizes x (samples×features) into r non-negative basis
// spectra. opts tunes the inner factorization; its K is overridden by
// components. Reaching the iteration cap is not an error: the fitted basis
// is the best iterate and Converged reports false.
//
// Complexity: as nmf.Fit with K = r.
func FitChainedNMF(ctx context.Context, x *mat.Dense, components int, opts nmf.Options) (*ChainedNMF, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	_, m := x.Dims()
	if err := checkComponents(components, m); err != nil {
		return nil, err
	}

	opts.K = components
	res, err := nmf.Fit(ctx, x, opts)
	if err != nil {
		return nil, fmt.Errorf("chained factorization: %w", err)
	}

	return &ChainedNMF{
		basis:      res.H,
		basisT:     mat.DenseCopyOf(res.H.T()),
		features:   m,
		components: components,
		converged:  res.Converged,
	}, nil
}

// Transform expresses each row of x (n×features) as non-negative
// coefficients against the fitted basis (n×r), solving one NNLS problem
// per sample. Solver caps resolve into the best iterate, never an error.
func (c *ChainedNMF) Transform(x *mat.Dense) (*mat.Dense, error) {
	if c.basis == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	if err := core.CheckCols(x, c.features); err != nil {
		return nil, err
	}

	n, _ := x.Dims()
	out := mat.NewDense(n, c.components, nil)
	for i := 0; i < n; i++ {
		sol, err := regress.NNLS(c.basisT, mat.Row(nil, i, x), 0, 0)
		if err != nil {
			return nil, fmt.Errorf("coefficients for row %d: %w", i, err)
		}
		out.SetRow(i, sol.X)
	}

	return out, nil
}

// InverseTransform reconstructs spectra from coefficients: Z·basis, a
// plain product with no centering since everything is non-negative.
func (c *ChainedNMF) InverseTransform(z *mat.Dense) (*mat.Dense, error) {
	if c.basis == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(z); err != nil {
		return nil, err
	}
	if err := core.CheckCols(z, c.components); err != nil {
		return nil, err
	}

	n, _ := z.Dims()
	out := mat.NewDense(n, c.features, nil)
	out.Mul(z, c.basis)

	return out, nil
}

// Components reports the basis size r.
func (c *ChainedNMF) Components() int { return c.components }

// OutputDim reports Components; it lets a ChainedNMF serve as a
// decomposition or regression reducer.
func (c *ChainedNMF) OutputDim() int { return c.components }

// InputDim reports the feature count the model was fitted on.
func (c *ChainedNMF) InputDim() int { return c.features }

// Kind reports KindChainedNMF.
func (c *ChainedNMF) Kind() Kind { return KindChainedNMF }

// Converged reports whether the inner factorization met its tolerance.
func (c *ChainedNMF) Converged() bool { return c.converged }

// Basis returns a copy of the fitted r×features basis.
func (c *ChainedNMF) Basis() *mat.Dense {
	if c.basis == nil {
		return nil
	}

	return mat.DenseCopyOf(c.basis)
}
