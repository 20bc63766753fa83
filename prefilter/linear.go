// SPDX-License-Identifier: MIT

// Package prefilter - centered thin-SVD projection (Linear).
package prefilter

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
)

// Linear is a fitted principal-component projection: column-mean centering
// followed by the top right singular vectors of the centered matrix.
type Linear struct {
	mean       []float64  // per-feature column means
	basis      *mat.Dense // features×r, orthonormal columns
	explained  []float64  // per-component sample variance, descending
	totalVar   float64    // variance across all singular values
	features   int
	components int
}

// FitLinear fits an r-component linear projection to x (samples×features).
//
// r must satisfy 1 ≤ r ≤ min(samples, features): a thin SVD cannot supply
// more directions than the smaller dimension. Variance accounting uses the
// n−1 sample convention.
//
// Complexity: O(n·m·min(n,m)) time, O(m·r) memory retained.
func FitLinear(x *mat.Dense, components int) (*Linear, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	n, m := x.Dims()
	limit := m
	if n < m {
		limit = n
	}
	if err := checkComponents(components, limit); err != nil {
		return nil, err
	}

	mean := make([]float64, m)
	centered := mat.NewDense(n, m, nil)
	for j := 0; j < m; j++ {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			centered.Set(i, j, x.At(i, j)-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("prefilter: svd did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)
	sv := svd.Values(nil)

	denom := float64(n - 1)
	if n < 2 {
		denom = 1
	}
	explained := make([]float64, components)
	var total float64
	for i, s := range sv {
		variance := s * s / denom
		total += variance
		if i < components {
			explained[i] = variance
		}
	}

	return &Linear{
		mean:       mean,
		basis:      mat.DenseCopyOf(v.Slice(0, m, 0, components)),
		explained:  explained,
		totalVar:   total,
		features:   m,
		components: components,
	}, nil
}

// Transform projects x (n×features) into the component space (n×r).
func (l *Linear) Transform(x *mat.Dense) (*mat.Dense, error) {
	if l.basis == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	if err := core.CheckCols(x, l.features); err != nil {
		return nil, err
	}

	n, _ := x.Dims()
	centered := mat.NewDense(n, l.features, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < l.features; j++ {
			centered.Set(i, j, x.At(i, j)-l.mean[j])
		}
	}
	out := mat.NewDense(n, l.components, nil)
	out.Mul(centered, l.basis)

	return out, nil
}

// InverseTransform maps reduced rows (n×r) back to the original feature
// space and re-adds the column means.
func (l *Linear) InverseTransform(z *mat.Dense) (*mat.Dense, error) {
	if l.basis == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(z); err != nil {
		return nil, err
	}
	if err := core.CheckCols(z, l.components); err != nil {
		return nil, err
	}

	n, _ := z.Dims()
	out := mat.NewDense(n, l.features, nil)
	out.Mul(z, l.basis.T())
	for i := 0; i < n; i++ {
		for j := 0; j < l.features; j++ {
			out.Set(i, j, out.At(i, j)+l.mean[j])
		}
	}

	return out, nil
}

// Components reports the retained component count r.
func (l *Linear) Components() int { return l.components }

// OutputDim reports Components; it lets a Linear serve as a decomposition
// or regression reducer.
func (l *Linear) OutputDim() int { return l.components }

// InputDim reports the feature count the model was fitted on.
func (l *Linear) InputDim() int { return l.features }

// Kind reports KindLinear.
func (l *Linear) Kind() Kind { return KindLinear }

// Mean returns a copy of the per-feature means.
func (l *Linear) Mean() []float64 {
	return append([]float64(nil), l.mean...)
}

// ExplainedVariance returns a copy of the per-component sample variances,
// in descending order.
func (l *Linear) ExplainedVariance() []float64 {
	return append([]float64(nil), l.explained...)
}

// ExplainedVarianceRatio returns each retained component's share of the
// total variance, in (0, 1].
func (l *Linear) ExplainedVarianceRatio() []float64 {
	out := make([]float64, len(l.explained))
	if l.totalVar == 0 {
		return out
	}
	for i, v := range l.explained {
		out[i] = v / l.totalVar
	}

	return out
}

// String formats a short description for logs.
func (l *Linear) String() string {
	return fmt.Sprintf("prefilter.Linear(%d→%d)", l.features, l.components)
}
