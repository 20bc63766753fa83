// SPDX-License-Identifier: MIT

// This file implements the two baseline correctors: asymmetric least
// squares and the segmented low-percentile polynomial.
package preprocess

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
)

// BaselineAsLS removes a smooth baseline fitted by asymmetric least
// squares: each round solves (W + λ·DᵀD)z = W·y with D the
// second-difference operator, then reweights by residual sign — p above
// the baseline, 1−p below — so peaks barely pull the fit upward. The
// fitted baseline is subtracted and the result clamped at zero. Zero
// values of lam, p and iters select DefaultAsLSLambda,
// DefaultAsLSAsymmetry and DefaultAsLSIterations.
// Complexity: O(iters·n³) from the dense factorization.
func BaselineAsLS(y []float64, lam, p float64, iters int) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}
	if lam == 0 {
		lam = DefaultAsLSLambda
	}
	if p == 0 {
		p = DefaultAsLSAsymmetry
	}
	if iters == 0 {
		iters = DefaultAsLSIterations
	}
	if lam < 0 || p < 0 || p >= 1 || iters < 0 {
		return nil, fmt.Errorf("lam %g, p %g, iters %d: %w", lam, p, iters, ErrBadParam)
	}
	n := len(y)
	if n < 3 {
		return nil, fmt.Errorf("series of %d samples: %w", n, ErrBadParam)
	}

	// Pentadiagonal smoothness penalty λ·DᵀD, assembled once from the
	// (1, −2, 1) column stencils.
	penalty := mat.NewSymDense(n, nil)
	for j := 0; j+2 < n; j++ {
		rows := [3]int{j, j + 1, j + 2}
		vals := [3]float64{1, -2, 1}
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				r, c := rows[a], rows[b]
				penalty.SetSym(r, c, penalty.At(r, c)+lam*vals[a]*vals[b])
			}
		}
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	z := mat.NewVecDense(n, nil)
	rhs := mat.NewVecDense(n, nil)
	system := mat.NewSymDense(n, nil)
	var ch mat.Cholesky

	for round := 0; round < iters; round++ {
		system.CopySym(penalty)
		for i := 0; i < n; i++ {
			system.SetSym(i, i, system.At(i, i)+w[i])
			rhs.SetVec(i, w[i]*y[i])
		}
		if !ch.Factorize(system) {
			return nil, fmt.Errorf("baseline system not positive definite: %w", ErrBadParam)
		}
		if err := ch.SolveVecTo(z, rhs); err != nil {
			return nil, fmt.Errorf("baseline solve: %w", err)
		}
		for i := 0; i < n; i++ {
			switch {
			case y[i] > z.AtVec(i):
				w[i] = p
			case y[i] < z.AtVec(i):
				w[i] = 1 - p
			default:
				w[i] = 0
			}
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = y[i] - z.AtVec(i)
	}
	core.ClampNonNegativeSlice(out)

	return out, nil
}

// BaselinePolynomial subtracts a polynomial baseline anchored at
// low-intensity points. The series splits into DefaultBaselineSegments
// segments (fewer when the series is short); each contributes one anchor
// at (mean position, in-segment percentile intensity); a polynomial of
// the given degree is least-squares fitted through the anchors and
// subtracted, without clamping. A zero percentile selects
// DefaultBaselinePercentile.
// Complexity: O(n log(n/segments) + segments·degree²).
func BaselinePolynomial(x, y []float64, degree int, percentile float64) ([]float64, error) {
	if err := checkSeries(x, y); err != nil {
		return nil, err
	}
	if degree < 0 || len(x) < degree+1 {
		return nil, fmt.Errorf("degree %d with %d samples: %w", degree, len(x), ErrBadOrder)
	}
	if percentile == 0 {
		percentile = DefaultBaselinePercentile
	}
	if percentile < 0 || percentile > 100 {
		return nil, fmt.Errorf("percentile %g: %w", percentile, ErrBadParam)
	}

	segments := DefaultBaselineSegments
	if segments > len(x) {
		segments = len(x)
	}
	if segments < degree+1 {
		segments = degree + 1
	}

	anchorX := make([]float64, 0, segments)
	anchorY := make([]float64, 0, segments)
	for s := 0; s < segments; s++ {
		start := s * len(x) / segments
		end := (s + 1) * len(x) / segments
		if end <= start {
			continue
		}
		seg := append([]float64(nil), y[start:end]...)
		sort.Float64s(seg)
		anchorX = append(anchorX, stat.Mean(x[start:end], nil))
		anchorY = append(anchorY, stat.Quantile(percentile/100, stat.LinInterp, seg, nil))
	}
	if len(anchorX) < degree+1 {
		return nil, fmt.Errorf("only %d anchors for degree %d: %w", len(anchorX), degree, ErrBadOrder)
	}

	vand := mat.NewDense(len(anchorX), degree+1, nil)
	for r, ax := range anchorX {
		p := 1.0
		for c := 0; c <= degree; c++ {
			vand.Set(r, c, p)
			p *= ax
		}
	}
	var coef mat.VecDense
	if err := coef.SolveVec(vand, mat.NewVecDense(len(anchorY), anchorY)); err != nil {
		return nil, fmt.Errorf("baseline polynomial fit: %w", err)
	}

	out := make([]float64, len(y))
	for i, xi := range x {
		b := 0.0
		for c := degree; c >= 0; c-- {
			b = b*xi + coef.AtVec(c)
		}
		out[i] = y[i] - b
	}

	return out, nil
}
