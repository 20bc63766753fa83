// SPDX-License-Identifier: MIT

// Package nmf - the Fit entry point and the alternating outer loop.
package nmf

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
)

// tolFloor keeps the per-factor subproblem tolerances from starting at
// zero when the caller asks for an extremely tight overall tolerance.
const tolFloor = 0.001

// Fit factorizes x (n samples × m features) into Result.W and Result.H.
//
// Steps:
//  1. Normalize and validate options; structural errors surface before any
//     numeric work (core.ErrFilterUndersized, core.ErrDimensionMismatch).
//  2. Copy x with negatives clamped at zero; the caller's data is never
//     modified. Apply feature weights or the reducer when configured.
//  3. Initialize W, H (NNDSVD or seeded random) and run the alternating
//     projected-gradient loop until the joint projected-gradient norm
//     drops below Tol·(initial norm) or MaxIter is reached.
//  4. Map H back to the original feature space (inverse transform or
//     weight unscaling), clamping any residual negatives at zero.
//
// Reaching MaxIter is reported as Result.Converged=false plus one slog
// warning, never as an error. The only error after validation is a
// cancelled context.
//
// Complexity: O(MaxIter · n·m·k) time, O(n·m) memory.
func Fit(ctx context.Context, x mat.Matrix, opts Options) (*Result, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	_, m := x.Dims()
	if opts.Reducer != nil {
		if r := opts.Reducer.OutputDim(); r < opts.K {
			return nil, fmt.Errorf("reducer keeps %d features for k=%d: %w",
				r, opts.K, core.ErrFilterUndersized)
		}
	}
	if opts.FeatureWeights != nil {
		if err := core.CheckLen(opts.FeatureWeights, m); err != nil {
			return nil, err
		}
		if err := checkWeights(opts.FeatureWeights); err != nil {
			return nil, err
		}
	}

	// Factorization input: non-negative copy, then weighting or reduction.
	z := core.NonNegativeCopy(x)
	if opts.FeatureWeights != nil {
		scaleColumns(z, opts.FeatureWeights)
	}
	if opts.Reducer != nil {
		zr, err := opts.Reducer.Transform(z)
		if err != nil {
			return nil, fmt.Errorf("reduce input: %w", err)
		}
		core.ClampNonNegative(zr)
		z = zr
	}

	w, h, err := initFactors(z, opts.K, opts.Init, opts.Seed)
	if err != nil {
		return nil, err
	}

	res := &Result{InitialError: reconError(z, w, h)}
	if res.W, h, res.Iterations, res.Converged, err = factorize(ctx, z, w, h, opts); err != nil {
		return nil, err
	}
	res.FinalError = reconError(z, res.W, h)
	if !res.Converged {
		slog.Warn("nmf: iteration cap reached without convergence",
			"iterations", res.Iterations, "error", res.FinalError)
	}

	// Map H back to the original feature space.
	switch {
	case opts.Reducer != nil:
		res.HReduced = h
		full, invErr := opts.Reducer.InverseTransform(h)
		if invErr != nil {
			return nil, fmt.Errorf("inverse transform of components: %w", invErr)
		}
		core.ClampNonNegative(full)
		res.H = full
	case opts.FeatureWeights != nil:
		unscaleColumns(h, opts.FeatureWeights)
		res.H = h
		res.HReduced = h
	default:
		res.H = h
		res.HReduced = h
	}

	return res, nil
}

// factorize runs the alternating outer loop on z ≥ 0, mutating nothing but
// its own factor copies. It returns the final factors, the number of outer
// iterations, and whether the projected-gradient test was met.
func factorize(ctx context.Context, z, w, h *mat.Dense, opts Options) (*mat.Dense, *mat.Dense, int, bool, error) {
	// Initial gradients: ∇_W = W(HHᵀ) − ZHᵀ, ∇_H = (WᵀW)H − WᵀZ.
	var gw, gh mat.Dense
	var tmp mat.Dense
	tmp.Mul(h, h.T())
	gw.Mul(w, &tmp)
	var zht mat.Dense
	zht.Mul(z, h.T())
	gw.Sub(&gw, &zht)

	tmp.Reset()
	tmp.Mul(w.T(), w)
	gh.Mul(&tmp, h)
	var wtz mat.Dense
	wtz.Mul(w.T(), z)
	gh.Sub(&gh, &wtz)

	grad0 := math.Sqrt(sumSquares(&gw) + sumSquares(&gh))
	if grad0 == 0 {
		return w, h, 0, true, nil // already stationary (e.g. all-zero input)
	}
	tolW := math.Max(tolFloor, opts.Tol) * grad0
	tolH := tolW

	gwp, ghp := &gw, &gh
	converged := false
	iters := 0
	for i := 0; i < opts.MaxIter; i++ {
		// Cooperative cancellation at every iteration boundary.
		if err := ctx.Err(); err != nil {
			return nil, nil, iters, false, err
		}

		proj := math.Sqrt(projSquares(gwp, w) + projSquares(ghp, h))
		if proj < opts.Tol*grad0 {
			converged = true

			break
		}

		// W-step via transposition: Z ≈ WH  ⇔  Zᵀ ≈ Hᵀ·Wᵀ.
		zt := mat.DenseCopyOf(z.T())
		ht := mat.DenseCopyOf(h.T())
		wt := mat.DenseCopyOf(w.T())
		wNewT, gwT, steps, _ := pgSubproblem(zt, ht, wt, tolW)
		if steps == 0 {
			tolW *= stepShrink
		}
		w = mat.DenseCopyOf(wNewT.T())
		gwp = mat.DenseCopyOf(gwT.T())

		// H-step in natural orientation.
		var hNew *mat.Dense
		hNew, ghp, steps, _ = pgSubproblem(z, w, h, tolH)
		if steps == 0 {
			tolH *= stepShrink
		}
		h = hNew
		iters = i + 1
	}

	return w, h, iters, converged, nil
}

// reconError is the Frobenius reconstruction error ‖Z − W·H‖_F.
func reconError(z, w, h *mat.Dense) float64 {
	var r mat.Dense
	r.Mul(w, h)
	r.Sub(z, &r)

	return mat.Norm(&r, 2)
}

// sumSquares accumulates Σ v² over all entries.
func sumSquares(m *mat.Dense) float64 {
	var s float64
	for _, v := range m.RawMatrix().Data {
		s += v * v
	}

	return s
}

// projSquares accumulates Σ g² over the free set only: entries whose
// gradient is negative or whose factor entry is strictly positive. Entries
// pinned at the boundary with a non-negative gradient cannot move and are
// excluded from the convergence measure.
func projSquares(g, factor *mat.Dense) float64 {
	r, c := g.Dims()
	var s float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			gv := g.At(i, j)
			if gv < 0 || factor.At(i, j) > 0 {
				s += gv * gv
			}
		}
	}

	return s
}

// checkWeights rejects negative entries and all-zero weight vectors.
func checkWeights(w []float64) error {
	var positive bool
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("feature weight %d is negative: %w", i, ErrBadOptions)
		}
		if v > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("all feature weights are zero: %w", ErrBadOptions)
	}

	return nil
}

// scaleColumns multiplies column j of z by √w[j] in place.
func scaleColumns(z *mat.Dense, w []float64) {
	r, c := z.Dims()
	for j := 0; j < c; j++ {
		s := math.Sqrt(w[j])
		for i := 0; i < r; i++ {
			z.Set(i, j, z.At(i, j)*s)
		}
	}
}

// unscaleColumns divides column j of h by √w[j] in place; zero-weight
// columns carry no information and are restored as zero.
func unscaleColumns(h *mat.Dense, w []float64) {
	r, c := h.Dims()
	for j := 0; j < c; j++ {
		if w[j] == 0 {
			for i := 0; i < r; i++ {
				h.Set(i, j, 0)
			}

			continue
		}
		s := 1 / math.Sqrt(w[j])
		for i := 0; i < r; i++ {
			h.Set(i, j, h.At(i, j)*s)
		}
	}
}
