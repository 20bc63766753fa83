// SPDX-License-Identifier: MIT

// Package background - the robust two-pass fit.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/prefilter"
)

// Fit builds a robust background model from x (samples×features) and the
// shared position axis.
//
// Pass one fits a linear model on the unmasked columns only and scores
// every sample by its squared reconstruction residual there; samples at
// or below the 1−Contamination residual percentile count as clean. Pass
// two refits on the clean samples across all features. Fewer clean
// samples than Components+1 triggers the single-pass unmasked fallback:
// the model is still returned, Fallback() reports true, and one warning
// is logged. The context is consulted between the two passes.
//
// Complexity: O(n·m·min(n,m)) time, O(m·Components) memory retained.
func Fit(ctx context.Context, x *mat.Dense, positions []float64, opts Options) (*Model, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	n, m := x.Dims()
	if len(positions) != m {
		return nil, fmt.Errorf("positions has %d entries for %d features: %w",
			len(positions), m, core.ErrDimensionMismatch)
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	keep := keepMask(positions, opts.MaskedRanges)
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept == 0 {
		return nil, ErrAllMasked
	}

	masked := selectColumns(x, keep, kept)
	pass1, err := prefilter.FitLinear(masked, opts.Components)
	if err != nil {
		return nil, fmt.Errorf("masked fit: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	residuals, err := squaredResiduals(pass1, masked)
	if err != nil {
		return nil, fmt.Errorf("masked residuals: %w", err)
	}
	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)
	cutoff := stat.Quantile(1-opts.Contamination, stat.LinInterp, sorted, nil)

	clean := make([]int, 0, n)
	for i, r := range residuals {
		if r <= cutoff {
			clean = append(clean, i)
		}
	}

	if len(clean) < opts.Components+1 {
		slog.Warn("background: too few clean samples, single-pass fallback",
			"cause", core.ErrInsufficientCleanSamples,
			"clean", len(clean), "needed", opts.Components+1)

		final, ferr := prefilter.FitLinear(x, opts.Components)
		if ferr != nil {
			return nil, fmt.Errorf("fallback fit: %w", ferr)
		}

		return &Model{
			lin:          final,
			keep:         keep,
			ranges:       copyRanges(opts.MaskedRanges),
			features:     m,
			cleanSamples: n,
			cutoff:       cutoff,
			fallback:     true,
		}, nil
	}

	final, err := prefilter.FitLinear(selectRows(x, clean), opts.Components)
	if err != nil {
		return nil, fmt.Errorf("clean fit: %w", err)
	}

	return &Model{
		lin:          final,
		keep:         keep,
		ranges:       copyRanges(opts.MaskedRanges),
		features:     m,
		cleanSamples: len(clean),
		cutoff:       cutoff,
		fallback:     false,
	}, nil
}

// keepMask marks positions outside every masked range. Endpoints are
// inclusive on both sides.
func keepMask(positions []float64, ranges [][2]float64) []bool {
	keep := make([]bool, len(positions))
	for j, p := range positions {
		keep[j] = true
		for _, r := range ranges {
			if p >= r[0] && p <= r[1] {
				keep[j] = false

				break
			}
		}
	}

	return keep
}

// selectColumns copies the kept columns of x into a fresh n×kept matrix.
func selectColumns(x *mat.Dense, keep []bool, kept int) *mat.Dense {
	n, m := x.Dims()
	out := mat.NewDense(n, kept, nil)
	for i := 0; i < n; i++ {
		c := 0
		for j := 0; j < m; j++ {
			if keep[j] {
				out.Set(i, c, x.At(i, j))
				c++
			}
		}
	}

	return out
}

// selectRows copies the chosen rows of x into a fresh matrix.
func selectRows(x *mat.Dense, rows []int) *mat.Dense {
	_, m := x.Dims()
	out := mat.NewDense(len(rows), m, nil)
	for i, r := range rows {
		out.SetRow(i, x.RawRowView(r))
	}

	return out
}

// squaredResiduals scores each row of x by its squared reconstruction
// residual under lin.
func squaredResiduals(lin *prefilter.Linear, x *mat.Dense) ([]float64, error) {
	z, err := lin.Transform(x)
	if err != nil {
		return nil, err
	}
	recon, err := lin.InverseTransform(z)
	if err != nil {
		return nil, err
	}

	n, m := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < m; j++ {
			d := x.At(i, j) - recon.At(i, j)
			s += d * d
		}
		out[i] = s
	}

	return out, nil
}

// copyRanges deep-copies the masked ranges for the immutable model.
func copyRanges(ranges [][2]float64) [][2]float64 {
	return append([][2]float64(nil), ranges...)
}
