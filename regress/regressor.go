// SPDX-License-Identifier: MIT

// Package regress - batch regressor over a fixed component matrix.
package regress

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
)

// Regressor regresses new spectra against a fixed component matrix.
// Build one with New, then call Solve or SolveOne as often as needed; a
// Regressor is immutable and safe for concurrent use.
type Regressor struct {
	h        *mat.Dense // components in the original space, k×features
	hReduced *mat.Dense // components in the reduced space, k×r (nil without reducer)
	reducer  Reducer
	at       *mat.Dense // transposed active component matrix, d×k
	k        int        // component count
	features int        // expected incoming feature count
	opts     Options
}

// New builds a Regressor from a decomposition's component matrices.
//
// h is the k×features matrix in the original space. When the
// decomposition ran through a reducer, pass the same fitted reducer and
// its k×r factor hReduced; incoming samples are then transformed, clamped
// at zero, and regressed in the reduced space. With reducer == nil and
// hReduced == nil regression runs directly against h.
//
// Model state travels only through these arguments; New never consults
// ambient state, so a Result stays reproducible long after the fit that
// produced h.
func New(h, hReduced *mat.Dense, reducer Reducer, opts Options) (*Regressor, error) {
	if err := core.CheckNonEmpty(h); err != nil {
		return nil, err
	}
	if (hReduced == nil) != (reducer == nil) {
		return nil, fmt.Errorf("reduced factor and reducer come as a pair: %w", ErrBadModel)
	}
	opts.normalize()

	k, features := h.Dims()
	active := h
	if reducer != nil {
		if err := core.CheckNonEmpty(hReduced); err != nil {
			return nil, err
		}
		kr, r := hReduced.Dims()
		if kr != k {
			return nil, fmt.Errorf("h has %d components, reduced factor %d: %w", k, kr, ErrBadModel)
		}
		if r != reducer.OutputDim() {
			return nil, fmt.Errorf("reduced factor has %d columns, reducer outputs %d: %w",
				r, reducer.OutputDim(), core.ErrDimensionMismatch)
		}
		active = hReduced
	}

	return &Regressor{
		h:        h,
		hReduced: hReduced,
		reducer:  reducer,
		at:       mat.DenseCopyOf(active.T()),
		k:        k,
		features: features,
		opts:     opts,
	}, nil
}

// Components reports k, the number of fixed components.
func (g *Regressor) Components() int { return g.k }

// Features reports the feature count incoming samples must have.
func (g *Regressor) Features() int { return g.features }

// Solve regresses every row of x (n×features) independently and in
// parallel. Row i of the result's W is the non-negative weight vector of
// sample i. Per-sample non-convergence is reported through
// Result.Converged plus one aggregated slog warning; the only errors are
// structural (shape) or a cancelled context.
//
// Complexity: O(n/workers · iter·k³) time, O(n·k) memory.
func (g *Regressor) Solve(ctx context.Context, x *mat.Dense) (*Result, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	if err := core.CheckCols(x, g.features); err != nil {
		return nil, err
	}

	samples := x
	if g.reducer != nil {
		reduced, err := g.reducer.Transform(x)
		if err != nil {
			return nil, fmt.Errorf("reduce samples: %w", err)
		}
		core.ClampNonNegative(reduced)
		samples = reduced
	}

	n, _ := samples.Dims()
	res := &Result{
		W:          mat.NewDense(n, g.k, nil),
		Converged:  make([]bool, n),
		Iterations: make([]int, n),
		Residual:   make([]float64, n),
	}

	workers := g.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	// Each worker owns disjoint result rows, so no locking is needed.
	rows := make(chan int)
	var wg sync.WaitGroup
	for wkr := 0; wkr < workers; wkr++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				sol, err := NNLS(g.at, mat.Row(nil, i, samples), g.opts.MaxIter, g.opts.Tol)
				if err != nil {
					// Shapes were validated up front; unreachable by construction.
					continue
				}
				res.W.SetRow(i, sol.X)
				res.Converged[i] = sol.Converged
				res.Iterations[i] = sol.Iterations
				res.Residual[i] = sol.Residual
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case rows <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(rows)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var unconverged int
	for _, ok := range res.Converged {
		if !ok {
			unconverged++
		}
	}
	if unconverged > 0 {
		slog.Warn("regress: iteration cap reached for some samples",
			"samples", n, "unconverged", unconverged)
	}

	return res, nil
}

// SolveOne regresses a single sample.
func (g *Regressor) SolveOne(x []float64) (Solution, error) {
	if err := core.CheckLen(x, g.features); err != nil {
		return Solution{}, err
	}

	row := x
	if g.reducer != nil {
		reduced, err := g.reducer.Transform(mat.NewDense(1, len(x), append([]float64(nil), x...)))
		if err != nil {
			return Solution{}, fmt.Errorf("reduce sample: %w", err)
		}
		core.ClampNonNegative(reduced)
		row = mat.Row(nil, 0, reduced)
	}

	return NNLS(g.at, row, g.opts.MaxIter, g.opts.Tol)
}
