// SPDX-License-Identifier: MIT

// This file declares the options, result and reducer contract of the
// fixed-component regressor.
package regress

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrBadModel indicates an inconsistent component-matrix setup: a missing
// H, a reduced factor without its reducer (or vice versa), or mismatched
// component counts between H and HReduced.
var ErrBadModel = errors.New("regress: inconsistent component matrices")

// Reducer is the slice of the prefilter contract the regressor needs:
// forward transformation into the space the reduced factor lives in.
type Reducer interface {
	// Transform maps samples (n×features) into the reduced space (n×r).
	Transform(x *mat.Dense) (*mat.Dense, error)

	// OutputDim reports r, the reduced feature count.
	OutputDim() int
}

// Options configures batch solving.
//
// Fields:
//   - MaxIter — inner NNLS iteration cap per sample; 0 means the
//     Lawson–Hanson convention of 3·k.
//   - Tol     — dual-feasibility tolerance for the KKT test.
//   - Workers — concurrent samples; 0 means GOMAXPROCS.
type Options struct {
	MaxIter int
	Tol     float64
	Workers int
}

// DefaultTol is the dual-feasibility tolerance used when Tol is zero.
const DefaultTol = 1e-10

// DefaultOptions returns the canonical configuration: the 3·k iteration
// convention, DefaultTol, one worker per CPU.
func DefaultOptions() Options {
	return Options{MaxIter: 0, Tol: DefaultTol, Workers: 0}
}

// normalize fills zero-valued fields with defaults.
func (o *Options) normalize() {
	if o.Tol == 0 {
		o.Tol = DefaultTol
	}
}

// Result holds per-sample regression outcomes. Row i of W is the
// non-negative weight vector of sample i; Converged, Iterations and
// Residual are indexed the same way. Residual is ‖Hᵀw − x‖₂ in the space
// the regression ran in.
type Result struct {
	W          *mat.Dense
	Converged  []bool
	Iterations []int
	Residual   []float64
}
