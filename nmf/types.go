// SPDX-License-Identifier: MIT

// This file declares the options, result type, reducer contract and
// sentinel errors of the decomposition core.
package nmf

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for nmf configuration. Data-shape problems surface as
// core.ErrDimensionMismatch / core.ErrFilterUndersized / core.ErrEmptyInput.
var (
	// ErrBadComponents indicates a component count below one.
	ErrBadComponents = errors.New("nmf: component count must be at least 1")

	// ErrBadOptions indicates a negative iteration cap, tolerance, weight,
	// or an initialization that cannot be applied to the given shape.
	ErrBadOptions = errors.New("nmf: invalid options")

	// ErrWeightedReducer indicates FeatureWeights combined with a Reducer.
	// Emphasis weights are defined over original features only.
	ErrWeightedReducer = errors.New("nmf: feature weights cannot be combined with a reducer")
)

// InitMethod selects how W and H are initialized before iteration.
//
//   - InitNNDSVD — non-negative double SVD (Boutsidis–Gallopoulos), the
//     "a" variant with zeros filled by the matrix mean. Deterministic,
//     usually fewer iterations. Requires K ≤ min(n, features).
//
//   - InitRandom — |N(0,1)|·√(mean(X)/K) entries from the seeded source.
//     Deterministic for a fixed Seed.
type InitMethod int

const (
	// InitNNDSVD mode: deterministic SVD-based initialization (default).
	InitNNDSVD InitMethod = iota

	// InitRandom mode: seeded scaled absolute-normal initialization.
	InitRandom
)

// Reducer is the dimensionality-reduction contract the core accepts.
// Fitted prefilter models satisfy it. The core never fits a reducer;
// it only applies one that the caller already fitted.
type Reducer interface {
	// Transform maps X (n×features) into the reduced space (n×r).
	Transform(x *mat.Dense) (*mat.Dense, error)

	// InverseTransform maps reduced rows (k×r) back to (k×features).
	InverseTransform(z *mat.Dense) (*mat.Dense, error)

	// OutputDim reports r, the reduced feature count.
	OutputDim() int
}

// Options configures a Fit call.
//
// Fields:
//   - K              — number of components to extract (k ≥ 1).
//   - MaxIter        — outer iteration cap; reaching it is reported through
//     Result.Converged=false, never as an error.
//   - Tol            — relative projected-gradient tolerance for convergence.
//   - Seed           — RNG seed for InitRandom; 0 means the fixed default.
//   - Init           — InitNNDSVD (default) or InitRandom.
//   - Reducer        — optional fitted reducer; factorization runs in its
//     output space and H is mapped back through InverseTransform.
//   - FeatureWeights — optional per-feature emphasis (≥ 0, length =
//     features); columns are scaled by √w before factorization and H is
//     unscaled afterwards. Mutually exclusive with Reducer.
//
// Zero values of K, MaxIter, Tol and Seed are replaced by the defaults;
// negative values are rejected.
type Options struct {
	K              int
	MaxIter        int
	Tol            float64
	Seed           int64
	Init           InitMethod
	Reducer        Reducer
	FeatureWeights []float64
}

// Default option values. DefaultSeed mirrors the originating application's
// fixed reproducibility seed.
const (
	DefaultK       = 2
	DefaultMaxIter = 200
	DefaultTol     = 1e-4
	DefaultSeed    = 42
)

// DefaultOptions returns the canonical configuration:
// K=2, MaxIter=200, Tol=1e-4, Seed=42, Init=InitNNDSVD, no reducer.
func DefaultOptions() Options {
	return Options{
		K:       DefaultK,
		MaxIter: DefaultMaxIter,
		Tol:     DefaultTol,
		Seed:    DefaultSeed,
		Init:    InitNNDSVD,
	}
}

// normalize fills zero-valued fields with defaults and validates the rest.
func (o *Options) normalize() error {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.MaxIter == 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol == 0 {
		o.Tol = DefaultTol
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	switch {
	case o.K < 0:
		return ErrBadComponents
	case o.MaxIter < 0, o.Tol < 0:
		return ErrBadOptions
	case o.Init != InitNNDSVD && o.Init != InitRandom:
		return ErrBadOptions
	case o.Reducer != nil && o.FeatureWeights != nil:
		return ErrWeightedReducer
	}

	return nil
}

// Result holds the outcome of a Fit.
//
// W is n×k and H is k×features, both elementwise non-negative. H always
// lives in the original feature space: when a Reducer was configured,
// HReduced (k×r) is the factor actually iterated on and H is its inverse
// transform clamped at zero; without a Reducer, HReduced and H are the
// same matrix.
//
// InitialError and FinalError are ½-free Frobenius reconstruction errors
// ‖Z−WH‖_F measured in the factorized space (reduced and/or weighted when
// those options are active), before the first and after the last outer
// iteration. FinalError ≤ InitialError always holds.
type Result struct {
	W        *mat.Dense
	H        *mat.Dense
	HReduced *mat.Dense

	Iterations   int
	Converged    bool
	InitialError float64
	FinalError   float64
}
