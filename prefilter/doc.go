// SPDX-License-Identifier: MIT

// Package prefilter reduces spectral dimensionality before decomposition
// and maps the reduced factors back to the original feature space.
//
// 🚀 Why a prefilter?
//
//	Raman and FTIR spectra carry hundreds to thousands of correlated
//	features. Factorizing a reduced representation is faster and often
//	more stable; the fitted model then carries H back into the original
//	space for interpretation.  Three families are provided:
//	  • Linear      — centered thin-SVD projection (classic PCA)
//	  • ChainedNMF  — a second non-negative factorization as the reducer,
//	    keeping every intermediate quantity interpretable and ≥ 0
//	  • Autoencoder — a shallow ReLU network with a sparse latent code,
//	    for curved manifolds linear projections miss
//
// ✨ Key features:
//   - one Model interface: Transform, InverseTransform, Components,
//     OutputDim, InputDim, Kind
//   - every fitted model plugs into nmf.Options.Reducer and regress.New
//     without adapters
//   - deterministic fits: SVD is exact, the autoencoder trains from a
//     seeded source (seed 0 selects the fixed default)
//   - explained-variance report on Linear for choosing r
//
// ⚙️ Usage:
//
//	lin, err := prefilter.FitLinear(x, 8)
//	if err != nil { ... }
//
//	opts := nmf.DefaultOptions()
//	opts.Reducer = lin
//	res, err := nmf.Fit(ctx, x, opts)
//
// Transform rejects inputs whose width differs from InputDim;
// InverseTransform expects Components-wide input. Models are immutable
// after fit and safe for concurrent readers.
//
// Performance: Linear O(n·m·min(n,m)), ChainedNMF as nmf.Fit,
// Autoencoder O(epochs·n·m·r).
package prefilter
