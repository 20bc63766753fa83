// SPDX-License-Identifier: MIT

// Package nmf factorizes a non-negative spectral matrix X into W·H with
// W ≥ 0 and H ≥ 0, using alternating non-negative least squares solved by
// projected gradients (Lin, 2007).
//
// 🚀 What is NMF here?
//
//	Given n mixed spectra over m features, Fit finds k pure-component
//	spectra (rows of H) and per-sample abundances (rows of W) so that
//	X ≈ W·H elementwise non-negatively.  It is the decomposition core of
//	the module and is used for:
//	  • unmixing overlapping component spectra
//	  • estimating concentration-like weights per sample
//	  • producing a fixed H for later component regression
//
// ✨ Key features:
//   - monotone objective: ½‖X−WH‖²_F never increases across iterations
//   - NNDSVD or seeded random initialization (deterministic either way)
//   - optional Reducer: factorize in a reduced space, map H back through
//     the reducer's inverse transform (clamped at zero)
//   - optional per-feature emphasis weights for region-focused fits
//   - cooperative cancellation via context at every outer iteration
//
// ⚙️ Usage:
//
//	opts := nmf.DefaultOptions() // K=2, MaxIter=200, Tol=1e-4, Seed=42
//	opts.K = 3
//
//	res, err := nmf.Fit(ctx, X, opts)
//	if err != nil { ... }
//	// res.W (n×k), res.H (k×m), res.Converged, res.FinalError
//
// Components carry no canonical order. Compare against references with a
// correlation- or cosine-based assignment, never by index.
//
// Non-convergence at MaxIter is not an error: the best iterate is returned
// with Converged=false and one slog warning.
//
// Performance: O(MaxIter · sub · n·m·k) time, O(n·m) memory.
package nmf
