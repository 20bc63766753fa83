// SPDX-License-Identifier: MIT

// Package regress solves per-sample non-negative least squares against a
// fixed, previously learned component matrix ("component regression").
//
// 🚀 What is component regression?
//
//	A decomposition run produces pure-component spectra H. Later batches
//	of spectra are then explained in terms of that same H: for each new
//	sample x, find w ≥ 0 minimizing ‖Hᵀw − x‖₂. The weights are the
//	concentration-like abundances of the known components in x.
//
// ✨ Key features:
//   - Lawson–Hanson active-set NNLS (exact KKT solution per sample)
//   - explicit model passing: New takes H, the reduced factor and the
//     fitted reducer as arguments; nothing is read from ambient state
//   - embarrassingly parallel batches on a bounded worker pool
//   - non-convergence is a per-sample flag, never an error
//
// ⚙️ Usage:
//
//	reg, err := regress.New(res.H, res.HReduced, model, regress.DefaultOptions())
//	out, err := reg.Solve(ctx, newSpectra)
//	// out.W row i — weights for sample i; out.Converged[i]; out.Residual[i]
//
// When the decomposition used a reducer, incoming samples are passed
// through the same fitted reducer, clamped at zero, and regressed against
// the reduced factor; otherwise regression runs directly against H.
// Feature-count mismatches surface as core.ErrDimensionMismatch before
// any solving starts.
//
// Performance: one sample costs O(iter·k³ + d·k²) for k components over
// d features; samples are independent and solved concurrently.
package regress
