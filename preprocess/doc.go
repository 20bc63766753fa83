// SPDX-License-Identifier: MIT

// Package preprocess conditions spectra before decomposition or peak work.
//
// 🚀 What lives here?
//
//	Stateless per-spectrum transforms: Savitzky–Golay smoothing, two
//	baseline correctors (asymmetric least squares and segmented
//	polynomial), intensity normalizations, dynamic-range compression,
//	the Bose–Einstein thermal correction, truncated-SVD denoising over
//	a whole spectra matrix, and numeric derivatives on a non-uniform
//	axis. Every function returns a new slice and leaves its input
//	untouched, so steps compose freely — Chain runs a pipeline of them.
//
// ✨ Key features:
//   - SavitzkyGolay: convolution coefficients from a Vandermonde QR
//     solve, mirror-padded edges, exact on polynomials up to the order
//   - BaselineAsLS: (W + λ·DᵀD)z = W·y with second-difference D and
//     sign-asymmetric weights, solved by dense symmetric Cholesky
//   - BaselinePolynomial: low-percentile segment anchors, least-squares
//     polynomial, subtracted without clamping
//   - NormalizeMax / NormalizeArea / SNV, TransformLog1p / TransformSqrt
//   - BoseEinstein: y·(1 − exp(−hcν̃/kT)) phonon-population correction
//   - DenoiseSVD: rank-limited reconstruction clamped at zero
//   - Derivative: first or second central differences, one-sided edges
//
// ⚙️ Usage:
//
//	smooth, err := preprocess.SavitzkyGolay(y, 15, 3)
//	flat, err := preprocess.BaselineAsLS(smooth, 0, 0, 0) // defaults
//
//	out, err := preprocess.Chain(x, y,
//	        func(_, y []float64) ([]float64, error) { return preprocess.SavitzkyGolay(y, 15, 3) },
//	        func(x, y []float64) ([]float64, error) { return preprocess.NormalizeArea(x, y) },
//	)
//
// Performance: SavitzkyGolay O(n·window), BaselineAsLS O(iters·n³) from
// the dense factorization, everything else O(n) or O(n·rank).
package preprocess
