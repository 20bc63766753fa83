// Package unmix turns stacks of measured spectra into interpretable
// parts — component signatures, per-sample abundances, separated
// backgrounds and matched peak positions.
//
// 🚀 What is unmix?
//
//	A numeric toolkit for spectral unmixing built on gonum, covering:
//		• Preprocessing: Savitzky–Golay smoothing, AsLS & polynomial baselines,
//		  normalizations, Bose–Einstein correction, derivatives, SVD denoising
//		• Prefilters: linear PCA, chained NMF and a shallow autoencoder that
//		  shrink wide spectra before the expensive factorization
//		• Decomposition: projected-gradient NMF with NNDSVD initialization
//		• Regression: Lawson–Hanson NNLS against a fixed signature library
//		• Background: robust low-rank separation of sparse foreground bands
//		• Peaks: plateau-aware detection plus tolerance-based matching
//		• Calibration: concentration curves with LOD/LOQ from blank noise
//
// ✨ Why choose unmix?
//
//   - Deterministic – every stochastic step takes a seed and falls back to a fixed one
//   - Defensive numerics – shape checks up front, sentinel errors, graceful fallbacks
//   - Context-aware – iterative fits honor cancellation between sweeps
//   - Pure Go – gonum under the hood, no cgo, no external runtime
//
// Under the hood, everything is organized under eight subpackages:
//
//	background/ — robust background/foreground separation for mixed scenes
//	calib/      — calibration curves: slope, R², LOD/LOQ, inverse prediction
//	core/       — shared Spectrum type, sentinel errors & matrix guards
//	nmf/        — non-negative matrix factorization (projected gradient)
//	peaks/      — peak detection & cross-spectrum position matching
//	prefilter/  — PCA / chained-NMF / autoencoder dimensionality reduction
//	preprocess/ — smoothing, baselines, normalizations, physics corrections
//	regress/    — non-negative least squares over a fixed component library
//
// Quick pipeline sketch:
//
//	raw ─▶ preprocess ─▶ prefilter ─▶ nmf ─▶ W·H
//	                         │
//	                         └─▶ regress ─▶ abundances ─▶ calib
//
//	measured spectra decompose into component signatures (H) weighted by
//	per-sample abundances (W), with backgrounds and peak positions
//	handled by their own packages.
//
// Next up: streaming decomposition, sparse solvers and GPU-backed fits.
// Dive into README.md for full examples and a feature matrix.
//
//	go get github.com/katalvlaran/unmix
package unmix
