// SPDX-License-Identifier: MIT

// Package background separates broad mineral/substrate background from
// organic signal in spectra, using a robust two-pass linear model.
//
// 🚀 Why two passes?
//
//	A plain PCA background model learns whatever dominates the data —
//	including the organic bands it is supposed to preserve and the
//	occasional contaminated sample. The separator therefore:
//	  1. fits a first model only on wavenumber regions where organic
//	     signal is NOT expected (C–H stretch and amide/water bands are
//	     masked out),
//	  2. ranks samples by how badly that model explains them and keeps
//	     the cleanest 1−Contamination fraction,
//	  3. refits on the clean samples across ALL features.
//
//	The result reconstructs background shapes without ever having been
//	taught by outliers or organic peaks.
//
// ✨ Key features:
//   - inclusive position masking with spectroscopy defaults
//     (2800–3050, 1600–1750 cm⁻¹)
//   - percentile cutoff via gonum stat.Quantile
//   - graceful degradation: too few clean samples falls back to a
//     single-pass unmasked fit, flagged and logged, never an error
//   - Transform(x) ≡ x − Reconstruct(x) exactly, by construction
//
// ⚙️ Usage:
//
//	model, err := background.Fit(ctx, x, positions, background.DefaultOptions())
//	if err != nil { ... }
//
//	signal, err := model.Transform(sample)   // background-free residual
//	ex, err := model.Explain(sample)         // raw, background, residual
//
// Performance: two thin SVDs over the sample matrix, O(n·m·min(n,m)).
package background
