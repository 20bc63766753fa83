// SPDX-License-Identifier: MIT

// Package calib turns decomposition weights into concentration estimates
// through univariate calibration curves.
//
// 🚀 What lives here?
//
//	FitCurve regresses instrument responses (typically one component's
//	regression weights) against known standard concentrations by ordinary
//	least squares, and derives the method's figures of merit from the
//	blank noise level: the limit of detection LOD = 3.3·σ_blank/slope and
//	the limit of quantification LOQ = 10·σ_blank/slope. A fitted Curve
//	then inverts the line to estimate the concentration behind a new
//	response.
//
// ✨ Key features:
//   - ordinary least squares via gonum stat.LinearRegression
//   - R² goodness of fit alongside slope and intercept
//   - ICH-style LOD/LOQ from the blank standard deviation
//   - Predict / PredictAll to quantify unknown samples
//
// ⚙️ Usage:
//
//	conc := []float64{0, 0.5, 1, 2, 5}
//	resp := []float64{0.02, 0.26, 0.51, 1.03, 2.49}
//
//	curve, err := calib.FitCurve(conc, resp, 0.01)
//	if err != nil { ... }
//	c := curve.Predict(0.75) // concentration estimate
//
// A flat curve (zero slope) cannot detect anything: LOD and LOQ come back
// NaN with one warning, and Predict returns NaN. Degenerate standards
// (fewer than two points, or all at one concentration) are rejected with
// ErrDegenerate before any fit.
//
// Performance: O(n) per fit, O(1) per prediction.
package calib
