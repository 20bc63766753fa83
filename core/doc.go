// SPDX-License-Identifier: MIT

// Package core defines the shared data model of the unmix module:
// the Spectrum value type, non-negativity helpers for gonum matrices,
// and the sentinel error taxonomy used by every sibling package.
//
// The engine operates on two shapes of data:
//
//   - Spectrum — one measured trace: parallel Positions/Intensities slices
//     with strictly ascending positions.
//   - *mat.Dense — a batch of spectra already aligned onto one position
//     grid: rows are samples, columns are features. Aligning spectra onto
//     a common grid is the caller's responsibility.
//
// Non-negativity is the central invariant. Every factorization input must
// be elementwise ≥ 0; ClampNonNegative and NonNegativeCopy enforce it.
//
// Errors:
//
//	ErrDimensionMismatch        - feature count differs between model and data.
//	ErrFilterUndersized         - reduced dimension smaller than component count.
//	ErrInsufficientCleanSamples - robust fit kept too few exemplars (recovered).
//	ErrNotFitted                - model method called before a successful fit.
//	ErrEmptyInput               - input holds no rows, columns, or samples.
//	ErrDetectionFailure         - peak-finding primitive failed (recovered).
//
// Sibling packages wrap these with fmt.Errorf("...: %w", core.ErrX); match
// them with errors.Is. Structural errors (dimension mismatch, undersized
// filter) are raised before any computation starts. Numerical
// non-convergence is never an error anywhere in the module; it is reported
// through Converged flags.
package core
