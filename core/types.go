// SPDX-License-Identifier: MIT

// This file declares the Spectrum value type, its constructor and
// validation, and the sentinel errors shared across the module.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all unmix packages.
var (
	// ErrDimensionMismatch indicates a feature count inconsistent between a
	// fitted model (or component matrix) and incoming data.
	ErrDimensionMismatch = errors.New("core: dimension mismatch")

	// ErrFilterUndersized indicates a reducer output dimension smaller than
	// the requested component count.
	ErrFilterUndersized = errors.New("core: reduced dimension smaller than component count")

	// ErrInsufficientCleanSamples indicates a robust fit retained fewer
	// exemplars than it needs. Callers recover by falling back to a
	// single-pass fit; the sentinel surfaces only in logs and diagnostics.
	ErrInsufficientCleanSamples = errors.New("core: insufficient clean samples")

	// ErrNotFitted indicates a model method was called before a fit.
	ErrNotFitted = errors.New("core: model is not fitted")

	// ErrEmptyInput indicates an input with no rows, columns, or samples.
	ErrEmptyInput = errors.New("core: empty input")

	// ErrDetectionFailure indicates the peak-finding primitive failed.
	// The peaks package recovers by returning an empty peak set.
	ErrDetectionFailure = errors.New("core: peak detection failed")
)

// Spectrum is one measured trace: intensity sampled at strictly ascending
// positions (wavenumbers, wavelengths, channels). Positions and Intensities
// are parallel slices of equal length.
//
// Spectrum is a value type with no internal locking; treat a published
// Spectrum as read-only when shared across goroutines.
type Spectrum struct {
	// Positions is the strictly ascending sampling axis.
	Positions []float64

	// Intensities holds one intensity per position.
	Intensities []float64
}

// NewSpectrum builds a Spectrum from parallel slices and validates it.
// The slices are referenced, not copied.
// Complexity: O(n) for validation.
func NewSpectrum(positions, intensities []float64) (Spectrum, error) {
	s := Spectrum{Positions: positions, Intensities: intensities}
	if err := s.Validate(); err != nil {
		return Spectrum{}, err
	}

	return s, nil
}

// Len reports the number of sampling points.
func (s Spectrum) Len() int { return len(s.Positions) }

// Validate checks the Spectrum invariants:
// equal non-zero slice lengths and strictly ascending positions.
// Complexity: O(n).
func (s Spectrum) Validate() error {
	if len(s.Positions) == 0 {
		return fmt.Errorf("spectrum has no points: %w", ErrEmptyInput)
	}
	if len(s.Positions) != len(s.Intensities) {
		return fmt.Errorf("positions(%d) vs intensities(%d): %w",
			len(s.Positions), len(s.Intensities), ErrDimensionMismatch)
	}
	for i := 1; i < len(s.Positions); i++ {
		if s.Positions[i] <= s.Positions[i-1] {
			return fmt.Errorf("positions not strictly ascending at index %d: %w", i, ErrDimensionMismatch)
		}
	}

	return nil
}

// Clone returns a deep copy of the Spectrum.
// Complexity: O(n).
func (s Spectrum) Clone() Spectrum {
	out := Spectrum{
		Positions:   make([]float64, len(s.Positions)),
		Intensities: make([]float64, len(s.Intensities)),
	}
	copy(out.Positions, s.Positions)
	copy(out.Intensities, s.Intensities)

	return out
}
