// SPDX-License-Identifier: MIT

// This file implements the Bose–Einstein thermal correction and numeric
// derivatives over a non-uniform axis.
package preprocess

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unmix/core"
)

// Physical constants for the Bose–Einstein correction, with the speed of
// light in cm/s so wavenumbers convert directly.
const (
	planckJS       = 6.62607015e-34
	lightCmPerS    = 2.99792458e10
	boltzmannJPerK = 1.380649e-23
)

// BoseEinstein removes the thermal phonon-population enhancement of
// low-shift Raman intensity: y·(1 − exp(−hcν̃/kT)). With laserNM ≤ 0 the
// axis x is already the Raman shift in cm⁻¹; with laserNM > 0 the axis
// is absolute wavelength in nanometers and each point is converted to a
// shift against the laser line first. Shifts whose population factor is
// within 1e-6 of one pass through uncorrected instead of being zeroed.
// Complexity: O(n).
func BoseEinstein(x, y []float64, temperatureK, laserNM float64) ([]float64, error) {
	if err := checkSeries(x, y); err != nil {
		return nil, err
	}
	if temperatureK <= 0 {
		return nil, fmt.Errorf("temperature %g K: %w", temperatureK, ErrBadParam)
	}

	out := make([]float64, len(y))
	for i, shift := range x {
		if laserNM > 0 {
			// Absolute-wavelength axis: ν̃ = 1e7/λ_laser − 1e7/λ, in cm⁻¹.
			shift = 1e7/laserNM - 1e7/x[i]
		}
		arg := planckJS * shift * lightCmPerS / (boltzmannJPerK * temperatureK)
		if math.Exp(arg) > 1.000001 {
			out[i] = y[i] * (1 - math.Exp(-arg))
		} else {
			out[i] = y[i]
		}
	}

	return out, nil
}

// Derivative differentiates y against a strictly ascending, possibly
// non-uniform axis: second-order central differences in the interior,
// one-sided differences at the edges. Order 2 applies the operator
// twice.
// Complexity: O(n·order).
func Derivative(x, y []float64, order int) ([]float64, error) {
	if err := checkSeries(x, y); err != nil {
		return nil, err
	}
	if order != 1 && order != 2 {
		return nil, fmt.Errorf("derivative order %d: %w", order, ErrBadOrder)
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("derivative over %d samples: %w", len(x), ErrBadParam)
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("positions not strictly ascending at index %d: %w",
				i, core.ErrDimensionMismatch)
		}
	}

	cur := append([]float64(nil), y...)
	for pass := 0; pass < order; pass++ {
		cur = gradient(x, cur)
	}

	return cur, nil
}

// gradient is one differentiation pass; the unequal-spacing interior
// stencil is exact for quadratics.
func gradient(x, y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hd := x[i] - x[i-1]
		hs := x[i+1] - x[i]
		out[i] = (hd*hd*y[i+1] + (hs*hs-hd*hd)*y[i] - hs*hs*y[i-1]) /
			(hs * hd * (hd + hs))
	}

	return out
}
