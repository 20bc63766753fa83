// SPDX-License-Identifier: MIT

// This file implements Savitzky–Golay smoothing with mirror-padded edges.
package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay smooths y with a least-squares polynomial convolution:
// within every window of the given odd length a polynomial of the given
// order is fitted and evaluated at the center sample. Edges are
// mirror-padded (reflection about the edge sample, without repeating
// it). The filter reproduces any polynomial of degree ≤ order exactly.
// Complexity: O(window·order²) setup plus O(n·window) convolution.
func SavitzkyGolay(y []float64, window, order int) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}
	if window < 3 || window%2 == 0 || window > len(y) {
		return nil, fmt.Errorf("window %d over %d samples: %w", window, len(y), ErrBadWindow)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("order %d with window %d: %w", order, window, ErrBadOrder)
	}

	coeffs, err := savgolCoeffs(window, order)
	if err != nil {
		return nil, err
	}

	half := window / 2
	out := make([]float64, len(y))
	for i := range y {
		var acc float64
		for j := 0; j < window; j++ {
			acc += coeffs[j] * y[reflectIndex(i+j-half, len(y))]
		}
		out[i] = acc
	}

	return out, nil
}

// savgolCoeffs computes the center-evaluation convolution coefficients:
// the center row of the projection J(JᵀJ)⁻¹Jᵀ onto polynomials of the
// given order over the window offsets, obtained from one QR
// least-squares solve against the center unit vector.
func savgolCoeffs(window, order int) ([]float64, error) {
	half := window / 2
	design := mat.NewDense(window, order+1, nil)
	for r := 0; r < window; r++ {
		t := float64(r - half)
		p := 1.0
		for c := 0; c <= order; c++ {
			design.Set(r, c, p)
			p *= t
		}
	}

	center := mat.NewVecDense(window, nil)
	center.SetVec(half, 1)

	var qr mat.QR
	qr.Factorize(design)
	var a mat.VecDense
	if err := qr.SolveVecTo(&a, false, center); err != nil {
		return nil, fmt.Errorf("smoothing design solve: %w", err)
	}

	var projected mat.VecDense
	projected.MulVec(design, &a)

	coeffs := make([]float64, window)
	for r := range coeffs {
		coeffs[r] = projected.AtVec(r)
	}

	return coeffs, nil
}

// reflectIndex maps an out-of-range index back into [0, n) by mirroring
// about the edge samples without repeating them.
func reflectIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}

	return i
}
