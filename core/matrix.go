// SPDX-License-Identifier: MIT

// This file provides matrix helpers shared by the numeric packages:
// non-negativity clamps and structural shape checks over gonum matrices.
package core

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ClampNonNegative zeroes every negative entry of m in place.
// Complexity: O(r·c).
func ClampNonNegative(m *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) < 0 {
				m.Set(i, j, 0)
			}
		}
	}
}

// ClampNonNegativeSlice zeroes every negative entry of v in place.
// Complexity: O(n).
func ClampNonNegativeSlice(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
}

// NonNegativeCopy returns a fresh dense copy of x with every negative entry
// clamped to zero. The input is never modified.
// Complexity: O(r·c).
func NonNegativeCopy(x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.CloneFrom(x)
	ClampNonNegative(&out)

	return &out
}

// CheckNonEmpty returns ErrEmptyInput when x is nil or has a zero dimension.
func CheckNonEmpty(x mat.Matrix) error {
	if x == nil {
		return fmt.Errorf("nil matrix: %w", ErrEmptyInput)
	}
	if r, c := x.Dims(); r == 0 || c == 0 {
		return fmt.Errorf("%dx%d matrix: %w", r, c, ErrEmptyInput)
	}

	return nil
}

// CheckCols returns ErrDimensionMismatch when x does not have want columns.
// Structural checks like this run before any computation starts.
func CheckCols(x mat.Matrix, want int) error {
	if _, c := x.Dims(); c != want {
		return fmt.Errorf("got %d columns, want %d: %w", c, want, ErrDimensionMismatch)
	}

	return nil
}

// CheckLen returns ErrDimensionMismatch when v does not have want entries.
func CheckLen(v []float64, want int) error {
	if len(v) != want {
		return fmt.Errorf("got %d entries, want %d: %w", len(v), want, ErrDimensionMismatch)
	}

	return nil
}
