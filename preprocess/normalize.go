// SPDX-License-Identifier: MIT

// This file implements the intensity normalizations and dynamic-range
// compressions.
package preprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormalizeMax scales y so its maximum becomes one. A zero maximum
// returns an unscaled copy rather than dividing by zero.
func NormalizeMax(y []float64) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}

	maxV := y[0]
	for _, v := range y[1:] {
		if v > maxV {
			maxV = v
		}
	}
	out := append([]float64(nil), y...)
	if maxV != 0 {
		floats.Scale(1/maxV, out)
	}

	return out, nil
}

// NormalizeArea scales y to unit trapezoidal area over the x axis. A
// zero area returns an unscaled copy.
func NormalizeArea(x, y []float64) ([]float64, error) {
	if err := checkSeries(x, y); err != nil {
		return nil, err
	}

	area := 0.0
	for i := 1; i < len(x); i++ {
		area += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	out := append([]float64(nil), y...)
	if area != 0 {
		floats.Scale(1/area, out)
	}

	return out, nil
}

// SNV applies the standard normal variate: center by the mean, scale by
// the population standard deviation. A zero spread returns an unchanged
// copy.
func SNV(y []float64) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}

	out := append([]float64(nil), y...)
	sigma := stat.PopStdDev(y, nil)
	if sigma == 0 {
		return out, nil
	}
	mean := stat.Mean(y, nil)
	for i := range out {
		out[i] = (out[i] - mean) / sigma
	}

	return out, nil
}

// TransformLog1p compresses dynamic range as ln(1 + y) after clamping
// negatives to zero, so the output is finite and non-negative.
func TransformLog1p(y []float64) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	for i, v := range y {
		if v < 0 {
			v = 0
		}
		out[i] = math.Log1p(v)
	}

	return out, nil
}

// TransformSqrt compresses dynamic range as √y after clamping negatives
// to zero.
func TransformSqrt(y []float64) ([]float64, error) {
	if err := checkIntensities(y); err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	for i, v := range y {
		if v < 0 {
			v = 0
		}
		out[i] = math.Sqrt(v)
	}

	return out, nil
}
