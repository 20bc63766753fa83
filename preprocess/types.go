// SPDX-License-Identifier: MIT

// This file declares the sentinel errors, shared defaults, pipeline
// composition and input checks of the preprocess package.
package preprocess

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unmix/core"
)

// Sentinel errors for preprocess parameters. Data-shape problems surface
// as core.ErrEmptyInput / core.ErrDimensionMismatch.
var (
	// ErrBadWindow indicates an even, too-small, or too-large smoothing
	// window.
	ErrBadWindow = errors.New("preprocess: window must be odd, at least 3, and no longer than the series")

	// ErrBadOrder indicates a polynomial or derivative order the data or
	// window cannot support.
	ErrBadOrder = errors.New("preprocess: order out of range")

	// ErrBadParam indicates a numeric parameter outside its domain
	// (negative smoothing strength, asymmetry outside (0,1), non-positive
	// temperature or rank, percentile outside [0,100]).
	ErrBadParam = errors.New("preprocess: parameter out of range")
)

// Default parameter values. Zero-valued arguments select these, mirroring
// the originating application's settings.
const (
	// DefaultAsLSLambda is the smoothness weight of the AsLS baseline.
	DefaultAsLSLambda = 1e4

	// DefaultAsLSAsymmetry is the positive-residual weight p.
	DefaultAsLSAsymmetry = 0.005

	// DefaultAsLSIterations is the reweighting round count.
	DefaultAsLSIterations = 10

	// DefaultBaselineSegments is how many segments supply polynomial
	// baseline anchors.
	DefaultBaselineSegments = 50

	// DefaultBaselinePercentile is the in-segment percentile used as the
	// anchor intensity.
	DefaultBaselinePercentile = 5.0
)

// Step is one pipeline stage: it receives the position axis and the
// current intensities and returns the transformed intensities. Stages
// that ignore the axis simply discard the first argument.
type Step func(x, y []float64) ([]float64, error)

// Chain applies steps left to right, starting from a copy of y. The axis
// is passed unchanged to every step. The first failing step aborts the
// pipeline with its position in the error.
// Complexity: sum of the steps.
func Chain(x, y []float64, steps ...Step) ([]float64, error) {
	if err := checkSeries(x, y); err != nil {
		return nil, err
	}

	cur := append([]float64(nil), y...)
	for i, step := range steps {
		next, err := step(x, cur)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		cur = next
	}

	return cur, nil
}

// checkSeries validates a paired axis and intensity series.
func checkSeries(x, y []float64) error {
	if len(y) == 0 {
		return fmt.Errorf("preprocess: %w", core.ErrEmptyInput)
	}
	if len(x) != len(y) {
		return fmt.Errorf("preprocess: positions(%d) vs intensities(%d): %w",
			len(x), len(y), core.ErrDimensionMismatch)
	}

	return nil
}

// checkIntensities validates an intensity-only series.
func checkIntensities(y []float64) error {
	if len(y) == 0 {
		return fmt.Errorf("preprocess: %w", core.ErrEmptyInput)
	}

	return nil
}
