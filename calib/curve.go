// SPDX-License-Identifier: MIT

// This file implements the calibration fit and the fitted Curve.
package calib

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
)

// ErrDegenerate indicates standards a line cannot be fitted through:
// fewer than two points, all points at one concentration, or a negative
// blank standard deviation.
var ErrDegenerate = errors.New("calib: degenerate calibration input")

// LOD and LOQ multipliers on σ_blank/slope (ICH Q2 convention).
const (
	lodFactor = 3.3
	loqFactor = 10.0
)

// Curve is a fitted univariate calibration line response = Slope·c +
// Intercept, together with its figures of merit. A Curve is immutable and
// safe for concurrent readers.
type Curve struct {
	// Slope and Intercept define the fitted line.
	Slope     float64
	Intercept float64

	// R2 is the coefficient of determination of the fit.
	R2 float64

	// LOD and LOQ are the limits of detection and quantification in
	// concentration units, NaN when the curve is flat.
	LOD float64
	LOQ float64

	// BlankSD is the blank standard deviation the limits derive from.
	BlankSD float64
}

// FitCurve fits a least-squares line through (concentration, response)
// standards and derives LOD/LOQ from the blank standard deviation.
//
// The slices are parallel: concentrations[i] is the known analyte level
// of standard i and responses[i] the measured signal (for this module,
// typically one component's regression weight). A zero slope yields NaN
// limits plus one warning rather than an error: the line itself is still
// a valid, if useless, fit.
//
// Complexity: O(n).
func FitCurve(concentrations, responses []float64, blankSD float64) (*Curve, error) {
	if len(concentrations) == 0 {
		return nil, fmt.Errorf("calib: %w", core.ErrEmptyInput)
	}
	if len(concentrations) != len(responses) {
		return nil, fmt.Errorf("calib: concentrations(%d) vs responses(%d): %w",
			len(concentrations), len(responses), core.ErrDimensionMismatch)
	}
	if len(concentrations) < 2 {
		return nil, fmt.Errorf("need at least 2 standards, got %d: %w",
			len(concentrations), ErrDegenerate)
	}
	if stat.Variance(concentrations, nil) == 0 {
		return nil, fmt.Errorf("all standards at one concentration: %w", ErrDegenerate)
	}
	if blankSD < 0 || math.IsNaN(blankSD) {
		return nil, fmt.Errorf("blank standard deviation %g: %w", blankSD, ErrDegenerate)
	}

	intercept, slope := stat.LinearRegression(concentrations, responses, nil, false)
	r2 := stat.RSquared(concentrations, responses, nil, intercept, slope)

	lod, loq := math.NaN(), math.NaN()
	if slope != 0 {
		lod = lodFactor * blankSD / slope
		loq = loqFactor * blankSD / slope
	} else {
		slog.Warn("calib: flat calibration curve, limits undefined",
			"standards", len(concentrations), "intercept", intercept)
	}

	return &Curve{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
		LOD:       lod,
		LOQ:       loq,
		BlankSD:   blankSD,
	}, nil
}

// Predict inverts the line: the concentration whose expected response is
// the given value. A flat curve returns NaN.
func (c *Curve) Predict(response float64) float64 {
	if c.Slope == 0 {
		return math.NaN()
	}

	return (response - c.Intercept) / c.Slope
}

// PredictAll applies Predict to every response.
func (c *Curve) PredictAll(responses []float64) []float64 {
	out := make([]float64, len(responses))
	for i, r := range responses {
		out[i] = c.Predict(r)
	}

	return out
}

// Detectable reports whether the response clears the detection limit:
// the predicted concentration is at least LOD. A flat curve detects
// nothing.
func (c *Curve) Detectable(response float64) bool {
	p := c.Predict(response)

	return !math.IsNaN(p) && p >= c.LOD
}

// String formats the line and its limits for logs.
func (c *Curve) String() string {
	return fmt.Sprintf("calib.Curve(slope=%.4g, intercept=%.4g, R²=%.4f, LOD=%.4g, LOQ=%.4g)",
		c.Slope, c.Intercept, c.R2, c.LOD, c.LOQ)
}
