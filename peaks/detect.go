// SPDX-License-Identifier: MIT

// This file implements adaptive peak detection: parameter inference from
// the data, the primitive call, and the degrade-to-empty failure policy.
package peaks

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
)

// Detect finds peaks in the series y sampled at x, inferring values for
// options the caller left at zero or set to values the data cannot
// support, then delegating to the find-peaks primitive.
//
// Structural problems — empty input, mismatched slice lengths — are
// returned as errors. A primitive failure is not: Detect logs one warning
// and returns an empty PeakSet with a nil error, so a sweep over many
// spectra survives one pathological trace.
// Complexity: O(n) plus the primitive's filter costs.
func Detect(x, y []float64, opts DetectOptions) (PeakSet, error) {
	if len(y) == 0 {
		return PeakSet{}, fmt.Errorf("detect: %w", core.ErrEmptyInput)
	}
	if len(x) != len(y) {
		return PeakSet{}, fmt.Errorf("detect: positions(%d) vs intensities(%d): %w",
			len(x), len(y), core.ErrDimensionMismatch)
	}

	set, err := findPeaks(y, resolveParams(y, opts))
	if err != nil {
		slog.Warn("peaks: detection failed, returning empty set",
			"cause", core.ErrDetectionFailure,
			"detail", err,
			"samples", len(y))

		return PeakSet{}, nil
	}

	set.Positions = make([]float64, len(set.Indices))
	for i, idx := range set.Indices {
		set.Positions[i] = x[idx]
	}

	return set, nil
}

// resolveParams turns caller options into primitive parameters, deriving
// data-driven defaults for absent values and replacing stale ones a
// previously viewed trace could have left behind.
func resolveParams(y []float64, opts DetectOptions) params {
	maxY, minY := math.Inf(-1), math.Inf(1)
	for _, v := range y {
		maxY = math.Max(maxY, v)
		minY = math.Min(minY, v)
	}
	span := maxY - minY

	// Height floor: derive from the data scale when unset, and treat a
	// floor above twice the data range as stale.
	height := opts.Height
	if height == 0 || (span > 0 && height > 2*span) {
		if maxY > 0 {
			height = maxY * 1e-4
		} else {
			sigma := stat.StdDev(y, nil)
			if math.IsNaN(sigma) {
				sigma = 0
			}
			height = stat.Mean(y, nil) + 0.05*sigma
		}
	}

	// Separation: derive from the series length when unset or longer than
	// half the series.
	distance := opts.Distance
	if distance == 0 || distance > float64(len(y))/2 {
		d := int(float64(len(y)) * 0.001)
		if d < 1 {
			d = 1
		}
		distance = float64(d)
	}

	// A near-zero height floor means the caller wants every candidate;
	// separation of one sample removes nothing either way.
	skip := height < 0 || (maxY > 0 && height < maxY*0.001) || distance == 1

	// A prominence above twice the data range cannot select anything;
	// fall back to a token threshold.
	prominence := opts.Prominence
	if prominence > 0 && span > 0 && prominence > 2*span {
		prominence = span * 0.001
	}

	relHeight := opts.RelativeHeight
	if relHeight == 0 {
		relHeight = 0.5
	}

	return params{
		height:       height,
		distance:     distance,
		prominence:   prominence,
		width:        opts.Width,
		wlen:         opts.WindowLength,
		relHeight:    relHeight,
		skipDistance: skip,
	}
}
