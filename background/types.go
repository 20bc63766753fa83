// SPDX-License-Identifier: MIT

// Package background - options, result types and sentinel errors.
package background

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors of the separator.
var (
	// ErrAllMasked reports that the masked ranges removed every feature.
	ErrAllMasked = errors.New("background: masked ranges cover the whole axis")

	// ErrBadOptions reports a component count below 1 or a contamination
	// fraction outside [0, 1).
	ErrBadOptions = errors.New("background: invalid options")
)

// Default separator configuration. The masked ranges cover the C–H
// stretch (2800–3050 cm⁻¹) and the amide/water band (1600–1750 cm⁻¹),
// the regions where organic signal lives.
const (
	DefaultComponents    = 6
	DefaultContamination = 0.1
)

// DefaultMaskedRanges returns a fresh copy of the default masked ranges.
func DefaultMaskedRanges() [][2]float64 {
	return [][2]float64{{2800, 3050}, {1600, 1750}}
}

// Options configures a Fit call. Zero values select the defaults.
//
// MaskedRanges lists inclusive [lo, hi] position intervals excluded from
// the first pass. nil selects the spectroscopy defaults; an empty
// non-nil slice disables masking entirely.
type Options struct {
	Components    int
	Contamination float64
	MaskedRanges  [][2]float64
}

// DefaultOptions returns the canonical configuration:
// Components=6, Contamination=0.1, default masked ranges.
func DefaultOptions() Options {
	return Options{
		Components:    DefaultComponents,
		Contamination: DefaultContamination,
		MaskedRanges:  DefaultMaskedRanges(),
	}
}

// normalize fills zero-valued fields with defaults and validates the rest.
func (o *Options) normalize() error {
	if o.Components == 0 {
		o.Components = DefaultComponents
	}
	if o.Contamination == 0 {
		o.Contamination = DefaultContamination
	}
	if o.MaskedRanges == nil {
		o.MaskedRanges = DefaultMaskedRanges()
	}
	if o.Components < 0 || o.Contamination < 0 || o.Contamination >= 1 {
		return ErrBadOptions
	}

	return nil
}

// Explanation decomposes one spectrum into its three views.
type Explanation struct {
	Raw        []float64 // copy of the input
	Background []float64 // model reconstruction
	Residual   []float64 // Raw − Background, the organic signal
}

// MatrixExplanation is the batch form of Explanation.
type MatrixExplanation struct {
	Raw        *mat.Dense
	Background *mat.Dense
	Residual   *mat.Dense
}
