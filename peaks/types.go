// SPDX-License-Identifier: MIT

// This file declares the peak-set and matching value types, the detection
// and matching options, and the sentinel errors of the peaks package.
package peaks

import (
	"errors"
	"fmt"
)

// Sentinel errors for the matching layer. Detection never returns its own
// sentinel: primitive failures degrade to an empty PeakSet with a warning,
// and structural input problems surface as core.ErrEmptyInput /
// core.ErrDimensionMismatch.
var (
	// ErrUnknownMode indicates a Mode value outside the declared constants.
	ErrUnknownMode = errors.New("peaks: unknown matching mode")

	// ErrBadReference indicates a ReferenceIndex outside the spectra list.
	ErrBadReference = errors.New("peaks: reference index out of range")
)

// Mode selects what MatchSpectra reports for a set of spectra.
//
//   - ModeAllPeaks    — the reference spectrum's own peaks, nothing matched.
//   - ModeMatchedOnly — per non-reference spectrum, the reference peaks that
//     spectrum matched.
//   - ModeAllMatched  — the reference peaks matched by every non-reference
//     spectrum (set intersection).
//   - ModeTopDisplay  — the reference peaks matched by the first spectrum
//     in display order.
type Mode int

const (
	// ModeAllPeaks mode: report the reference peaks unconditionally.
	ModeAllPeaks Mode = iota

	// ModeMatchedOnly mode: report per-spectrum matched reference peaks.
	ModeMatchedOnly

	// ModeAllMatched mode: report the intersection across all spectra.
	ModeAllMatched

	// ModeTopDisplay mode: report reference peaks matched by spectrum 0.
	ModeTopDisplay
)

// String implements fmt.Stringer for diagnostics and logs.
func (m Mode) String() string {
	switch m {
	case ModeAllPeaks:
		return "all-peaks"
	case ModeMatchedOnly:
		return "matched-only"
	case ModeAllMatched:
		return "all-matched"
	case ModeTopDisplay:
		return "top-display"
	default:
		return "unknown"
	}
}

// DetectOptions configures a Detect call. Every field is optional: zero
// values are replaced by data-derived defaults, and values that cannot
// apply to the series at hand (a height above twice the data range, a
// distance longer than half the series) are treated as stale and replaced
// the same way.
//
// Fields:
//   - Height         — minimum peak height. 0 derives a floor from the data
//     scale: 0.01% of max(y) when max(y) > 0, mean(y)+0.05·std(y) otherwise.
//   - Distance       — minimum horizontal separation between kept peaks, in
//     samples. 0 derives max(1, 0.1% of the series length). The filter is
//     skipped entirely when the effective height floor is very small or the
//     resolved distance is 1, so dense low-contrast sweeps keep every
//     candidate.
//   - Prominence     — minimum prominence; applied only when > 0. Values
//     above twice the data range fall back to 0.1% of the range.
//   - Width          — minimum width in samples; applied only when > 0.
//   - WindowLength   — window for the prominence base search, in samples;
//     applied only when > 0. The primitive requires at least 2.
//   - RelativeHeight — relative height for width measurement; 0 means 0.5.
type DetectOptions struct {
	Height         float64
	Distance       float64
	Prominence     float64
	Width          float64
	WindowLength   int
	RelativeHeight float64
}

// PeakSet holds detected peaks and their measured properties as parallel
// slices. Indices and Heights are always filled; Positions is filled by
// Detect from the sampling axis. Prominences, LeftBases and RightBases are
// present when prominence or width filtering ran; Widths, WidthHeights,
// LeftIPs and RightIPs when width filtering ran. Absent properties are nil.
type PeakSet struct {
	// Indices are sample indices of the peaks, ascending.
	Indices []int

	// Positions are the axis values at Indices.
	Positions []float64

	// Heights are the intensities at Indices.
	Heights []float64

	// Prominences measure how much each peak stands out from the
	// surrounding baseline.
	Prominences []float64

	// LeftBases and RightBases are the sample indices of the prominence
	// bases on either side of each peak.
	LeftBases  []int
	RightBases []int

	// Widths are peak widths in samples, measured at WidthHeights.
	Widths []float64

	// WidthHeights are the evaluation heights of the width measurement.
	WidthHeights []float64

	// LeftIPs and RightIPs are interpolated crossing points (fractional
	// sample indices) of the width measurement.
	LeftIPs  []float64
	RightIPs []float64
}

// Len reports the number of detected peaks.
func (p PeakSet) Len() int { return len(p.Indices) }

// Pair records one accepted reference→target peak match.
type Pair struct {
	// Ref is the sample index of the peak in the reference spectrum.
	Ref int

	// Target is the sample index of the matched peak in the target spectrum.
	Target int

	// Distance is the absolute position difference between the two peaks.
	Distance float64
}

// MatchedPeaks reports a subset of the reference spectrum's peaks.
type MatchedPeaks struct {
	// Indices are sample indices into the reference spectrum, ascending.
	Indices []int

	// Positions are the reference-axis values at Indices.
	Positions []float64
}

// DefaultTolerance is the position tolerance used when MatchOptions.Tolerance
// is zero, in axis units.
const DefaultTolerance = 5.0

// MatchOptions configures a MatchSpectra call.
//
// Fields:
//   - Mode           — what to report; see Mode.
//   - ReferenceIndex — which spectrum is the reference. Negative values
//     select the last spectrum, the interactive default.
//   - Tolerance      — maximum |Δposition| for a match; 0 means
//     DefaultTolerance. A negative tolerance accepts nothing.
//   - Detect         — detection options applied to every spectrum.
type MatchOptions struct {
	Mode           Mode
	ReferenceIndex int
	Tolerance      float64
	Detect         DetectOptions
}

// DefaultMatchOptions returns the canonical configuration: ModeAllPeaks,
// reference = last spectrum, Tolerance = DefaultTolerance.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Mode:           ModeAllPeaks,
		ReferenceIndex: -1,
		Tolerance:      DefaultTolerance,
	}
}

// normalize resolves the reference index against the spectra count and
// validates the mode.
func (o *MatchOptions) normalize(spectra int) error {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.ReferenceIndex < 0 {
		o.ReferenceIndex = spectra - 1
	}
	if o.ReferenceIndex >= spectra {
		return fmt.Errorf("reference %d with %d spectra: %w", o.ReferenceIndex, spectra, ErrBadReference)
	}
	switch o.Mode {
	case ModeAllPeaks, ModeMatchedOnly, ModeAllMatched, ModeTopDisplay:
	default:
		return fmt.Errorf("mode %d: %w", int(o.Mode), ErrUnknownMode)
	}

	return nil
}
