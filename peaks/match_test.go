package peaks_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/peaks"
)

// trace builds a Spectrum of summed unit Gaussians (σ = 2) over [0, 100]
// sampled every 0.5, so on-grid centers become exact peak positions.
func trace(t *testing.T, centers ...float64) core.Spectrum {
	t.Helper()
	x := make([]float64, 201)
	y := make([]float64, 201)
	for i := range x {
		x[i] = float64(i) * 0.5
		for _, c := range centers {
			d := (x[i] - c) / 2
			y[i] += math.Exp(-0.5 * d * d)
		}
	}
	s, err := core.NewSpectrum(x, y)
	require.NoError(t, err)

	return s
}

// TestMatch_ToleranceWindow pairs close peaks and rejects a 100-unit
// mismatch at tolerance 5.
func TestMatch_ToleranceWindow(t *testing.T) {
	refPos := []float64{1000, 1200, 1500}
	tgtPos := []float64{1001, 1199, 1600}
	idx := []int{0, 1, 2}

	pairs := peaks.Match(idx, idx, refPos, tgtPos, 5)

	require.Len(t, pairs, 2)
	assert.Equal(t, peaks.Pair{Ref: 0, Target: 0, Distance: 1}, pairs[0])
	assert.Equal(t, peaks.Pair{Ref: 1, Target: 1, Distance: 1}, pairs[1])
}

// TestMatch_ClaimedNearestRejects refuses the fallthrough to a farther
// target when the nearest one is already claimed, even though the
// farther target would satisfy the tolerance.
func TestMatch_ClaimedNearestRejects(t *testing.T) {
	refPos := []float64{10, 11}
	tgtPos := []float64{10.4, 11.8}

	pairs := peaks.Match([]int{0, 1}, []int{0, 1}, refPos, tgtPos, 5)

	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].Ref)
	assert.Equal(t, 0, pairs[0].Target)
}

// TestMatch_NegativeTolerance accepts nothing, even exact coincidences.
func TestMatch_NegativeTolerance(t *testing.T) {
	pos := []float64{10}

	pairs := peaks.Match([]int{0}, []int{0}, pos, pos, -1)

	assert.Empty(t, pairs)
}

// TestMatchSpectra_AllPeaks reports the reference spectrum's own peaks,
// defaulting the reference to the last spectrum.
func TestMatchSpectra_AllPeaks(t *testing.T) {
	spectra := []core.Spectrum{
		trace(t, 20, 50),
		trace(t, 20.5, 50.5, 80),
	}
	opts := peaks.DefaultMatchOptions()
	opts.Detect = peaks.DetectOptions{Prominence: 0.4}

	out, err := peaks.MatchSpectra(spectra, opts)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, []float64{20.5, 50.5, 80}, out[1].Positions)
}

// TestMatchSpectra_MatchedOnly reports, per non-reference spectrum, the
// reference peaks that spectrum matched within the default tolerance.
func TestMatchSpectra_MatchedOnly(t *testing.T) {
	spectra := []core.Spectrum{
		trace(t, 21, 51),
		trace(t, 20, 50, 80),
	}
	opts := peaks.MatchOptions{
		Mode:           peaks.ModeMatchedOnly,
		ReferenceIndex: 1,
		Detect:         peaks.DetectOptions{Prominence: 0.4},
	}

	out, err := peaks.MatchSpectra(spectra, opts)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, []float64{20, 50}, out[0].Positions)
}

// TestMatchSpectra_AllMatched intersects matches across every other
// spectrum. The 50 band fails against the second spectrum and the 80
// band against the first — in both cases the nearest candidate sits 29
// units away, far outside the default tolerance — leaving only the 20
// band in every intersection.
func TestMatchSpectra_AllMatched(t *testing.T) {
	spectra := []core.Spectrum{
		trace(t, 21, 51),
		trace(t, 19, 79),
		trace(t, 20, 50, 80),
	}
	opts := peaks.MatchOptions{
		Mode:           peaks.ModeAllMatched,
		ReferenceIndex: -1,
		Detect:         peaks.DetectOptions{Prominence: 0.4},
	}

	out, err := peaks.MatchSpectra(spectra, opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []float64{20}, out[2].Positions)

	// A lone spectrum matches vacuously: every reference peak qualifies.
	out, err = peaks.MatchSpectra(spectra[2:], opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 50, 80}, out[0].Positions)
}

// TestMatchSpectra_TopDisplay reports the reference peaks matched by the
// first spectrum in display order.
func TestMatchSpectra_TopDisplay(t *testing.T) {
	spectra := []core.Spectrum{
		trace(t, 21, 51),
		trace(t, 19, 79),
		trace(t, 20, 80),
	}
	opts := peaks.MatchOptions{
		Mode:           peaks.ModeTopDisplay,
		ReferenceIndex: -1,
		Tolerance:      2,
		Detect:         peaks.DetectOptions{Prominence: 0.4},
	}

	out, err := peaks.MatchSpectra(spectra, opts)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, []float64{20}, out[0].Positions)
}

// TestMatchSpectra_Validation covers the structural error paths.
func TestMatchSpectra_Validation(t *testing.T) {
	spectra := []core.Spectrum{trace(t, 20)}

	_, err := peaks.MatchSpectra(nil, peaks.DefaultMatchOptions())
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	opts := peaks.DefaultMatchOptions()
	opts.Mode = peaks.Mode(42)
	_, err = peaks.MatchSpectra(spectra, opts)
	assert.ErrorIs(t, err, peaks.ErrUnknownMode)

	opts = peaks.DefaultMatchOptions()
	opts.ReferenceIndex = 3
	_, err = peaks.MatchSpectra(spectra, opts)
	assert.ErrorIs(t, err, peaks.ErrBadReference)
}

// TestMode_String names every mode.
func TestMode_String(t *testing.T) {
	assert.Equal(t, "all-peaks", peaks.ModeAllPeaks.String())
	assert.Equal(t, "matched-only", peaks.ModeMatchedOnly.String())
	assert.Equal(t, "all-matched", peaks.ModeAllMatched.String())
	assert.Equal(t, "top-display", peaks.ModeTopDisplay.String())
	assert.Equal(t, "unknown", peaks.Mode(9).String())
}
