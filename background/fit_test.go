package background_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/background"
	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/prefilter"
)

// axis builds m positions evenly spanning [400, 3500] cm⁻¹.
func axis(m int) []float64 {
	pos := make([]float64, m)
	for j := range pos {
		pos[j] = 400 + (3500-400)*float64(j)/float64(m-1)
	}

	return pos
}

// broad evaluates a wide Gaussian bump over the position axis.
func broad(pos []float64, center, sigma float64) []float64 {
	y := make([]float64, len(pos))
	for j, p := range pos {
		d := (p - center) / sigma
		y[j] = math.Exp(-0.5 * d * d)
	}

	return y
}

// nearestIndex finds the axis index closest to a position.
func nearestIndex(pos []float64, p float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, q := range pos {
		if d := math.Abs(q - p); d < bestDist {
			best, bestDist = j, d
		}
	}

	return best
}

// mineralScene builds 100 clean substrate spectra plus 10 contaminated
// ones carrying an organic C–H band (2900, masked region) and a modest
// single-channel artifact in the unmasked region. Each dirty sample gets
// its own artifact channel, so the artifacts span ten directions that
// six components cannot absorb, yet every one stands out in residuals.
// Returns the matrix, the axis, and the channel indices of sample 105's
// artifact and of the organic band.
func mineralScene() (*mat.Dense, []float64, int, int) {
	const (
		nClean = 100
		nDirty = 10
		m      = 160
	)
	pos := axis(m)
	shapes := [][]float64{
		broad(pos, 900, 500),
		broad(pos, 1900, 700),
		broad(pos, 3100, 600),
	}
	organic := broad(pos, 2900, 30)
	organicIdx := nearestIndex(pos, 2900)

	rng := rand.New(rand.NewSource(17))
	x := mat.NewDense(nClean+nDirty, m, nil)
	for i := 0; i < nClean+nDirty; i++ {
		c := []float64{1 + rng.Float64(), 0.5 + rng.Float64(), 0.2 + rng.Float64()}
		for j := 0; j < m; j++ {
			v := c[0]*shapes[0][j] + c[1]*shapes[1][j] + c[2]*shapes[2][j]
			v += 0.01 * rng.NormFloat64()
			x.Set(i, j, v)
		}
		if i >= nClean {
			for j := 0; j < m; j++ {
				x.Set(i, j, x.At(i, j)+20*organic[j])
			}
			spike := nearestIndex(pos, 1850+float64(i-nClean)*100)
			x.Set(i, spike, x.At(i, spike)+1)
		}
	}

	return x, pos, nearestIndex(pos, 1850+5*100), organicIdx
}

// tightScene builds 100 clean spectra whose substrate spans exactly five
// directions — one of them a narrow band living inside the default C–H
// mask — plus 10 contaminated samples carrying a dominant organic band
// and per-sample spike artifacts. With a five-component budget a naive
// fit must spend a direction on the contamination and lose a substrate
// direction; the two-pass fit never trains on the contamination at all.
func tightScene() (*mat.Dense, []float64) {
	const (
		nClean = 100
		nDirty = 10
		m      = 160
	)
	pos := axis(m)
	shapes := [][]float64{
		broad(pos, 900, 500),
		broad(pos, 1900, 700),
		broad(pos, 3100, 600),
		broad(pos, 1650, 300),
		broad(pos, 2925, 120),
	}
	organic := broad(pos, 2900, 30)

	rng := rand.New(rand.NewSource(23))
	x := mat.NewDense(nClean+nDirty, m, nil)
	c := make([]float64, len(shapes))
	for i := 0; i < nClean+nDirty; i++ {
		for s := range c {
			c[s] = 0.2 + rng.Float64()
		}
		for j := 0; j < m; j++ {
			v := 0.01 * rng.NormFloat64()
			for s, shape := range shapes {
				v += c[s] * shape[j]
			}
			x.Set(i, j, v)
		}
		if i >= nClean {
			for j := 0; j < m; j++ {
				x.Set(i, j, x.At(i, j)+20*organic[j])
			}
			spike := nearestIndex(pos, 1850+float64(i-nClean)*90)
			x.Set(i, spike, x.At(i, spike)+1)
		}
	}

	return x, pos
}

// TestFit_BeatsNaiveFit pits the two-pass model against a single-pass
// PCA of the same size on contaminated data. Reconstruction error for
// the clean samples over the masked channels must come out no worse:
// the naive fit burns a component on the dominant contamination band
// and loses a substrate direction, while the two-pass fit learns all
// of the substrate from clean samples.
func TestFit_BeatsNaiveFit(t *testing.T) {
	x, pos := tightScene()

	opts := background.DefaultOptions()
	opts.Components = 5
	model, err := background.Fit(context.Background(), x, pos, opts)
	require.NoError(t, err)
	require.False(t, model.Fallback())

	naive, err := prefilter.FitLinear(x, 5)
	require.NoError(t, err)
	nz, err := naive.Transform(x)
	require.NoError(t, err)
	nrecon, err := naive.InverseTransform(nz)
	require.NoError(t, err)

	ex, err := model.ExplainMatrix(x)
	require.NoError(t, err)

	mask := model.Mask()
	var robustSSE, naiveSSE float64
	for i := 0; i < 100; i++ {
		for j, kept := range mask {
			if kept {
				continue
			}
			dr := x.At(i, j) - ex.Background.At(i, j)
			dn := x.At(i, j) - nrecon.At(i, j)
			robustSSE += dr * dr
			naiveSSE += dn * dn
		}
	}

	assert.Less(t, robustSSE, naiveSSE,
		"two-pass masked-region error on clean samples must not exceed the naive fit's")
}

// TestFit_RobustSeparation is the end-to-end property: the model learns
// substrate shapes from clean samples only, reconstructs clean spectra
// almost perfectly, and leaves contamination in the residual.
func TestFit_RobustSeparation(t *testing.T) {
	x, pos, artifactIdx, organicIdx := mineralScene()

	model, err := background.Fit(context.Background(), x, pos, background.DefaultOptions())
	require.NoError(t, err)

	assert.False(t, model.Fallback(), "plenty of clean samples, no fallback expected")
	assert.InDelta(t, 100, model.CleanSamples(), 4, "roughly the clean population survives")

	// A clean sample: background explains nearly everything.
	cleanRow := mat.Row(nil, 0, x)
	resid, err := model.Transform(cleanRow)
	require.NoError(t, err)
	rel := floats.Norm(resid, 2) / floats.Norm(cleanRow, 2)
	assert.Less(t, rel, 0.05, "clean sample should be mostly background")

	// A contaminated sample: both the organic band and the artifact must
	// survive into the residual instead of becoming "background".
	dirtyRow := mat.Row(nil, 105, x)
	ex, err := model.Explain(dirtyRow)
	require.NoError(t, err)
	assert.Greater(t, ex.Residual[organicIdx], 10.0,
		"organic band must stay out of the background model")
	assert.Greater(t, ex.Residual[artifactIdx], 0.5,
		"artifact must not be absorbed into the background model")
}

// TestFit_TransformIdentity verifies the exactness contract on both the
// single-sample and the batch paths: residual ≡ raw − background with zero
// tolerance.
func TestFit_TransformIdentity(t *testing.T) {
	x, pos, _, _ := mineralScene()
	model, err := background.Fit(context.Background(), x, pos, background.DefaultOptions())
	require.NoError(t, err)

	row := mat.Row(nil, 3, x)
	resid, err := model.Transform(row)
	require.NoError(t, err)
	ex, err := model.Explain(row)
	require.NoError(t, err)
	for j := range row {
		assert.Equal(t, row[j]-ex.Background[j], resid[j], "channel %d", j)
		assert.Equal(t, ex.Raw[j]-ex.Background[j], ex.Residual[j], "channel %d", j)
	}

	batch, err := model.TransformMatrix(x)
	require.NoError(t, err)
	mex, err := model.ExplainMatrix(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(batch, mex.Residual))

	var diff mat.Dense
	diff.Sub(mex.Raw, mex.Background)
	assert.True(t, mat.Equal(&diff, mex.Residual), "batch identity must be exact")
}

// TestFit_FallbackOnFewSamples verifies graceful degradation: when clean
// samples cannot outnumber the components, the separator refits unmasked
// on everything and flags it instead of failing.
func TestFit_FallbackOnFewSamples(t *testing.T) {
	pos := axis(40)
	rng := rand.New(rand.NewSource(5))
	x := mat.NewDense(5, 40, nil)
	base := broad(pos, 1500, 800)
	for i := 0; i < 5; i++ {
		for j := 0; j < 40; j++ {
			x.Set(i, j, (1+0.1*float64(i))*base[j]+0.01*rng.NormFloat64())
		}
	}

	opts := background.DefaultOptions()
	opts.Components = 5 // clean can never reach Components+1 = 6
	model, err := background.Fit(context.Background(), x, pos, opts)
	require.NoError(t, err)

	assert.True(t, model.Fallback())
	assert.Equal(t, 5, model.CleanSamples(), "fallback trains on every sample")

	resid, err := model.Transform(mat.Row(nil, 2, x))
	require.NoError(t, err)
	assert.Len(t, resid, 40, "fallback model must stay fully usable")
}

// TestFit_MaskEndpointsInclusive verifies that positions exactly on a
// masked boundary are excluded on both sides.
func TestFit_MaskEndpointsInclusive(t *testing.T) {
	pos := []float64{2799.9, 2800, 2900, 3050, 3050.1, 1000, 500, 600, 700, 800}
	rng := rand.New(rand.NewSource(9))
	x := mat.NewDense(6, len(pos), nil)
	for i := 0; i < 6; i++ {
		for j := range pos {
			x.Set(i, j, 1+rng.Float64())
		}
	}

	opts := background.DefaultOptions()
	opts.Components = 2
	model, err := background.Fit(context.Background(), x, pos, opts)
	require.NoError(t, err)

	mask := model.Mask()
	assert.True(t, mask[0], "2799.9 sits outside the range")
	assert.False(t, mask[1], "2800 is the inclusive lower endpoint")
	assert.False(t, mask[2], "2900 is inside")
	assert.False(t, mask[3], "3050 is the inclusive upper endpoint")
	assert.True(t, mask[4], "3050.1 sits outside the range")
	assert.True(t, mask[5])
}

// TestFit_Validation covers the structural error paths and the
// everything-masked guard.
func TestFit_Validation(t *testing.T) {
	ctx := context.Background()
	pos := axis(20)
	rng := rand.New(rand.NewSource(2))
	x := mat.NewDense(8, 20, nil)
	for i := 0; i < 8; i++ {
		for j := 0; j < 20; j++ {
			x.Set(i, j, rng.Float64())
		}
	}

	_, err := background.Fit(ctx, &mat.Dense{}, pos, background.DefaultOptions())
	require.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = background.Fit(ctx, x, pos[:5], background.DefaultOptions())
	require.ErrorIs(t, err, core.ErrDimensionMismatch)

	bad := background.DefaultOptions()
	bad.Contamination = 1.2
	_, err = background.Fit(ctx, x, pos, bad)
	require.ErrorIs(t, err, background.ErrBadOptions)

	smothered := background.DefaultOptions()
	smothered.Components = 3
	smothered.MaskedRanges = [][2]float64{{0, 5000}}
	_, err = background.Fit(ctx, x, pos, smothered)
	require.ErrorIs(t, err, background.ErrAllMasked)

	var unfitted background.Model
	_, err = unfitted.Transform(make([]float64, 20))
	require.ErrorIs(t, err, core.ErrNotFitted)

	opts := background.DefaultOptions()
	opts.Components = 3
	model, err := background.Fit(ctx, x, pos, opts)
	require.NoError(t, err)
	_, err = model.Transform(make([]float64, 7))
	require.ErrorIs(t, err, core.ErrDimensionMismatch)
}

// TestModel_AccessorsCopy verifies that returned bookkeeping slices are
// detached from the model.
func TestModel_AccessorsCopy(t *testing.T) {
	x, pos, _, _ := mineralScene()
	model, err := background.Fit(context.Background(), x, pos, background.DefaultOptions())
	require.NoError(t, err)

	mask := model.Mask()
	mask[0] = !mask[0]
	assert.NotEqual(t, mask[0], model.Mask()[0], "Mask must return a copy")

	ranges := model.MaskedRanges()
	require.NotEmpty(t, ranges)
	ranges[0][0] = -1
	assert.NotEqual(t, ranges[0][0], model.MaskedRanges()[0][0], "MaskedRanges must return a copy")
}
