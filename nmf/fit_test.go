package nmf_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/nmf"
)

// identityReducer passes matrices through unchanged; it stands in for a
// fitted prefilter in plumbing and validation tests.
type identityReducer struct{ dim int }

func (r identityReducer) Transform(x *mat.Dense) (*mat.Dense, error) {
	return mat.DenseCopyOf(x), nil
}

func (r identityReducer) InverseTransform(z *mat.Dense) (*mat.Dense, error) {
	return mat.DenseCopyOf(z), nil
}

func (r identityReducer) OutputDim() int { return r.dim }

// randomNonNegative builds a seeded n×m matrix with entries in [0, 1).
func randomNonNegative(n, m int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	x := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			x.Set(i, j, rng.Float64())
		}
	}

	return x
}

// gaussian fills a length-m profile with a Gaussian bump.
func gaussian(m int, center, sigma, amplitude float64) []float64 {
	y := make([]float64, m)
	for i := range y {
		d := (float64(i) - center) / sigma
		y[i] = amplitude * math.Exp(-0.5*d*d)
	}

	return y
}

// TestFit_NonNegativeAndMonotone verifies the two core numeric contracts:
// both factors are elementwise ≥ 0 and the reconstruction error never ends
// above its starting value.
func TestFit_NonNegativeAndMonotone(t *testing.T) {
	x := randomNonNegative(10, 24, 7)

	opts := nmf.DefaultOptions()
	opts.K = 3
	opts.Init = nmf.InitRandom

	res, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, mat.Min(res.W), 0.0, "W must be non-negative")
	assert.GreaterOrEqual(t, mat.Min(res.H), 0.0, "H must be non-negative")
	assert.LessOrEqual(t, res.FinalError, res.InitialError, "objective must not increase")
}

// TestFit_ExactLowRank verifies that an exactly rank-2 non-negative matrix
// is reconstructed to within a few percent relative error.
func TestFit_ExactLowRank(t *testing.T) {
	w0 := mat.NewDense(6, 2, []float64{
		1, 0.2,
		0.5, 1,
		0.9, 0.1,
		0.3, 0.7,
		1, 1,
		0.1, 0.9,
	})
	h0 := mat.NewDense(2, 8, []float64{
		1, 2, 3, 2, 1, 0, 0, 0,
		0, 0, 0, 1, 2, 3, 2, 1,
	})
	var x mat.Dense
	x.Mul(w0, h0)

	opts := nmf.DefaultOptions()
	opts.K = 2
	opts.MaxIter = 500
	opts.Tol = 1e-6

	res, err := nmf.Fit(context.Background(), &x, opts)
	require.NoError(t, err)

	rel := res.FinalError / mat.Norm(&x, 2)
	assert.Less(t, rel, 0.05, "rank-2 input should be recovered almost exactly")
}

// TestFit_Deterministic verifies that two runs with identical options and
// seed produce bitwise-identical factors.
func TestFit_Deterministic(t *testing.T) {
	x := randomNonNegative(8, 16, 3)

	opts := nmf.DefaultOptions()
	opts.K = 2
	opts.Init = nmf.InitRandom
	opts.Seed = 11

	a, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)
	b, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a.W, b.W), "same seed must reproduce W")
	assert.True(t, mat.Equal(a.H, b.H), "same seed must reproduce H")
}

// TestFit_InputNeverModified verifies that negative entries of the caller's
// matrix survive a Fit: clamping happens on an internal copy only.
func TestFit_InputNeverModified(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{-1, 2, 3, 4, -5, 6})

	opts := nmf.DefaultOptions()
	opts.K = 1
	_, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)

	assert.Equal(t, -1.0, x.At(0, 0))
	assert.Equal(t, -5.0, x.At(1, 1))
}

// TestFit_FilterUndersized verifies that a reducer keeping fewer features
// than the component count fails before any factorization starts.
func TestFit_FilterUndersized(t *testing.T) {
	x := randomNonNegative(5, 10, 1)

	opts := nmf.DefaultOptions()
	opts.K = 4
	opts.Reducer = identityReducer{dim: 3}

	_, err := nmf.Fit(context.Background(), x, opts)
	require.ErrorIs(t, err, core.ErrFilterUndersized)
}

// TestFit_ReducerRoundTrip verifies the H back-mapping path: with a
// pass-through reducer H has original-space width and HReduced is the
// factor iterated on.
func TestFit_ReducerRoundTrip(t *testing.T) {
	x := randomNonNegative(6, 12, 5)

	opts := nmf.DefaultOptions()
	opts.K = 2
	opts.Reducer = identityReducer{dim: 12}

	res, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)

	_, hc := res.H.Dims()
	_, rc := res.HReduced.Dims()
	assert.Equal(t, 12, hc)
	assert.Equal(t, 12, rc)
	assert.NotSame(t, res.H, res.HReduced, "reduced factor is kept separately")
	assert.GreaterOrEqual(t, mat.Min(res.H), 0.0)
}

// TestFit_Validation covers the structural error paths: empty input,
// negative caps, conflicting weight/reducer options, weight length skew.
func TestFit_Validation(t *testing.T) {
	ctx := context.Background()
	x := randomNonNegative(4, 6, 2)

	_, err := nmf.Fit(ctx, mat.NewDense(1, 1, nil), nmf.Options{K: 1})
	require.NoError(t, err, "1x1 input is small but legal")

	_, err = nmf.Fit(ctx, nil, nmf.DefaultOptions())
	require.ErrorIs(t, err, core.ErrEmptyInput)

	bad := nmf.DefaultOptions()
	bad.MaxIter = -1
	_, err = nmf.Fit(ctx, x, bad)
	require.ErrorIs(t, err, nmf.ErrBadOptions)

	conflict := nmf.DefaultOptions()
	conflict.Reducer = identityReducer{dim: 6}
	conflict.FeatureWeights = []float64{1, 1, 1, 1, 1, 1}
	_, err = nmf.Fit(ctx, x, conflict)
	require.ErrorIs(t, err, nmf.ErrWeightedReducer)

	skew := nmf.DefaultOptions()
	skew.FeatureWeights = []float64{1, 1}
	_, err = nmf.Fit(ctx, x, skew)
	require.ErrorIs(t, err, core.ErrDimensionMismatch)
}

// TestFit_FeatureWeights verifies that unit weights change nothing and that
// a zero-weight column comes back as an all-zero component column.
func TestFit_FeatureWeights(t *testing.T) {
	x := randomNonNegative(6, 8, 9)
	ctx := context.Background()

	plain := nmf.DefaultOptions()
	plain.K = 2
	base, err := nmf.Fit(ctx, x, plain)
	require.NoError(t, err)

	unit := plain
	unit.FeatureWeights = []float64{1, 1, 1, 1, 1, 1, 1, 1}
	same, err := nmf.Fit(ctx, x, unit)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(base.H, same.H, 1e-12), "unit weights must be a no-op")

	muted := plain
	muted.FeatureWeights = []float64{1, 1, 1, 0, 1, 1, 1, 1}
	res, err := nmf.Fit(ctx, x, muted)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		assert.Equal(t, 0.0, res.H.At(i, 3), "zero-weight column must stay zero")
	}
}

// TestFit_ContextCancelled verifies cooperative cancellation at iteration
// boundaries.
func TestFit_ContextCancelled(t *testing.T) {
	x := randomNonNegative(10, 20, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := nmf.Fit(ctx, x, nmf.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

// TestFit_RecoverKnownMixture mixes three nearly disjoint Gaussian
// components with known per-sample ratios, adds 1% noise, and checks that
// decomposition recovers components with correlation > 0.9 and that the
// probe sample's ratios come back within 15% relative error after
// permutation and scale alignment.
func TestFit_RecoverKnownMixture(t *testing.T) {
	const (
		m     = 80
		k     = 3
		noise = 0.01
	)
	comps := [][]float64{
		gaussian(m, 20, 4, 1),
		gaussian(m, 40, 4, 1),
		gaussian(m, 60, 4, 1),
	}
	weights := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.8, 0.1, 0.1},
		{0.1, 0.8, 0.1},
		{0.1, 0.1, 0.8},
		{0.5, 0.5, 0},
		{0, 0.5, 0.5},
		{0.5, 0, 0.5},
		{0.3, 0.4, 0.3},
		{0.6, 0.2, 0.2},
		{0.2, 0.3, 0.5}, // probe sample with the known target ratios
	}

	rng := rand.New(rand.NewSource(1))
	n := len(weights)
	x := mat.NewDense(n, m, nil)
	for i, wRow := range weights {
		for j := 0; j < m; j++ {
			var v float64
			for c := 0; c < k; c++ {
				v += wRow[c] * comps[c][j]
			}
			v += noise * rng.NormFloat64()
			if v < 0 {
				v = 0
			}
			x.Set(i, j, v)
		}
	}

	opts := nmf.DefaultOptions()
	opts.K = k
	opts.MaxIter = 500
	opts.Tol = 1e-6

	res, err := nmf.Fit(context.Background(), x, opts)
	require.NoError(t, err)

	// Best-permutation assignment by total correlation: components carry no
	// canonical order, so every pairing must be tried.
	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	recovered := make([][]float64, k)
	for c := 0; c < k; c++ {
		recovered[c] = mat.Row(nil, c, res.H)
	}
	bestPerm, bestTotal := perms[0], math.Inf(-1)
	for _, p := range perms {
		var total float64
		for c := 0; c < k; c++ {
			total += stat.Correlation(comps[c], recovered[p[c]], nil)
		}
		if total > bestTotal {
			bestTotal, bestPerm = total, p
		}
	}
	for c := 0; c < k; c++ {
		corr := stat.Correlation(comps[c], recovered[bestPerm[c]], nil)
		assert.Greater(t, corr, 0.9, "component %d poorly recovered", c)
	}

	// Scale ambiguity: the least-squares scale of each recovered component
	// against its true counterpart converts raw weights into true ratios.
	probe := mat.Row(nil, n-1, res.W)
	aligned := make([]float64, k)
	var sum float64
	for c := 0; c < k; c++ {
		rec := recovered[bestPerm[c]]
		var num, den float64
		for j := 0; j < m; j++ {
			num += rec[j] * comps[c][j]
			den += comps[c][j] * comps[c][j]
		}
		aligned[c] = probe[bestPerm[c]] * (num / den)
		sum += aligned[c]
	}
	want := []float64{0.2, 0.3, 0.5}
	for c := 0; c < k; c++ {
		ratio := aligned[c] / sum
		assert.InEpsilon(t, want[c], ratio, 0.15, "component %d ratio", c)
	}
}
