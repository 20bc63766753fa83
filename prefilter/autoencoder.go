// SPDX-License-Identifier: MIT

// Package prefilter - shallow sparse autoencoder.
//
// The network is deliberately small: standardized input → ReLU latent code
// (r units, ≥ 0 by construction) → linear decoder → de-standardized
// output. Training is mini-batch Adam on MSE plus an L1 penalty on the
// latent code, with global gradient-norm clipping and early stopping on a
// plateauing full-data loss. Everything is seeded, so a fit is a pure
// function of its inputs.
package prefilter

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/core"
)

// Default autoencoder training values. DefaultSeed mirrors the fixed
// reproducibility seed used across the module.
const (
	DefaultEpochs       = 200
	DefaultBatchSize    = 32
	DefaultLearningRate = 0.001
	DefaultL1Penalty    = 0.01
	DefaultClipNorm     = 1.0
	DefaultPatience     = 20
	DefaultSeed         = 42
)

// Adam moment decay rates and the denominator guard.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// AEOptions configures autoencoder training. Zero values select the
// defaults; negative values are rejected.
type AEOptions struct {
	Epochs       int     // training epoch cap
	BatchSize    int     // mini-batch size
	LearningRate float64 // Adam step size
	L1Penalty    float64 // latent sparsity weight
	ClipNorm     float64 // global gradient-norm ceiling
	Patience     int     // epochs without improvement before stopping
	Seed         int64   // RNG seed; 0 means the fixed default
}

// DefaultAEOptions returns the canonical training configuration.
func DefaultAEOptions() AEOptions {
	return AEOptions{
		Epochs:       DefaultEpochs,
		BatchSize:    DefaultBatchSize,
		LearningRate: DefaultLearningRate,
		L1Penalty:    DefaultL1Penalty,
		ClipNorm:     DefaultClipNorm,
		Patience:     DefaultPatience,
		Seed:         DefaultSeed,
	}
}

// normalize fills zero-valued fields with defaults and validates the rest.
func (o *AEOptions) normalize() error {
	if o.Epochs == 0 {
		o.Epochs = DefaultEpochs
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.LearningRate == 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.L1Penalty == 0 {
		o.L1Penalty = DefaultL1Penalty
	}
	if o.ClipNorm == 0 {
		o.ClipNorm = DefaultClipNorm
	}
	if o.Patience == 0 {
		o.Patience = DefaultPatience
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Epochs < 0 || o.BatchSize < 0 || o.LearningRate < 0 ||
		o.L1Penalty < 0 || o.ClipNorm < 0 || o.Patience < 0 {
		return ErrBadOptions
	}

	return nil
}

// Autoencoder is a fitted shallow network. The latent code is the reduced
// representation; it is non-negative by construction (ReLU).
type Autoencoder struct {
	w1         *mat.Dense // features×r encoder weights
	w2         *mat.Dense // r×features decoder weights
	b1         []float64  // encoder bias, length r
	b2         []float64  // decoder bias, length features
	mean       []float64  // per-feature standardization shift
	std        []float64  // per-feature standardization scale, never 0
	features   int
	components int
	epochsRun  int
	history    []float64 // full-data loss per completed epoch
}

// FitAutoencoder trains an r-unit autoencoder on x (samples×features).
//
// Input is standardized per feature (a zero-variance feature keeps scale
// 1), the loss is MSE plus L1Penalty·mean(z), and training stops at the
// epoch cap or after Patience epochs without a full-data loss improvement.
// The context is honored at epoch boundaries.
//
// Complexity: O(epochs·n·m·r) time, O(m·r) memory retained.
func FitAutoencoder(ctx context.Context, x *mat.Dense, components int, opts AEOptions) (*Autoencoder, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	n, m := x.Dims()
	if err := checkComponents(components, m); err != nil {
		return nil, err
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	// Standardize once; training runs entirely in the scaled space.
	mean := make([]float64, m)
	std := make([]float64, m)
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j, x)
		mu, sigma := stat.MeanStdDev(col, nil)
		if sigma == 0 || math.IsNaN(sigma) {
			sigma = 1
		}
		mean[j], std[j] = mu, sigma
	}
	xs := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			xs.Set(i, j, (x.At(i, j)-mean[j])/std[j])
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	ae := &Autoencoder{
		w1:         heInit(rng, m, components),
		w2:         heInit(rng, components, m),
		b1:         make([]float64, components),
		b2:         make([]float64, m),
		mean:       mean,
		std:        std,
		features:   m,
		components: components,
	}

	optW1 := newAdam(opts.LearningRate, m*components)
	optW2 := newAdam(opts.LearningRate, components*m)
	optB1 := newAdam(opts.LearningRate, components)
	optB2 := newAdam(opts.LearningRate, m)

	batch := opts.BatchSize
	if batch > n {
		batch = n
	}
	best := math.Inf(1)
	sinceBest := 0

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		perm := rng.Perm(n)
		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			xb := gatherRows(xs, perm[start:end])
			gw1, gb1, gw2, gb2 := ae.gradients(xb, opts.L1Penalty)
			clipGlobal(opts.ClipNorm, gw1.RawMatrix().Data, gb1, gw2.RawMatrix().Data, gb2)
			optW1.step(ae.w1.RawMatrix().Data, gw1.RawMatrix().Data)
			optB1.step(ae.b1, gb1)
			optW2.step(ae.w2.RawMatrix().Data, gw2.RawMatrix().Data)
			optB2.step(ae.b2, gb2)
		}

		loss := ae.loss(xs, opts.L1Penalty)
		ae.history = append(ae.history, loss)
		ae.epochsRun = epoch + 1
		if loss < best {
			best = loss
			sinceBest = 0

			continue
		}
		sinceBest++
		if sinceBest >= opts.Patience {
			break
		}
	}

	return ae, nil
}

// heInit draws rows×cols weights from N(0, √(2/rows)).
func heInit(rng *rand.Rand, rows, cols int) *mat.Dense {
	scale := math.Sqrt(2 / float64(rows))
	w := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, rng.NormFloat64()*scale)
		}
	}

	return w
}

// gatherRows copies the selected rows of x into a new matrix.
func gatherRows(x *mat.Dense, rows []int) *mat.Dense {
	_, m := x.Dims()
	out := mat.NewDense(len(rows), m, nil)
	for i, r := range rows {
		out.SetRow(i, x.RawRowView(r))
	}

	return out
}

// encode computes the pre-activation and the ReLU latent code for a
// standardized batch.
func (a *Autoencoder) encode(xb *mat.Dense) (pre, z *mat.Dense) {
	nb, _ := xb.Dims()
	pre = mat.NewDense(nb, a.components, nil)
	pre.Mul(xb, a.w1)
	for i := 0; i < nb; i++ {
		for j := 0; j < a.components; j++ {
			pre.Set(i, j, pre.At(i, j)+a.b1[j])
		}
	}
	z = mat.NewDense(nb, a.components, nil)
	z.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, pre)

	return pre, z
}

// forward extends encode with the standardized-space reconstruction.
func (a *Autoencoder) forward(xb *mat.Dense) (pre, z, recon *mat.Dense) {
	pre, z = a.encode(xb)
	nb, _ := xb.Dims()
	recon = mat.NewDense(nb, a.features, nil)
	recon.Mul(z, a.w2)
	for i := 0; i < nb; i++ {
		for j := 0; j < a.features; j++ {
			recon.Set(i, j, recon.At(i, j)+a.b2[j])
		}
	}

	return pre, z, recon
}

// gradients backpropagates one standardized batch and returns parameter
// gradients in declaration order.
func (a *Autoencoder) gradients(xb *mat.Dense, l1 float64) (gw1 *mat.Dense, gb1 []float64, gw2 *mat.Dense, gb2 []float64) {
	nb, m := xb.Dims()
	r := a.components
	pre, z, recon := a.forward(xb)

	// dLoss/dRecon for MSE averaged over batch·features.
	dy := mat.NewDense(nb, m, nil)
	scale := 2 / float64(nb*m)
	for i := 0; i < nb; i++ {
		for j := 0; j < m; j++ {
			dy.Set(i, j, scale*(recon.At(i, j)-xb.At(i, j)))
		}
	}

	gw2 = mat.NewDense(r, m, nil)
	gw2.Mul(z.T(), dy)
	gb2 = make([]float64, m)
	for i := 0; i < nb; i++ {
		for j := 0; j < m; j++ {
			gb2[j] += dy.At(i, j)
		}
	}

	// Backprop through the decoder, the sparsity term, and the ReLU gate.
	dz := mat.NewDense(nb, r, nil)
	dz.Mul(dy, a.w2.T())
	l1g := l1 / float64(nb*r)
	da := mat.NewDense(nb, r, nil)
	for i := 0; i < nb; i++ {
		for j := 0; j < r; j++ {
			if pre.At(i, j) > 0 {
				da.Set(i, j, dz.At(i, j)+l1g)
			}
		}
	}

	gw1 = mat.NewDense(m, r, nil)
	gw1.Mul(xb.T(), da)
	gb1 = make([]float64, r)
	for i := 0; i < nb; i++ {
		for j := 0; j < r; j++ {
			gb1[j] += da.At(i, j)
		}
	}

	return gw1, gb1, gw2, gb2
}

// loss evaluates MSE + l1·mean(z) over a full standardized matrix.
func (a *Autoencoder) loss(xs *mat.Dense, l1 float64) float64 {
	n, m := xs.Dims()
	_, z, recon := a.forward(xs)

	var sse float64
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			d := recon.At(i, j) - xs.At(i, j)
			sse += d * d
		}
	}

	return sse/float64(n*m) + l1*mat.Sum(z)/float64(n*a.components)
}

// clipGlobal rescales the gradient slices in place when their joint L2
// norm exceeds limit.
func clipGlobal(limit float64, grads ...[]float64) {
	var sq float64
	for _, g := range grads {
		for _, v := range g {
			sq += v * v
		}
	}
	norm := math.Sqrt(sq)
	if norm <= limit || norm == 0 {
		return
	}
	f := limit / norm
	for _, g := range grads {
		for i := range g {
			g[i] *= f
		}
	}
}

// adam carries first/second moment estimates for one parameter tensor.
// All tensors step in lockstep, so a per-tensor time counter is exact.
type adam struct {
	lr   float64
	t    float64
	m, v []float64
}

func newAdam(lr float64, size int) *adam {
	return &adam{lr: lr, m: make([]float64, size), v: make([]float64, size)}
}

// step applies one Adam update of p against gradient g.
func (a *adam) step(p, g []float64) {
	a.t++
	c1 := 1 - math.Pow(adamBeta1, a.t)
	c2 := 1 - math.Pow(adamBeta2, a.t)
	for i := range p {
		a.m[i] = adamBeta1*a.m[i] + (1-adamBeta1)*g[i]
		a.v[i] = adamBeta2*a.v[i] + (1-adamBeta2)*g[i]*g[i]
		p[i] -= a.lr * (a.m[i] / c1) / (math.Sqrt(a.v[i]/c2) + adamEps)
	}
}

// Transform encodes x (n×features) into the non-negative latent space
// (n×r): standardize, project, ReLU.
func (a *Autoencoder) Transform(x *mat.Dense) (*mat.Dense, error) {
	if a.w1 == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	if err := core.CheckCols(x, a.features); err != nil {
		return nil, err
	}

	n, _ := x.Dims()
	xs := mat.NewDense(n, a.features, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < a.features; j++ {
			xs.Set(i, j, (x.At(i, j)-a.mean[j])/a.std[j])
		}
	}
	_, z := a.encode(xs)

	return z, nil
}

// InverseTransform decodes latent rows (n×r) back to de-standardized
// spectra (n×features).
func (a *Autoencoder) InverseTransform(z *mat.Dense) (*mat.Dense, error) {
	if a.w1 == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(z); err != nil {
		return nil, err
	}
	if err := core.CheckCols(z, a.components); err != nil {
		return nil, err
	}

	n, _ := z.Dims()
	out := mat.NewDense(n, a.features, nil)
	out.Mul(z, a.w2)
	for i := 0; i < n; i++ {
		for j := 0; j < a.features; j++ {
			out.Set(i, j, (out.At(i, j)+a.b2[j])*a.std[j]+a.mean[j])
		}
	}

	return out, nil
}

// Components reports the latent width r.
func (a *Autoencoder) Components() int { return a.components }

// OutputDim reports Components; it lets an Autoencoder serve as a
// decomposition or regression reducer.
func (a *Autoencoder) OutputDim() int { return a.components }

// InputDim reports the feature count the model was fitted on.
func (a *Autoencoder) InputDim() int { return a.features }

// Kind reports KindAutoencoder.
func (a *Autoencoder) Kind() Kind { return KindAutoencoder }

// EpochsRun reports how many epochs training actually took.
func (a *Autoencoder) EpochsRun() int { return a.epochsRun }

// History returns a copy of the per-epoch full-data loss curve.
func (a *Autoencoder) History() []float64 {
	return append([]float64(nil), a.history...)
}

// Regrid resamples each row of z from the fromPos grid onto the toPos
// grid by linear interpolation, clamping to the boundary values outside
// the source range.
//
// The operation is numerically lossy and therefore never applied
// implicitly; call it only when grids genuinely differ. Both grids must
// be strictly increasing and fromPos must match z's width.
func (a *Autoencoder) Regrid(z *mat.Dense, fromPos, toPos []float64) (*mat.Dense, error) {
	if err := core.CheckNonEmpty(z); err != nil {
		return nil, err
	}
	if err := core.CheckCols(z, len(fromPos)); err != nil {
		return nil, err
	}
	if len(fromPos) < 2 || !strictlyIncreasing(fromPos) {
		return nil, fmt.Errorf("source grid: %w", ErrBadGrid)
	}
	if len(toPos) == 0 || !strictlyIncreasing(toPos) {
		return nil, fmt.Errorf("target grid: %w", ErrBadGrid)
	}

	n, m := z.Dims()
	lo, hi := fromPos[0], fromPos[m-1]
	out := mat.NewDense(n, len(toPos), nil)
	var pl interp.PiecewiseLinear
	for i := 0; i < n; i++ {
		row := z.RawRowView(i)
		if err := pl.Fit(fromPos, row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, ErrBadGrid)
		}
		for j, t := range toPos {
			switch {
			case t <= lo:
				out.Set(i, j, row[0])
			case t >= hi:
				out.Set(i, j, row[m-1])
			default:
				out.Set(i, j, pl.Predict(t))
			}
		}
	}

	return out, nil
}

// strictlyIncreasing reports whether xs rises at every step.
func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}

	return true
}
