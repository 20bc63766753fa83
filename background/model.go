// SPDX-License-Identifier: MIT

// Package background - the fitted model and its query methods.
package background

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
	"github.com/katalvlaran/unmix/prefilter"
)

// Model is a fitted background separator. It is immutable and safe for
// concurrent readers.
type Model struct {
	lin          *prefilter.Linear
	keep         []bool
	ranges       [][2]float64
	features     int
	cleanSamples int
	cutoff       float64
	fallback     bool
}

// Reconstruct returns the model's background estimate for one spectrum.
func (b *Model) Reconstruct(x []float64) ([]float64, error) {
	if b.lin == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckLen(x, b.features); err != nil {
		return nil, err
	}

	recon, err := b.reconstructMatrix(mat.NewDense(1, b.features, append([]float64(nil), x...)))
	if err != nil {
		return nil, err
	}

	return mat.Row(nil, 0, recon), nil
}

// Transform returns the background-free signal x − Reconstruct(x). The
// identity holds exactly: both sides come from the same reconstruction.
func (b *Model) Transform(x []float64) ([]float64, error) {
	recon, err := b.Reconstruct(x)
	if err != nil {
		return nil, err
	}
	for i := range recon {
		recon[i] = x[i] - recon[i]
	}

	return recon, nil
}

// Explain returns all three views of a spectrum at once.
func (b *Model) Explain(x []float64) (Explanation, error) {
	bg, err := b.Reconstruct(x)
	if err != nil {
		return Explanation{}, err
	}

	raw := append([]float64(nil), x...)
	resid := make([]float64, len(x))
	for i := range resid {
		resid[i] = raw[i] - bg[i]
	}

	return Explanation{Raw: raw, Background: bg, Residual: resid}, nil
}

// TransformMatrix applies Transform to every row of x.
func (b *Model) TransformMatrix(x *mat.Dense) (*mat.Dense, error) {
	ex, err := b.ExplainMatrix(x)
	if err != nil {
		return nil, err
	}

	return ex.Residual, nil
}

// ExplainMatrix returns the three views for every row of x.
func (b *Model) ExplainMatrix(x *mat.Dense) (*MatrixExplanation, error) {
	if b.lin == nil {
		return nil, core.ErrNotFitted
	}
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	if err := core.CheckCols(x, b.features); err != nil {
		return nil, err
	}

	bg, err := b.reconstructMatrix(x)
	if err != nil {
		return nil, err
	}

	n, m := x.Dims()
	resid := mat.NewDense(n, m, nil)
	resid.Sub(x, bg)

	return &MatrixExplanation{
		Raw:        mat.DenseCopyOf(x),
		Background: bg,
		Residual:   resid,
	}, nil
}

// reconstructMatrix projects rows into the background subspace and back.
func (b *Model) reconstructMatrix(x *mat.Dense) (*mat.Dense, error) {
	z, err := b.lin.Transform(x)
	if err != nil {
		return nil, err
	}

	return b.lin.InverseTransform(z)
}

// Components reports the background subspace dimension.
func (b *Model) Components() int { return b.lin.Components() }

// InputDim reports the feature count the model was fitted on.
func (b *Model) InputDim() int { return b.features }

// CleanSamples reports how many samples the final fit used: the clean
// count normally, the full sample count after a fallback.
func (b *Model) CleanSamples() int { return b.cleanSamples }

// Cutoff reports the squared-residual percentile that separated clean
// samples from contaminated ones in pass one.
func (b *Model) Cutoff() float64 { return b.cutoff }

// Fallback reports whether the single-pass unmasked fallback was taken.
func (b *Model) Fallback() bool { return b.fallback }

// Mask returns a copy of the keep mask: true marks positions the first
// pass trained on.
func (b *Model) Mask() []bool {
	return append([]bool(nil), b.keep...)
}

// MaskedRanges returns a copy of the position ranges excluded from the
// first pass.
func (b *Model) MaskedRanges() [][2]float64 {
	return append([][2]float64(nil), b.ranges...)
}
