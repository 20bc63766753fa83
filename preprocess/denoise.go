// SPDX-License-Identifier: MIT

// This file implements truncated-SVD denoising of a spectra matrix.
package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
)

// DenoiseSVD reconstructs a spectra matrix from its rank strongest
// singular triplets and clamps the result at zero, removing the noise
// floor that lives in the discarded directions. Rank must lie between 1
// and min(rows, columns).
// Complexity: O(n·m·min(n,m)).
func DenoiseSVD(x *mat.Dense, rank int) (*mat.Dense, error) {
	if err := core.CheckNonEmpty(x); err != nil {
		return nil, err
	}
	n, m := x.Dims()
	limit := n
	if m < limit {
		limit = m
	}
	if rank < 1 || rank > limit {
		return nil, fmt.Errorf("rank %d with %d×%d data: %w", rank, n, m, ErrBadParam)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("preprocess: svd did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	var scaled, out mat.Dense
	scaled.Mul(u.Slice(0, n, 0, rank), mat.NewDiagDense(rank, vals[:rank]))
	out.Mul(&scaled, v.Slice(0, m, 0, rank).T())
	core.ClampNonNegative(&out)

	return &out, nil
}
