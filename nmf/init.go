// SPDX-License-Identifier: MIT

// Package nmf - factor initialization.
//
// Both strategies are deterministic: NNDSVD by construction, the random
// variant through a seeded source (never time-based). Determinism across
// platforms matters because downstream regression reuses the exact H.
package nmf

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// initFactors produces the starting W (n×k) and H (k×m) for z ≥ 0.
func initFactors(z *mat.Dense, k int, method InitMethod, seed int64) (*mat.Dense, *mat.Dense, error) {
	if method == InitRandom {
		w, h := initRandom(z, k, seed)

		return w, h, nil
	}

	return initNNDSVD(z, k)
}

// initRandom fills W and H with |N(0,1)|·sqrt(mean(z)/k) entries drawn from
// the seeded source, W first. The scale keeps W·H near the magnitude of z
// so the first iterations do useful work.
// Complexity: O(n·k + k·m).
func initRandom(z *mat.Dense, k int, seed int64) (*mat.Dense, *mat.Dense) {
	n, m := z.Dims()
	scale := math.Sqrt(mat.Sum(z) / float64(n*m) / float64(k))
	rng := rand.New(rand.NewSource(seed))

	w := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			w.Set(i, j, math.Abs(scale*rng.NormFloat64()))
		}
	}
	h := mat.NewDense(k, m, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < m; j++ {
			h.Set(i, j, math.Abs(scale*rng.NormFloat64()))
		}
	}

	return w, h
}

// initNNDSVD implements non-negative double singular value decomposition
// (Boutsidis & Gallopoulos, 2008), "a" variant: exact zeros are filled with
// the matrix mean so multiplicative-style updates cannot lock them at zero.
//
// Steps:
//  1. Thin SVD of z; the leading triplet is single-signed up to sign for a
//     non-negative matrix, so |u₀|,|v₀| scaled by √σ₀ seed the first pair.
//  2. Each later triplet is split into positive and negative parts; the
//     pair with the larger norm product wins and is scaled by √(σⱼ·μ).
//  3. Entries below machine epsilon are zeroed, then zeros become mean(z).
//
// Complexity: O(n·m·min(n,m)) dominated by the SVD.
func initNNDSVD(z *mat.Dense, k int) (*mat.Dense, *mat.Dense, error) {
	n, m := z.Dims()
	if k > n || k > m {
		return nil, nil, fmt.Errorf("nndsvd needs k ≤ min(rows, features), got k=%d for %d×%d: %w",
			k, n, m, ErrBadOptions)
	}

	var svd mat.SVD
	if ok := svd.Factorize(z, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("svd failed on %d×%d input: %w", n, m, ErrBadOptions)
	}
	var u, v mat.Dense
	svd.UTo(&u) // n × min(n,m), columns are left singular vectors
	svd.VTo(&v) // m × min(n,m), columns are right singular vectors
	sv := svd.Values(nil)

	w := mat.NewDense(n, k, nil)
	h := mat.NewDense(k, m, nil)

	// 1) Leading triplet.
	s0 := math.Sqrt(sv[0])
	for i := 0; i < n; i++ {
		w.Set(i, 0, s0*math.Abs(u.At(i, 0)))
	}
	for j := 0; j < m; j++ {
		h.Set(0, j, s0*math.Abs(v.At(j, 0)))
	}

	// 2) Remaining triplets: larger of the (+,+) / (−,−) part pairs wins.
	for c := 1; c < k; c++ {
		var xpN, xnN, ypN, ynN float64
		for i := 0; i < n; i++ {
			if x := u.At(i, c); x > 0 {
				xpN += x * x
			} else {
				xnN += x * x
			}
		}
		for j := 0; j < m; j++ {
			if y := v.At(j, c); y > 0 {
				ypN += y * y
			} else {
				ynN += y * y
			}
		}
		xpN, xnN = math.Sqrt(xpN), math.Sqrt(xnN)
		ypN, ynN = math.Sqrt(ypN), math.Sqrt(ynN)

		mp, mn := xpN*ypN, xnN*ynN
		var xNorm, yNorm, mu float64
		var positive bool
		if mp > mn {
			xNorm, yNorm, mu, positive = xpN, ypN, mp, true
		} else {
			xNorm, yNorm, mu, positive = xnN, ynN, mn, false
		}
		if mu == 0 {
			continue // degenerate direction; the "a" fill handles it below
		}

		lbd := math.Sqrt(sv[c] * mu)
		for i := 0; i < n; i++ {
			x := u.At(i, c)
			if positive && x > 0 {
				w.Set(i, c, lbd*x/xNorm)
			} else if !positive && x < 0 {
				w.Set(i, c, lbd*-x/xNorm)
			}
		}
		for j := 0; j < m; j++ {
			y := v.At(j, c)
			if positive && y > 0 {
				h.Set(c, j, lbd*y/yNorm)
			} else if !positive && y < 0 {
				h.Set(c, j, lbd*-y/yNorm)
			}
		}
	}

	// 3) Zero the numeric dust, then fill exact zeros with the mean.
	eps := math.Nextafter(1, 2) - 1
	avg := mat.Sum(z) / float64(n*m)
	fill := func(d *mat.Dense) {
		r, cc := d.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < cc; j++ {
				if d.At(i, j) < eps {
					d.Set(i, j, avg)
				}
			}
		}
	}
	fill(w)
	fill(h)

	return w, h, nil
}
