// SPDX-License-Identifier: MIT

// Package regress - Lawson–Hanson non-negative least squares.
//
// The solver follows 'Solving Least Squares Problems' (Lawson & Hanson,
// 1974), Algorithm 23.10: indices move between the zero set ℤ and the
// passive set ℙ, the most positive dual coordinate enters ℙ, and
// infeasible equality-constrained solutions are pulled back to the
// feasible boundary. The equality subproblem is re-solved per round with
// a QR least-squares solve; with the component counts this module sees
// (k ≤ 10) the cubic cost per round is negligible.
package regress

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/core"
)

// Solution is one NNLS outcome. X is elementwise ≥ 0; Residual is
// ‖A·x − b‖₂ at X. Converged=false means the iteration cap was reached and
// X is the best iterate found, still feasible.
type Solution struct {
	X          []float64
	Residual   float64
	Iterations int
	Converged  bool
}

// NNLS minimizes ‖A·x − b‖₂ subject to x ≥ 0.
//
// maxIter ≤ 0 selects the Lawson–Hanson convention of 3·n; tol ≤ 0 selects
// DefaultTol. The only error is a row count of A differing from len(b);
// everything numerical resolves into the Solution flags.
//
// Complexity: O(iter·(m·n + p³)) with p the passive-set size.
func NNLS(a mat.Matrix, b []float64, maxIter int, tol float64) (Solution, error) {
	m, n := a.Dims()
	if len(b) != m {
		return Solution{}, fmt.Errorf("matrix has %d rows, vector %d entries: %w",
			m, len(b), core.ErrDimensionMismatch)
	}
	if maxIter <= 0 {
		maxIter = 3 * n
	}
	if tol <= 0 {
		tol = DefaultTol
	}

	var (
		x        = make([]float64, n) // current feasible iterate, starts at 0
		z        = make([]float64, n) // equality-subproblem solution, zero on ℤ
		r        = make([]float64, m) // residual b − Ax
		passive  = make([]bool, n)
		rejected = make([]bool, n) // unstable pivots, cleared when x moves
		nPassive int
		bVec     = mat.NewVecDense(m, b)
		iters    int
		capped   bool
	)

	converged := false
outer:
	for {
		// All variables free, or no more columns can be triangularized.
		if nPassive == n || nPassive >= m {
			converged = true

			break
		}

		// Dual vector on ℤ: w = Aᵀ(b − Ax).
		residual(a, x, b, r)
		tMax, wMax := -1, tol
		for j := 0; j < n; j++ {
			if passive[j] || rejected[j] {
				continue
			}
			var wj float64
			for i := 0; i < m; i++ {
				wj += a.At(i, j) * r[i]
			}
			if wj > wMax {
				wMax, tMax = wj, j
			}
		}

		// Kuhn–Tucker: every zero-set dual ≤ tol means optimality.
		if tMax < 0 {
			converged = true

			break
		}
		passive[tMax] = true
		nPassive++

		// Inner loop: re-solve the passive subproblem until feasible.
		for {
			iters++
			if iters > maxIter {
				capped = true

				break outer
			}

			if err := solvePassive(a, bVec, passive, nPassive, z); err != nil {
				// Near-dependent column set: reject the newest candidate the
				// way the reference rejects unstable pivots, and retry the
				// dual selection without it. Rejections last until the
				// iterate moves again.
				passive[tMax] = false
				rejected[tMax] = true
				nPassive--

				continue outer
			}

			feasible := true
			for j := 0; j < n; j++ {
				if passive[j] && z[j] <= 0 {
					feasible = false

					break
				}
			}
			if feasible {
				copy(x, z)
				clearFlags(rejected)

				break
			}

			// Step back to the boundary: α = min xⱼ/(xⱼ−zⱼ) over zⱼ ≤ 0.
			alpha := math.Inf(1)
			drop := -1
			for j := 0; j < n; j++ {
				if passive[j] && z[j] <= 0 {
					t := x[j] / (x[j] - z[j])
					if t < alpha {
						alpha, drop = t, j
					}
				}
			}
			for j := 0; j < n; j++ {
				if passive[j] {
					x[j] += alpha * (z[j] - x[j])
				}
			}
			x[drop] = 0
			passive[drop] = false
			nPassive--
			clearFlags(rejected)
			// Round-off can push other passive entries to the boundary too.
			for j := 0; j < n; j++ {
				if passive[j] && x[j] <= 0 {
					x[j] = 0
					passive[j] = false
					nPassive--
				}
			}
		}
	}

	residual(a, x, b, r)

	return Solution{
		X:          x,
		Residual:   floats.Norm(r, 2),
		Iterations: iters,
		Converged:  converged && !capped,
	}, nil
}

// clearFlags resets a bool set in place.
func clearFlags(f []bool) {
	for i := range f {
		f[i] = false
	}
}

// residual writes b − A·x into dst.
func residual(a mat.Matrix, x, b, dst []float64) {
	m, n := a.Dims()
	for i := 0; i < m; i++ {
		s := b[i]
		for j := 0; j < n; j++ {
			if x[j] != 0 {
				s -= a.At(i, j) * x[j]
			}
		}
		dst[i] = s
	}
}

// solvePassive solves the unconstrained least squares over the passive
// columns of a and scatters the solution into z (zero on ℤ). Column order
// is ascending index, so the solve is deterministic.
func solvePassive(a mat.Matrix, b *mat.VecDense, passive []bool, nPassive int, z []float64) error {
	m, n := a.Dims()
	cols := make([]int, 0, nPassive)
	for j := 0; j < n; j++ {
		if passive[j] {
			cols = append(cols, j)
		}
	}

	ap := mat.NewDense(m, len(cols), nil)
	for c, j := range cols {
		for i := 0; i < m; i++ {
			ap.Set(i, c, a.At(i, j))
		}
	}

	var zp mat.VecDense
	if err := zp.SolveVec(ap, b); err != nil {
		// A finite Condition error still carries a usable solution; an
		// infinite one or anything else means the passive columns are
		// effectively dependent.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return err
		}
	}

	for j := range z {
		z[j] = 0
	}
	for c, j := range cols {
		z[j] = zp.AtVec(c)
	}

	return nil
}
