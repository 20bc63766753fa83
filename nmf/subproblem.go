// SPDX-License-Identifier: MIT

// Package nmf - projected-gradient subproblem.
//
// pgSubproblem solves one half of the alternating scheme,
//
//	min_{H ≥ 0} ½‖V − W·H‖²_F,
//
// by projected gradient descent with an adaptive step size (Lin, 2007).
// Steps are accepted only under a sufficient-decrease condition, which is
// what makes the outer objective non-increasing.
package nmf

import (
	"gonum.org/v1/gonum/mat"
)

// Step-search constants from Lin's reference implementation: the step
// shrink factor and the sufficient-decrease weight.
const (
	stepShrink  = 0.1
	decreaseTol = 0.99
)

// Subproblem iteration caps. The outer cap bounds gradient steps per call;
// the inner cap bounds the step-size search per gradient step.
const (
	subOuter = 100
	subInner = 20
)

// posPart clamps a single entry at zero; used with Dense.Apply as the
// projection onto the feasible set.
func posPart(_, _ int, v float64) float64 {
	if v > 0 {
		return v
	}

	return 0
}

// pgSubproblem iterates H from the warm start ho while W stays fixed.
// It returns the final iterate, its projected gradient, the number of
// gradient steps taken, and whether any sufficient-decrease step was found.
//
// Stopping: projected-gradient Frobenius norm < tol, or subOuter steps.
// A return with steps == 0 means ho was already optimal at this tolerance;
// the caller then tightens its tolerance.
//
// Complexity: O(subOuter · (k·r·c + subInner·k·c)) for V (r×c), W (r×k).
func pgSubproblem(v, w, ho *mat.Dense, tol float64) (h, g *mat.Dense, steps int, ok bool) {
	h = mat.DenseCopyOf(ho)

	// Constant pieces of the gradient: ∇f(H) = WᵀW·H − WᵀV.
	var wtv, wtw mat.Dense
	wtv.Mul(w.T(), v)
	wtw.Mul(w.T(), w)

	alpha := 1.0

	// projFilt zeroes gradient entries that cannot move the iterate:
	// non-negative gradient at an active (zero) coordinate.
	projFilt := func(r, c int, gv float64) float64 {
		if gv < 0 || h.At(r, c) > 0 {
			return gv
		}

		return 0
	}

	g = new(mat.Dense)
	for steps = 0; steps < subOuter; steps++ {
		g.Mul(&wtw, h)
		g.Sub(g, &wtv)
		g.Apply(projFilt, g)

		if mat.Norm(g, 2) < tol {
			break
		}

		var (
			shrinking bool
			hPrev     *mat.Dense
			d, dQ     mat.Dense
		)
		for j := 0; j < subInner; j++ {
			// Candidate: project H − α·∇f onto the non-negative orthant.
			var hn mat.Dense
			hn.Scale(alpha, g)
			hn.Sub(h, &hn)
			hn.Apply(posPart, &hn)

			// Sufficient decrease along d = Hn − H:
			// 0.99·⟨∇f, d⟩ + ½·⟨d, WᵀW·d⟩ < 0.
			d.Sub(&hn, h)
			dQ.Mul(&wtw, &d)
			dQ.MulElem(&dQ, &d)
			d.MulElem(g, &d)
			sufficient := decreaseTol*mat.Sum(&d)+0.5*mat.Sum(&dQ) < 0

			if j == 0 {
				shrinking = !sufficient
				hPrev = h
			}
			if shrinking {
				// Too long a step: shrink until the decrease condition holds.
				if sufficient {
					h = &hn
					ok = true

					break
				}
				alpha *= stepShrink
			} else {
				// Step was acceptable immediately: grow it while it keeps
				// decreasing, then settle on the last good iterate.
				if !sufficient || mat.Equal(hPrev, &hn) {
					if hPrev != h {
						ok = true
					}
					h = hPrev

					break
				}
				alpha /= stepShrink
				hPrev = &hn
			}
		}
	}

	return h, g, steps, ok
}
