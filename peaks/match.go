// SPDX-License-Identifier: MIT

// This file implements greedy peak matching between two spectra and the
// multi-spectrum reporting modes.
package peaks

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unmix/core"
)

// Match pairs reference peaks with target peaks by position. References
// are visited in order; each takes its globally nearest target, and the
// match is accepted only when the distance is within tol and that target
// is still unclaimed. A claimed nearest target rejects the reference
// outright rather than falling through to the next-nearest, which keeps
// pairings stable when peaks are dense.
//
// refIdx and tgtIdx are peak sample indices into refPos and tgtPos, the
// two spectra's position axes; the axes may differ. Indices produced by
// Detect are always in range.
// Complexity: O(r·t).
func Match(refIdx, tgtIdx []int, refPos, tgtPos []float64, tol float64) []Pair {
	claimed := make([]bool, len(tgtIdx))
	pairs := make([]Pair, 0, len(refIdx))
	for _, r := range refIdx {
		best, bestDist := -1, math.Inf(1)
		for j, t := range tgtIdx {
			if d := math.Abs(tgtPos[t] - refPos[r]); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best < 0 || bestDist > tol || claimed[best] {
			continue
		}
		claimed[best] = true
		pairs = append(pairs, Pair{Ref: r, Target: tgtIdx[best], Distance: bestDist})
	}

	return pairs
}

// MatchSpectra detects peaks in every spectrum and reports subsets of the
// reference spectrum's peaks according to opts.Mode. The returned map is
// keyed by spectrum index:
//
//   - ModeAllPeaks: one entry at the reference index holding all its peaks.
//   - ModeMatchedOnly: one entry per non-reference spectrum holding the
//     reference peaks that spectrum matched.
//   - ModeAllMatched: one entry at the reference index holding the
//     reference peaks every non-reference spectrum matched. With a single
//     spectrum the intersection is vacuous and all reference peaks qualify.
//   - ModeTopDisplay: one entry at index 0 holding the reference peaks
//     spectrum 0 matched.
//
// Complexity: O(s·n) detection plus O(s·r·t) matching.
func MatchSpectra(spectra []core.Spectrum, opts MatchOptions) (map[int]MatchedPeaks, error) {
	if len(spectra) == 0 {
		return nil, fmt.Errorf("match spectra: %w", core.ErrEmptyInput)
	}
	if err := opts.normalize(len(spectra)); err != nil {
		return nil, err
	}

	sets := make([]PeakSet, len(spectra))
	for i, s := range spectra {
		set, err := Detect(s.Positions, s.Intensities, opts.Detect)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d: %w", i, err)
		}
		sets[i] = set
	}

	ref := opts.ReferenceIndex
	refSet, refSpec := sets[ref], spectra[ref]
	out := make(map[int]MatchedPeaks, len(spectra))

	switch opts.Mode {
	case ModeAllPeaks:
		out[ref] = refSubset(refSpec, append([]int(nil), refSet.Indices...))

	case ModeMatchedOnly:
		for i := range spectra {
			if i == ref {
				continue
			}
			pairs := Match(refSet.Indices, sets[i].Indices, refSpec.Positions, spectra[i].Positions, opts.Tolerance)
			out[i] = refSubset(refSpec, pairRefs(pairs))
		}

	case ModeAllMatched:
		listOf := make(map[int]int, refSet.Len())
		for li, sample := range refSet.Indices {
			listOf[sample] = li
		}
		counts := make([]int, refSet.Len())
		others := 0
		for i := range spectra {
			if i == ref {
				continue
			}
			others++
			pairs := Match(refSet.Indices, sets[i].Indices, refSpec.Positions, spectra[i].Positions, opts.Tolerance)
			for _, pr := range pairs {
				counts[listOf[pr.Ref]]++
			}
		}
		shared := make([]int, 0, refSet.Len())
		for li, c := range counts {
			if c == others {
				shared = append(shared, refSet.Indices[li])
			}
		}
		out[ref] = refSubset(refSpec, shared)

	case ModeTopDisplay:
		pairs := Match(refSet.Indices, sets[0].Indices, refSpec.Positions, spectra[0].Positions, opts.Tolerance)
		out[0] = refSubset(refSpec, pairRefs(pairs))
	}

	return out, nil
}

// pairRefs extracts the reference-side sample indices of pairs. Matching
// visits references in ascending order, so the result is ascending too.
func pairRefs(pairs []Pair) []int {
	idx := make([]int, len(pairs))
	for i, p := range pairs {
		idx[i] = p.Ref
	}

	return idx
}

// refSubset builds a MatchedPeaks view over the given reference sample
// indices.
func refSubset(ref core.Spectrum, indices []int) MatchedPeaks {
	m := MatchedPeaks{Indices: indices, Positions: make([]float64, len(indices))}
	for i, idx := range indices {
		m.Positions[i] = ref.Positions[idx]
	}

	return m
}
