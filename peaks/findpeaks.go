// SPDX-License-Identifier: MIT

// This file implements the find-peaks primitive: plateau-aware local
// maxima and the height / distance / prominence / width filter pipeline.
package peaks

import (
	"fmt"
	"math"
	"sort"
)

// params is the fully resolved configuration findPeaks runs with. The
// height floor is always applied; prominence, width and wlen are off at
// zero. skipDistance suppresses the separation filter even when distance
// is set.
type params struct {
	height       float64
	distance     float64
	prominence   float64
	width        float64
	wlen         int
	relHeight    float64
	skipDistance bool
}

// findPeaks runs the filter pipeline over y: local maxima, then height,
// separation, prominence and width in that order. Property slices are
// populated for the stages that ran. Parameter values the pipeline cannot
// honor are reported as errors for the caller's failure policy.
func findPeaks(y []float64, p params) (PeakSet, error) {
	if !p.skipDistance && p.distance < 1 {
		return PeakSet{}, fmt.Errorf("peaks: distance %g must be at least 1", p.distance)
	}
	needProm := p.prominence > 0 || p.width > 0
	if needProm && p.wlen != 0 && p.wlen < 2 {
		return PeakSet{}, fmt.Errorf("peaks: window length %d must be at least 2", p.wlen)
	}
	if p.relHeight < 0 {
		return PeakSet{}, fmt.Errorf("peaks: relative height %g must not be negative", p.relHeight)
	}

	set := PeakSet{Indices: localMaxima(y)}
	set.Heights = make([]float64, len(set.Indices))
	keep := make([]bool, len(set.Indices))
	for i, idx := range set.Indices {
		set.Heights[i] = y[idx]
		keep[i] = set.Heights[i] >= p.height
	}
	set.filter(keep)

	if !p.skipDistance {
		set.filter(selectByDistance(set.Indices, set.Heights, p.distance))
	}

	if needProm {
		set.Prominences, set.LeftBases, set.RightBases = prominences(y, set.Indices, p.wlen)
		if p.prominence > 0 {
			keep = keep[:0]
			for _, v := range set.Prominences {
				keep = append(keep, v >= p.prominence)
			}
			set.filter(keep)
		}
	}

	if p.width > 0 {
		set.Widths, set.WidthHeights, set.LeftIPs, set.RightIPs =
			widths(y, set.Indices, p.relHeight, set.Prominences, set.LeftBases, set.RightBases)
		keep = keep[:0]
		for _, v := range set.Widths {
			keep = append(keep, v >= p.width)
		}
		set.filter(keep)
	}

	return set, nil
}

// localMaxima returns the midpoints of all strict local maxima in y,
// treating flat plateaus as single peaks reported at their middle sample.
// The first and last samples never qualify.
func localMaxima(y []float64) []int {
	var mids []int
	i, last := 1, len(y)-1
	for i < last {
		if y[i-1] < y[i] {
			ahead := i + 1
			for ahead < last && y[ahead] == y[i] {
				ahead++
			}
			if y[ahead] < y[i] {
				mids = append(mids, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}

	return mids
}

// selectByDistance implements the minimum-separation filter: peaks are
// visited from highest to lowest and each survivor evicts neighbors closer
// than ceil(distance) samples. Equal-height ties resolve by index, so the
// result is deterministic.
func selectByDistance(indices []int, heights []float64, distance float64) []bool {
	n := len(indices)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	d := int(math.Ceil(distance))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if heights[order[a]] != heights[order[b]] {
			return heights[order[a]] < heights[order[b]]
		}

		return order[a] < order[b]
	})

	for i := n - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && indices[j]-indices[k] < d; k-- {
			keep[k] = false
		}
		for k := j + 1; k < n && indices[k]-indices[j] < d; k++ {
			keep[k] = false
		}
	}

	return keep
}

// prominences measures each peak's prominence and base indices. On each
// side the walk extends while samples stay at or below the peak height,
// and the base is the lowest sample seen; the prominence is the peak
// height above the higher of the two bases. A wlen of 0 lets the walk run
// to the series ends, wlen ≥ 2 restricts it to a window of that many
// samples centered on the peak.
func prominences(y []float64, indices []int, wlen int) ([]float64, []int, []int) {
	prom := make([]float64, len(indices))
	left := make([]int, len(indices))
	right := make([]int, len(indices))
	for n, peak := range indices {
		lo, hi := 0, len(y)-1
		if wlen >= 2 {
			if v := peak - wlen/2; v > lo {
				lo = v
			}
			if v := peak + wlen/2; v < hi {
				hi = v
			}
		}

		left[n] = peak
		leftMin := y[peak]
		for i := peak; i >= lo && y[i] <= y[peak]; i-- {
			if y[i] < leftMin {
				leftMin = y[i]
				left[n] = i
			}
		}

		right[n] = peak
		rightMin := y[peak]
		for i := peak; i <= hi && y[i] <= y[peak]; i++ {
			if y[i] < rightMin {
				rightMin = y[i]
				right[n] = i
			}
		}

		prom[n] = y[peak] - math.Max(leftMin, rightMin)
	}

	return prom, left, right
}

// widths measures each peak's width at the evaluation height
// y[peak] − prominence·relHeight. The crossing on each side is located by
// walking toward the prominence base and linearly interpolating between
// the last sample above the height and the first at or below it.
func widths(y []float64, indices []int, relHeight float64, prom []float64, leftBases, rightBases []int) (w, wh, lip, rip []float64) {
	w = make([]float64, len(indices))
	wh = make([]float64, len(indices))
	lip = make([]float64, len(indices))
	rip = make([]float64, len(indices))
	for n, peak := range indices {
		h := y[peak] - prom[n]*relHeight
		wh[n] = h

		i := peak
		for i > leftBases[n] && h < y[i] {
			i--
		}
		l := float64(i)
		if y[i] < h {
			l += (h - y[i]) / (y[i+1] - y[i])
		}

		i = peak
		for i < rightBases[n] && h < y[i] {
			i++
		}
		r := float64(i)
		if y[i] < h {
			r -= (h - y[i]) / (y[i-1] - y[i])
		}

		w[n] = r - l
		lip[n] = l
		rip[n] = r
	}

	return w, wh, lip, rip
}

// filter drops the peaks whose keep entry is false from every populated
// property slice; nil slices stay nil.
func (p *PeakSet) filter(keep []bool) {
	p.Indices = applyKeep(p.Indices, keep)
	p.Positions = applyKeep(p.Positions, keep)
	p.Heights = applyKeep(p.Heights, keep)
	p.Prominences = applyKeep(p.Prominences, keep)
	p.LeftBases = applyKeep(p.LeftBases, keep)
	p.RightBases = applyKeep(p.RightBases, keep)
	p.Widths = applyKeep(p.Widths, keep)
	p.WidthHeights = applyKeep(p.WidthHeights, keep)
	p.LeftIPs = applyKeep(p.LeftIPs, keep)
	p.RightIPs = applyKeep(p.RightIPs, keep)
}

// applyKeep compacts s in place by the keep mask.
func applyKeep[T any](s []T, keep []bool) []T {
	if s == nil {
		return nil
	}
	w := 0
	for i, k := range keep {
		if k {
			s[w] = s[i]
			w++
		}
	}

	return s[:w]
}
