// SPDX-License-Identifier: MIT

// Package peaks finds peaks in spectra and matches them across spectra.
//
// 🚀 What lives here?
//
//	Two layers. The primitive find-peaks pass detects local maxima with
//	plateau handling and filters them by height, minimum separation,
//	prominence and width — the classic signal-processing contract. On
//	top sits an adaptive layer that repairs missing or absurd parameter
//	values from the data itself, so an interactive caller can hand over
//	half-configured thresholds and still get sensible peaks.
//
// ✨ Key features:
//   - plateau-aware local maxima (midpoint reported)
//   - filter order: height → distance → prominence → width, each
//     optional, matching the de-facto scientific-Python semantics
//   - adaptive defaults: height from the data scale, distance from the
//     series length, absurd values silently replaced
//   - detection failure degrades to an empty set with one warning,
//     never an error — partial results beat a crash mid-session
//   - greedy deterministic peak matching with a position tolerance, and
//     four multi-spectrum reporting modes against a reference spectrum
//
// ⚙️ Usage:
//
//	set, err := peaks.Detect(x, y, peaks.DetectOptions{Prominence: 0.1})
//	if err != nil { ... }
//	// set.Indices, set.Positions, set.Prominences
//
//	pairs := peaks.Match(refSet.Indices, tgtSet.Indices, refX, tgtX, 5)
//
// Performance: detection O(n) plus O(p·wlen) for prominence/width;
// matching O(r·t).
package peaks
