/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package pattern

/*****************************************************************************************************************/

import (
	"sort"

	"github.com/nightwatch/platesolve/pkg/geometry"
)

/*****************************************************************************************************************/

// Pattern is an unordered 4-star pattern, stored as a sorted tuple of star-table indices.
type Pattern [4]int

/*****************************************************************************************************************/

func newPattern(a, b, c, d int) Pattern {
	s := []int{a, b, c, d}
	sort.Ints(s)
	return Pattern{s[0], s[1], s[2], s[3]}
}

/*****************************************************************************************************************/

var edgePairs = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

/*****************************************************************************************************************/

// EdgeRatios computes the five smallest of the six pairwise great-circle angles between the
// four vectors, each divided by the largest. The ratios are invariant under rotation, and the
// division normalizes out absolute scale so identical patterns at different fields of view
// share a fingerprint. The returned ratios are sorted ascending in [0, 1]; largest is the
// sixth (dropped) angle, in radians.
func EdgeRatios(vectors [4]geometry.Vector3) (ratios [5]float64, largest float64) {
	var angles [6]float64

	for i, p := range edgePairs {
		angles[i] = geometry.AngleBetween(vectors[p[0]], vectors[p[1]])
	}

	sort.Float64s(angles[:])

	largest = angles[5]

	for i := 0; i < 5; i++ {
		if largest == 0 {
			ratios[i] = 0
			continue
		}
		ratios[i] = angles[i] / largest
	}

	return ratios, largest
}

/*****************************************************************************************************************/

// Bins returns the quantization bin count for a given matching tolerance:
// round(1 / (4 * patternMaxError)).
func Bins(patternMaxError float64) int {
	if patternMaxError <= 0 {
		return 1
	}
	bins := int(1/(4*patternMaxError) + 0.5)
	if bins < 1 {
		bins = 1
	}
	return bins
}

/*****************************************************************************************************************/

// Quantize maps each edge ratio into [0, bins) via floor(r * bins).
func Quantize(ratios [5]float64, bins int) [5]int {
	var key [5]int

	for i, r := range ratios {
		b := int(r * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		key[i] = b
	}

	return key
}

/*****************************************************************************************************************/

// ProbeBox returns, for each ratio, the inclusive range of bin indices [lo, hi] within
// maxError of it, clamped to [0, bins). A ratio sitting exactly on a bin boundary therefore
// probes both adjacent bins.
func ProbeBox(ratios [5]float64, bins int, maxError float64) (lo, hi [5]int) {
	for i, r := range ratios {
		l := int((r - maxError) * float64(bins))
		h := int((r + maxError) * float64(bins))

		if l < 0 {
			l = 0
		}
		if h >= bins {
			h = bins - 1
		}
		if l >= bins {
			l = bins - 1
		}
		if h < 0 {
			h = 0
		}

		lo[i] = l
		hi[i] = h
	}

	return lo, hi
}

/*****************************************************************************************************************/
