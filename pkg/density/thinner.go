/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package density

/*****************************************************************************************************************/

import (
	"math"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/spatial"
	"github.com/nightwatch/platesolve/pkg/star"
)

/*****************************************************************************************************************/

// Threshold returns the minimum angular separation, in radians, that a greedy thinning pass
// enforces between selected stars for a given density target and reference field of view:
// d = 0.6 * F / sqrt(starsPerFOV).
func Threshold(starsPerFOV int, fov float64) float64 {
	return 0.6 * fov / math.Sqrt(float64(starsPerFOV))
}

/*****************************************************************************************************************/

// Thin greedily selects a subset of stars (assumed sorted brightest-first) such that no two
// selected stars are closer than threshold radians apart. It is a greedy maximal-independent-set
// selection on the unit-sphere proximity graph: stars are considered in brightness order, and a
// star is selected iff none of the previously selected stars lies within threshold of it.
// Greediness on brightness-sorted input makes the outcome deterministic.
//
// The spatial index is built once, over every input star (not mutated incrementally as stars
// are selected); a candidate is rejected only if one of the neighbors the index reports for it
// has already been selected, which keeps each query O(log n) against the full point set rather
// than requiring the index to be rebuilt per candidate.
//
// The first star is always selected, so the brightest star is guaranteed a place in every
// thinned subset and index 0 of a generated star table is always a pattern star.
//
// Thin is a pure function: it never fails.
func Thin(stars []star.Star, threshold float64) []int {
	if len(stars) == 0 {
		return nil
	}

	vectors := make([]geometry.Vector3, len(stars))
	for i, s := range stars {
		vectors[i] = s.Vector()
	}

	index, err := spatial.NewIndex(vectors)
	if err != nil {
		return nil
	}

	selected := make([]bool, len(stars))
	result := make([]int, 0, len(stars))

	for i, v := range vectors {
		neighbors := index.Query(v, threshold)

		blocked := false
		for _, n := range neighbors {
			if n.Index != i && selected[n.Index] {
				blocked = true
				break
			}
		}

		if blocked {
			continue
		}

		selected[i] = true
		result = append(result, i)
	}

	return result
}

/*****************************************************************************************************************/

// MaskFromIndices builds a selection mask of length n from a set of selected indices, the
// inverse of reading the indices back out of a mask.
func MaskFromIndices(n int, indices []int) []bool {
	mask := make([]bool, n)
	for _, i := range indices {
		mask[i] = true
	}
	return mask
}

/*****************************************************************************************************************/

// ThinFrom extends an already-selected subset at a smaller (denser) threshold, keeping every
// star whose mask entry in already is true. This is how the nested verification-star superset
// of a pattern-star subset is built: copy the sparser selection, then scan for additional
// admissible stars at the denser separation, rather than thinning from scratch and losing the
// nesting guarantee.
func ThinFrom(stars []star.Star, threshold float64, already []bool) []int {
	if len(stars) == 0 {
		return nil
	}

	vectors := make([]geometry.Vector3, len(stars))
	for i, s := range stars {
		vectors[i] = s.Vector()
	}

	index, err := spatial.NewIndex(vectors)
	if err != nil {
		return nil
	}

	selected := make([]bool, len(stars))
	copy(selected, already)

	for i, v := range vectors {
		if selected[i] {
			continue
		}

		neighbors := index.Query(v, threshold)

		blocked := false
		for _, n := range neighbors {
			if n.Index != i && selected[n.Index] {
				blocked = true
				break
			}
		}

		if !blocked {
			selected[i] = true
		}
	}

	result := make([]int, 0, len(stars))
	for i, s := range selected {
		if s {
			result = append(result, i)
		}
	}

	return result
}

/*****************************************************************************************************************/
