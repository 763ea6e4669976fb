/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package pattern

/*****************************************************************************************************************/

import (
	"math"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/spatial"
	"github.com/nightwatch/platesolve/pkg/star"
	"gonum.org/v1/gonum/stat/combin"
)

/*****************************************************************************************************************/

// EnumerateOptions configures a single pattern-enumeration pass over one FOV tier.
type EnumerateOptions struct {
	// PatternFOV is the maximum pairwise angular separation a pattern may span, in radians.
	PatternFOV float64

	// SimplifyPattern centers patterns on the pivot (querying pattern_fov/2 and skipping the
	// pairwise-max verification) for a faster but less symmetric database.
	SimplifyPattern bool
}

/*****************************************************************************************************************/

// Enumerate builds every 4-star pattern among patternStars (indices into stars, assumed to be
// the pattern-star subset produced by density thinning).
//
// For each pivot, in order, neighbors within PatternFOV (or PatternFOV/2 when SimplifyPattern)
// are queried; neighbors already consumed as an earlier pivot are excluded, which avoids
// re-enumerating the same 4-set from more than one of its members. Remaining neighbors are
// combined C(k,3) at a time with the pivot to form candidate patterns.
func Enumerate(stars []star.Star, patternStars []int, opts EnumerateOptions) []Pattern {
	n := len(patternStars)
	if n < 4 {
		return nil
	}

	vectors := make([]geometry.Vector3, n)
	for i, si := range patternStars {
		vectors[i] = stars[si].Vector()
	}

	index, err := spatial.NewIndex(vectors)
	if err != nil {
		return nil
	}

	queryRadius := opts.PatternFOV
	if opts.SimplifyPattern {
		queryRadius /= 2
	}

	cosPatternFOV := math.Cos(opts.PatternFOV)

	removed := make([]bool, n)
	seen := make(map[Pattern]bool)
	var patterns []Pattern

	for pivot := 0; pivot < n; pivot++ {
		neighbors := index.Query(vectors[pivot], queryRadius)

		available := make([]int, 0, len(neighbors))
		for _, nb := range neighbors {
			if nb.Index == pivot || removed[nb.Index] {
				continue
			}
			available = append(available, nb.Index)
		}

		if len(available) >= 3 {
			for _, triple := range combin.Combinations(len(available), 3) {
				a := available[triple[0]]
				b := available[triple[1]]
				c := available[triple[2]]

				if !opts.SimplifyPattern {
					if !withinMaxSeparation(vectors[pivot], vectors[a], vectors[b], vectors[c], cosPatternFOV) {
						continue
					}
				}

				p := newPattern(patternStars[pivot], patternStars[a], patternStars[b], patternStars[c])
				if !seen[p] {
					seen[p] = true
					patterns = append(patterns, p)
				}
			}
		}

		removed[pivot] = true
	}

	return patterns
}

/*****************************************************************************************************************/

// withinMaxSeparation reports whether every pairwise angular separation among the four vectors
// is within the pattern FOV, checked via min(dot products) > cos(patternFOV).
func withinMaxSeparation(a, b, c, d geometry.Vector3, cosPatternFOV float64) bool {
	vs := [4]geometry.Vector3{a, b, c, d}

	minDot := math.Inf(1)
	for _, p := range edgePairs {
		dot := vs[p[0]].Dot(vs[p[1]])
		if dot < minDot {
			minDot = dot
		}
	}

	return minDot > cosPatternFOV
}

/*****************************************************************************************************************/

// Tiers returns the number of geometrically spaced FOV tiers a multi-scale database spans
// between minFOV and maxFOV: ceil(log2(maxFOV/minFOV)) + 1.
func Tiers(minFOV, maxFOV float64) int {
	if minFOV <= 0 || maxFOV <= minFOV {
		return 1
	}
	return int(math.Ceil(math.Log2(maxFOV/minFOV))) + 1
}

/*****************************************************************************************************************/

// TierFOVs returns the geometrically spaced FOV values for each tier from minFOV to maxFOV.
func TierFOVs(minFOV, maxFOV float64) []float64 {
	n := Tiers(minFOV, maxFOV)
	if n == 1 {
		return []float64{maxFOV}
	}

	fovs := make([]float64, n)
	ratio := math.Pow(maxFOV/minFOV, 1/float64(n-1))

	fov := minFOV
	for i := 0; i < n; i++ {
		fovs[i] = fov
		fov *= ratio
	}

	return fovs
}

/*****************************************************************************************************************/
