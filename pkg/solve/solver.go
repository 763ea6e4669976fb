/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package solve

/*****************************************************************************************************************/

import (
	"time"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/pattern"
	"gonum.org/v1/gonum/stat/combin"
)

/*****************************************************************************************************************/

// Solve matches centroids (brightness-sorted, pixel coordinates) against the database loaded
// into s. height and width are the image dimensions in pixels.
func (s *Solver) Solve(centroids []Centroid, height, width int, opts Options) Result {
	start := time.Now()
	opts = opts.withDefaults()

	if len(centroids) < 4 {
		// Degenerate input: enumeration yields nothing, treated as no-solution.
		return unsolvedResult(elapsedMS(start))
	}

	k := opts.PatternCheckingStars
	if k > len(centroids) {
		k = len(centroids)
	}

	trialFOV := opts.FOVEstimate
	if trialFOV == 0 {
		trialFOV = (s.db.Properties.MinFOV + s.db.Properties.MaxFOV) / 2
	}

	bins := s.db.Properties.PatternBins
	maxError := s.db.Properties.PatternMaxError

	for _, quad := range combin.Combinations(k, 4) {
		vectors := [4]geometry.Vector3{
			geometry.PinholeLift(centroids[quad[0]].Y, centroids[quad[0]].X, height, width, trialFOV),
			geometry.PinholeLift(centroids[quad[1]].Y, centroids[quad[1]].X, height, width, trialFOV),
			geometry.PinholeLift(centroids[quad[2]].Y, centroids[quad[2]].X, height, width, trialFOV),
			geometry.PinholeLift(centroids[quad[3]].Y, centroids[quad[3]].X, height, width, trialFOV),
		}

		ratios, largestAngle := pattern.EdgeRatios(vectors)

		candidates := s.probeCandidates(ratios, bins, maxError)

		for _, cand := range candidates {
			catalogVectors := [4]geometry.Vector3{
				s.db.Stars[cand[0]].Vector(),
				s.db.Stars[cand[1]].Vector(),
				s.db.Stars[cand[2]].Vector(),
				s.db.Stars[cand[3]].Vector(),
			}

			catalogRatios, catalogLargestAngle := pattern.EdgeRatios(catalogVectors)
			if !ratiosMatch(ratios, catalogRatios, maxError) {
				continue
			}

			result, ok := s.tryPose(centroids, quad, vectors, catalogVectors, largestAngle, catalogLargestAngle, height, width, opts)
			if ok {
				result.TSolveMS = elapsedMS(start)
				return result
			}
		}
	}

	return unsolvedResult(elapsedMS(start))
}

/*****************************************************************************************************************/

// probeCandidates enumerates the deduplicated probe-box keys for ratios and returns every
// catalog pattern reachable from any of them.
func (s *Solver) probeCandidates(ratios [5]float64, bins int, maxError float64) []pattern.Pattern {
	lo, hi := pattern.ProbeBox(ratios, bins, maxError)

	seenKey := make(map[[5]int]bool)
	seenPattern := make(map[pattern.Pattern]bool)
	var out []pattern.Pattern

	var walk func(i int, key [5]int)
	walk = func(i int, key [5]int) {
		if i == 5 {
			if seenKey[key] {
				return
			}
			seenKey[key] = true

			found, _ := s.db.Patterns.Probe(key)
			for _, p := range found {
				if !seenPattern[p] {
					seenPattern[p] = true
					out = append(out, p)
				}
			}
			return
		}

		for v := lo[i]; v <= hi[i]; v++ {
			key[i] = v
			walk(i+1, key)
		}
	}
	walk(0, [5]int{})

	return out
}

/*****************************************************************************************************************/

// ratiosMatch reports whether every element of a and b differs by at most maxError.
func ratiosMatch(a, b [5]float64, maxError float64) bool {
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > maxError {
			return false
		}
	}
	return true
}

/*****************************************************************************************************************/

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

/*****************************************************************************************************************/
