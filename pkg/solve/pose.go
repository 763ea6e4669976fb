/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package solve

/*****************************************************************************************************************/

import (
	"math"
	"sort"

	"github.com/nightwatch/platesolve/pkg/astrometry"
	"github.com/nightwatch/platesolve/pkg/geometry"
	"github.com/nightwatch/platesolve/pkg/rotation"
	"gonum.org/v1/gonum/stat/distuv"
)

/*****************************************************************************************************************/

// matchedPair is one verified image/catalog bearing-vector correspondence, surviving the
// window-match step of verification.
type matchedPair struct {
	image     geometry.Vector3
	celestial geometry.Vector3
}

/*****************************************************************************************************************/

// tryPose carries a single surviving catalog pattern through pose estimation: FOV refinement,
// canonical vector ordering, Wahba/SVD rotation, nearby-catalog-star cross-match verification,
// and binomial mismatch scoring. It reports ok=false if the candidate is rejected at any step.
func (s *Solver) tryPose(
	centroids []Centroid,
	quad []int,
	imageVectors, catalogVectors [4]geometry.Vector3,
	imageLargestEdge, catalogLargestEdge float64,
	height, width int,
	opts Options,
) (Result, bool) {
	refinedFOV, ok := s.refineFOV(centroids, quad, imageLargestEdge, catalogLargestEdge, width, opts)
	if !ok {
		return Result{}, false
	}

	var refinedImageVectors [4]geometry.Vector3
	for i, idx := range quad {
		refinedImageVectors[i] = geometry.PinholeLift(centroids[idx].Y, centroids[idx].X, height, width, refinedFOV)
	}

	sortedImage := sortByCentroidDistance(refinedImageVectors)
	sortedCatalog := sortByCentroidDistance(catalogVectors)

	r := solveRotation(sortedImage, sortedCatalog, opts.CorrectReflection)

	// A coherent mirror of the whole frame aligns perfectly under the unconstrained SVD
	// solution, so the cross-match alone cannot reject it: gate on the parity of R instead.
	// With CorrectReflection the solve already forced det(R)=+1, and a genuinely mirrored
	// candidate then fails the cross-match below.
	if !opts.CorrectReflection && r.Det() < 0 {
		return Result{}, false
	}

	matched, catalogCount := s.crossMatch(centroids, r, height, width, refinedFOV, opts)
	if len(matched) < 4 {
		return Result{}, false
	}

	prob := mismatchProbability(len(centroids), len(matched), catalogCount, opts.MatchRadius)
	if !(prob < opts.MatchThreshold) {
		return Result{}, false
	}

	imgVecs := make([]geometry.Vector3, len(matched))
	catVecs := make([]geometry.Vector3, len(matched))
	for i, m := range matched {
		imgVecs[i] = m.image
		catVecs[i] = m.celestial
	}

	finalR := solveRotation(imgVecs, catVecs, opts.CorrectReflection)

	var sumSq float64
	for i := range imgVecs {
		rotated := finalR.ApplyTranspose(imgVecs[i])
		a := geometry.AngleBetween(rotated, catVecs[i])
		sumSq += a * a
	}
	rmsRadians := math.Sqrt(sumSq / float64(len(imgVecs)))
	rmseArcsec := rmsRadians * geometry.RAD2DEG * 3600

	pointing := rotation.Extract(finalR)

	return Result{
		Pointing: astrometry.Pointing{
			RA:   geometry.Degrees(pointing.RA),
			Dec:  geometry.Degrees(pointing.Dec),
			Roll: geometry.Degrees(pointing.Roll),
			FOV:  geometry.Degrees(refinedFOV),
		},
		RMSE:    rmseArcsec,
		Matches: len(matched),
		Prob:    prob,
	}, true
}

/*****************************************************************************************************************/

// solveRotation picks the uncorrected or det(R)=+1-corrected Wahba solve per
// Options.CorrectReflection.
func solveRotation(imageVectors, celestialVectors []geometry.Vector3, correctReflection bool) rotation.Matrix {
	if correctReflection {
		return rotation.SolveCorrected(imageVectors, celestialVectors)
	}
	return rotation.Solve(imageVectors, celestialVectors)
}

/*****************************************************************************************************************/

// refineFOV recomputes the trial field of view for a candidate. With an FOVEstimate it scales the
// estimate by the ratio of the catalog pattern's largest edge angle to the image pattern's;
// without one it derives the FOV from the image pattern's largest pixel distance and the catalog
// pattern's largest edge angle. It returns ok=false if the refined FOV falls outside
// FOVMaxError of FOVEstimate, when both are set.
func (s *Solver) refineFOV(
	centroids []Centroid,
	quad []int,
	imageLargestEdge, catalogLargestEdge float64,
	width int,
	opts Options,
) (float64, bool) {
	var refinedFOV float64

	if opts.FOVEstimate != 0 {
		refinedFOV = opts.FOVEstimate * catalogLargestEdge / imageLargestEdge
	} else {
		d := largestPixelDistance(centroids, quad)
		f := d / (2 * math.Tan(catalogLargestEdge/2))
		refinedFOV = 2 * math.Atan(float64(width)/(2*f))
	}

	if opts.FOVEstimate != 0 && opts.FOVMaxError > 0 {
		if math.Abs(refinedFOV-opts.FOVEstimate) > opts.FOVMaxError {
			return 0, false
		}
	}

	return refinedFOV, true
}

/*****************************************************************************************************************/

// largestPixelDistance returns the largest Euclidean pixel distance between any two of the
// four centroids named by quad.
func largestPixelDistance(centroids []Centroid, quad []int) float64 {
	var largest float64

	for i := 0; i < len(quad); i++ {
		for j := i + 1; j < len(quad); j++ {
			a, b := centroids[quad[i]], centroids[quad[j]]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d > largest {
				largest = d
			}
		}
	}

	return largest
}

/*****************************************************************************************************************/

// sortByCentroidDistance orders the four vectors by their Euclidean distance from the
// pattern's own centroid, giving a canonical correspondence between an image pattern and a
// catalog pattern without combinatorial search.
func sortByCentroidDistance(vectors [4]geometry.Vector3) []geometry.Vector3 {
	var centroid geometry.Vector3
	for _, v := range vectors {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Scale(0.25)

	out := make([]geometry.Vector3, 4)
	copy(out, vectors[:])

	sort.Slice(out, func(i, j int) bool {
		return out[i].Sub(centroid).Norm() < out[j].Sub(centroid).Norm()
	})

	return out
}

/*****************************************************************************************************************/

// crossMatch rotates every image centroid into the celestial frame via Rᵀ and counts catalog
// verification stars within matchRadius·F of it, accepting a correspondence only when exactly
// one catalog star falls in the window. It returns the accepted correspondences and the number
// of verification-star candidates considered (k, used by the mismatch-probability estimate).
func (s *Solver) crossMatch(
	centroids []Centroid,
	r rotation.Matrix,
	height, width int,
	refinedFOV float64,
	opts Options,
) ([]matchedPair, int) {
	pointingDir := r.Row(0)
	halfDiagonalFOV := refinedFOV * math.Hypot(float64(width), float64(height)) / float64(width) / 2

	neighbors := s.index.Query(pointingDir, halfDiagonalFOV)

	// Query returns neighbors nearest-first, but the verification cap keeps the brightest
	// stars in view: star-table order is brightness order, so re-sort by index before
	// truncating.
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Index < neighbors[j].Index
	})

	verificationCap := s.db.Properties.VerificationStarsPerFOV
	if verificationCap > 0 && len(neighbors) > verificationCap {
		neighbors = neighbors[:verificationCap]
	}

	matchRadius := opts.MatchRadius * refinedFOV

	var matched []matchedPair

	for _, c := range centroids {
		v := geometry.PinholeLift(c.Y, c.X, height, width, refinedFOV)
		celestial := r.ApplyTranspose(v)

		hit := -1
		hits := 0
		for _, n := range neighbors {
			sv := s.db.Stars[n.Index].Vector()
			if geometry.AngleBetween(celestial, sv) <= matchRadius {
				hits++
				hit = n.Index
			}
		}

		if hits == 1 {
			matched = append(matched, matchedPair{image: v, celestial: s.db.Stars[hit].Vector()})
		}
	}

	return matched, len(neighbors)
}

/*****************************************************************************************************************/

// mismatchProbability scores a candidate match: with n image centroids, m matched pairs, and k
// catalog verification stars in view, the chance single-trial match probability is
// p ≈ k·matchRadius², and the mismatch probability is the binomial CDF of observing at most
// n-(m-2) non-matches among n trials with non-match probability 1-p. Two of the matches are
// consumed by the rotational degrees of freedom fit to the pattern, hence the subtraction.
func mismatchProbability(n, m, k int, matchRadius float64) float64 {
	p := float64(k) * matchRadius * matchRadius
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}

	binom := distuv.Binomial{N: float64(n), P: 1 - p}

	x := float64(n - (m - 2))
	if x < 0 {
		x = 0
	}
	if x > float64(n) {
		x = float64(n)
	}

	return binom.CDF(x)
}

/*****************************************************************************************************************/
