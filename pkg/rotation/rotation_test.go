/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package rotation

/*****************************************************************************************************************/

import (
	"math"
	"testing"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

func TestExtractReconstructRoundTrip(t *testing.T) {
	cases := []Pointing{
		{RA: geometry.Radians(10), Dec: geometry.Radians(20), Roll: geometry.Radians(5)},
		{RA: geometry.Radians(270), Dec: geometry.Radians(-45), Roll: geometry.Radians(123)},
		{RA: geometry.Radians(0), Dec: geometry.Radians(0), Roll: geometry.Radians(0)},
		{RA: geometry.Radians(359), Dec: geometry.Radians(89), Roll: geometry.Radians(359.9)},
	}

	for _, p := range cases {
		r := Reconstruct(p)
		got := Extract(r)

		if !almostEqual(got.RA, p.RA, 1e-9) {
			t.Errorf("RA round-trip: got %v want %v", got.RA, p.RA)
		}
		if !almostEqual(got.Dec, p.Dec, 1e-9) {
			t.Errorf("Dec round-trip: got %v want %v", got.Dec, p.Dec)
		}
		if !almostEqual(got.Roll, p.Roll, 1e-9) {
			t.Errorf("Roll round-trip: got %v want %v", got.Roll, p.Roll)
		}

		r2 := Reconstruct(got)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if !almostEqual(r.At(i, j), r2.At(i, j), 1e-9) {
					t.Errorf("matrix round-trip mismatch at (%d,%d): got %v want %v", i, j, r2.At(i, j), r.At(i, j))
				}
			}
		}
	}
}

/*****************************************************************************************************************/

func TestSolveRecoversKnownRotation(t *testing.T) {
	want := Reconstruct(Pointing{RA: geometry.Radians(30), Dec: geometry.Radians(15), Roll: geometry.Radians(40)})

	imageVectors := []geometry.Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0.6, Y: 0.8, Z: 0},
	}

	// Solve recovers R such that Rᵀ maps image vectors into the celestial frame (the same
	// convention pose.go's crossMatch uses), so correspondences are built with ApplyTranspose,
	// not Apply.
	celestialVectors := make([]geometry.Vector3, len(imageVectors))
	for i, v := range imageVectors {
		celestialVectors[i] = want.ApplyTranspose(v)
	}

	got := Solve(imageVectors, celestialVectors)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !almostEqual(want.At(i, j), got.At(i, j), 1e-6) {
				t.Errorf("Solve mismatch at (%d,%d): got %v want %v", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

/*****************************************************************************************************************/

// TestSolveCorrectedFixesDeterminantOnMirroredInput checks the two Wahba variants against a
// left-handed (mirrored) correspondence set: the uncorrected Solve returns a reflection
// (det -1), while SolveCorrected still returns a proper rotation (det +1).
func TestSolveCorrectedFixesDeterminantOnMirroredInput(t *testing.T) {
	want := Reconstruct(Pointing{RA: geometry.Radians(120), Dec: geometry.Radians(-30), Roll: geometry.Radians(10)})

	imageVectors := []geometry.Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0.6, Y: 0.8, Z: 0},
	}

	celestialVectors := make([]geometry.Vector3, len(imageVectors))
	for i, v := range imageVectors {
		celestialVectors[i] = want.ApplyTranspose(v)
	}

	mirroredImage := make([]geometry.Vector3, len(imageVectors))
	for i, v := range imageVectors {
		mirroredImage[i] = geometry.Vector3{X: -v.X, Y: v.Y, Z: v.Z}
	}

	uncorrected := Solve(mirroredImage, celestialVectors)
	if d := mat.Det(uncorrected.data); d >= 0 {
		t.Errorf("uncorrected det(R) = %v, want negative on mirrored input", d)
	}

	corrected := SolveCorrected(mirroredImage, celestialVectors)
	if d := mat.Det(corrected.data); !almostEqual(d, 1, 1e-6) {
		t.Errorf("corrected det(R) = %v, want 1", d)
	}
}

/*****************************************************************************************************************/

func TestApplyTransposeInvertsApply(t *testing.T) {
	r := Reconstruct(Pointing{RA: geometry.Radians(200), Dec: geometry.Radians(-30), Roll: geometry.Radians(77)})

	v := geometry.Vector3{X: 0.2, Y: -0.3, Z: 0.9}.Normalize()

	rotated := r.Apply(v)
	back := r.ApplyTranspose(rotated)

	if !almostEqual(back.X, v.X, 1e-9) || !almostEqual(back.Y, v.Y, 1e-9) || !almostEqual(back.Z, v.Z, 1e-9) {
		t.Errorf("ApplyTranspose(Apply(v)) = %+v; want %+v", back, v)
	}
}

/*****************************************************************************************************************/
