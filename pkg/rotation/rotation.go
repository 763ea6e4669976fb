/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package rotation

/*****************************************************************************************************************/

import (
	"math"

	"github.com/nightwatch/platesolve/pkg/geometry"
	"gonum.org/v1/gonum/mat"
)

/*****************************************************************************************************************/

// Matrix is a 3x3 rotation from camera-frame coordinates to celestial (ICRS) coordinates. The
// first row is the camera's principal-ray pointing direction, expressed in the celestial frame.
type Matrix struct {
	data *mat.Dense
}

/*****************************************************************************************************************/

// Identity returns the 3x3 identity rotation.
func Identity() Matrix {
	d := mat.NewDense(3, 3, nil)
	d.Set(0, 0, 1)
	d.Set(1, 1, 1)
	d.Set(2, 2, 1)
	return Matrix{data: d}
}

/*****************************************************************************************************************/

// At returns R[i][j].
func (r Matrix) At(i, j int) float64 {
	return r.data.At(i, j)
}

/*****************************************************************************************************************/

// Row returns row i as a Vector3.
func (r Matrix) Row(i int) geometry.Vector3 {
	return geometry.Vector3{X: r.data.At(i, 0), Y: r.data.At(i, 1), Z: r.data.At(i, 2)}
}

/*****************************************************************************************************************/

// Det returns the determinant of R: +1 for a proper rotation, -1 when R is a reflection, as
// Solve produces for a mirrored correspondence.
func (r Matrix) Det() float64 {
	return mat.Det(r.data)
}

/*****************************************************************************************************************/

// Apply rotates v by R, i.e. computes R*v.
func (r Matrix) Apply(v geometry.Vector3) geometry.Vector3 {
	col := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(r.data, col)
	return geometry.Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

/*****************************************************************************************************************/

// ApplyTranspose rotates v by Rᵀ, used to bring image-frame vectors into the celestial frame
// during verification.
func (r Matrix) ApplyTranspose(v geometry.Vector3) geometry.Vector3 {
	var t mat.Dense
	t.CloneFrom(r.data.T())
	col := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(&t, col)
	return geometry.Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

/*****************************************************************************************************************/

// Solve estimates the rotation R that best maps image-frame unit vectors (imageVectors) onto
// their corresponding celestial-frame unit vectors (celestialVectors), by Wahba's method: build
// H = Σ vᵢᵐ·(vᵢᶜ)ᵀ, take its SVD H = UΣVᵀ, and set R = U·Vᵀ. The det(R)=+1 reflection
// correction is deliberately omitted — mirrored inputs yield det(R)=-1, left for the caller to
// detect via Det and reject.
//
// Solve panics if len(imageVectors) != len(celestialVectors) or either slice is empty; callers
// are expected to have already matched up corresponding pairs.
func Solve(imageVectors, celestialVectors []geometry.Vector3) Matrix {
	if len(imageVectors) != len(celestialVectors) || len(imageVectors) == 0 {
		panic("rotation: mismatched or empty vector correspondence")
	}

	h := mat.NewDense(3, 3, nil)

	for i := range imageVectors {
		vm := imageVectors[i]
		vc := celestialVectors[i]

		outer := mat.NewDense(3, 3, []float64{
			vm.X * vc.X, vm.X * vc.Y, vm.X * vc.Z,
			vm.Y * vc.X, vm.Y * vc.Y, vm.Y * vc.Z,
			vm.Z * vc.X, vm.Z * vc.Y, vm.Z * vc.Z,
		})

		h.Add(h, outer)
	}

	var svd mat.SVD
	ok := svd.Factorize(h, mat.SVDFull)
	if !ok {
		return Identity()
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&u, v.T())

	return Matrix{data: &r}
}

/*****************************************************************************************************************/

// SolveCorrected is Solve with the det(R)=+1 reflection correction applied: R = U·diag(1,1,d)·Vᵀ
// where d = det(U)·det(V). Unlike Solve, a mirrored correspondence here still yields a proper
// rotation rather than being left with det(R)=-1 for the caller to reject downstream.
func SolveCorrected(imageVectors, celestialVectors []geometry.Vector3) Matrix {
	if len(imageVectors) != len(celestialVectors) || len(imageVectors) == 0 {
		panic("rotation: mismatched or empty vector correspondence")
	}

	h := mat.NewDense(3, 3, nil)

	for i := range imageVectors {
		vm := imageVectors[i]
		vc := celestialVectors[i]

		outer := mat.NewDense(3, 3, []float64{
			vm.X * vc.X, vm.X * vc.Y, vm.X * vc.Z,
			vm.Y * vc.X, vm.Y * vc.Y, vm.Y * vc.Z,
			vm.Z * vc.X, vm.Z * vc.Y, vm.Z * vc.Z,
		})

		h.Add(h, outer)
	}

	var svd mat.SVD
	ok := svd.Factorize(h, mat.SVDFull)
	if !ok {
		return Identity()
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	d := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		d = -1.0
	}

	correction := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, d})

	var corrected, r mat.Dense
	corrected.Mul(&u, correction)
	r.Mul(&corrected, v.T())

	return Matrix{data: &r}
}

/*****************************************************************************************************************/

// Pointing is the RA/Dec/Roll extracted from a rotation matrix, in radians. RA and Roll are
// normalized into [0, 2*pi).
type Pointing struct {
	RA   float64
	Dec  float64
	Roll float64
}

/*****************************************************************************************************************/

// Extract recovers RA/Dec/Roll from R. R's first row is the pointing unit vector in the
// celestial frame, and Rᵀ maps camera-frame vectors into that frame.
//
//	RA   = atan2(R[0,1], R[0,0]) mod 2*pi
//	Dec  = atan2(R[0,2], sqrt(R[1,2]^2 + R[2,2]^2))
//	Roll = atan2(R[1,2], R[2,2]) mod 2*pi
func Extract(r Matrix) Pointing {
	ra := math.Atan2(r.At(0, 1), r.At(0, 0))
	if ra < 0 {
		ra += 2 * math.Pi
	}

	dec := math.Atan2(r.At(0, 2), math.Hypot(r.At(1, 2), r.At(2, 2)))

	roll := math.Atan2(r.At(1, 2), r.At(2, 2))
	if roll < 0 {
		roll += 2 * math.Pi
	}

	return Pointing{RA: ra, Dec: dec, Roll: roll}
}

/*****************************************************************************************************************/

// Reconstruct builds the rotation matrix corresponding to a given RA/Dec/Roll, the inverse of
// Extract.
func Reconstruct(p Pointing) Matrix {
	cosRA, sinRA := math.Cos(p.RA), math.Sin(p.RA)
	cosDec, sinDec := math.Cos(p.Dec), math.Sin(p.Dec)
	cosRoll, sinRoll := math.Cos(p.Roll), math.Sin(p.Roll)

	row0 := geometry.Vector3{X: cosDec * cosRA, Y: cosDec * sinRA, Z: sinDec}

	// row1/row2 span the plane orthogonal to row0; Roll is the rotation of that plane about
	// row0, measured so that atan2(R[1,2], R[2,2]) reproduces p.Roll.
	east := geometry.Vector3{X: -sinRA, Y: cosRA, Z: 0}
	north := geometry.Vector3{
		X: -sinDec * cosRA,
		Y: -sinDec * sinRA,
		Z: cosDec,
	}

	row1 := geometry.Vector3{
		X: north.X*sinRoll + east.X*cosRoll,
		Y: north.Y*sinRoll + east.Y*cosRoll,
		Z: north.Z*sinRoll + east.Z*cosRoll,
	}

	row2 := geometry.Vector3{
		X: north.X*cosRoll - east.X*sinRoll,
		Y: north.Y*cosRoll - east.Y*sinRoll,
		Z: north.Z*cosRoll - east.Z*sinRoll,
	}

	d := mat.NewDense(3, 3, []float64{
		row0.X, row0.Y, row0.Z,
		row1.X, row1.Y, row1.Z,
		row2.X, row2.Y, row2.Z,
	})

	return Matrix{data: d}
}

/*****************************************************************************************************************/
