/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package astrometry

/*****************************************************************************************************************/

import "math"

/*****************************************************************************************************************/

// ICRSEquatorialCoordinate is a right ascension / declination pair in the International
// Celestial Reference System, in degrees.
type ICRSEquatorialCoordinate struct {
	RA  float64
	Dec float64
}

/*****************************************************************************************************************/

// Pointing is the astrometric solution for a single image: the pointing direction of the
// camera's principal ray, the roll about that ray, and the refined field of view, all in
// degrees. An unsolved Pointing carries NaN in every field, per the "not-solved" sentinel
// of the solver's failure contract.
type Pointing struct {
	RA   float64
	Dec  float64
	Roll float64
	FOV  float64
}

/*****************************************************************************************************************/

// Unsolved returns the "not-solved" sentinel Pointing.
func Unsolved() Pointing {
	return Pointing{RA: math.NaN(), Dec: math.NaN(), Roll: math.NaN(), FOV: math.NaN()}
}

/*****************************************************************************************************************/

// IsSolved reports whether p is a real astrometric solution, as opposed to the "not-solved"
// sentinel returned when the solver exhausts its candidates without an acceptable match.
func (p Pointing) IsSolved() bool {
	return !math.IsNaN(p.RA)
}

/*****************************************************************************************************************/
