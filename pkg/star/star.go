/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package star

/*****************************************************************************************************************/

import (
	"sort"

	"github.com/nightwatch/platesolve/pkg/geometry"
)

/*****************************************************************************************************************/

// Star is a single catalog or image entry: a right ascension / declination pair (radians), its
// equivalent unit direction vector, and a magnitude. Mag is float32 to match the on-disk
// star_table archive layout, which packs six float32 columns per row.
type Star struct {
	RA  float64
	Dec float64
	X   float64
	Y   float64
	Z   float64
	Mag float32
}

/*****************************************************************************************************************/

// New builds a Star from an equatorial coordinate and magnitude, deriving its unit vector.
func New(ra, dec float64, mag float32) Star {
	v := geometry.UnitVectorFromEquatorial(ra, dec)
	return Star{RA: ra, Dec: dec, X: v.X, Y: v.Y, Z: v.Z, Mag: mag}
}

/*****************************************************************************************************************/

// Vector returns the star's unit direction vector.
func (s Star) Vector() geometry.Vector3 {
	return geometry.Vector3{X: s.X, Y: s.Y, Z: s.Z}
}

/*****************************************************************************************************************/

// AngularSeparation returns the great-circle angle, in radians, between two stars.
func (s Star) AngularSeparation(o Star) float64 {
	return geometry.AngleBetween(s.Vector(), o.Vector())
}

/*****************************************************************************************************************/

// SortByMagnitude sorts stars brightest-first (ascending magnitude), the ordering every
// downstream stage — density thinning, pattern enumeration, catalog indexing — assumes holds
// for a star table.
func SortByMagnitude(stars []Star) {
	sort.Slice(stars, func(i, j int) bool {
		return stars[i].Mag < stars[j].Mag
	})
}

/*****************************************************************************************************************/
