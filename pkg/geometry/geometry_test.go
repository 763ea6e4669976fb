/*****************************************************************************************************************/

//	@package	platesolve

/*****************************************************************************************************************/

package geometry

/*****************************************************************************************************************/

import (
	"math"
	"testing"
)

/*****************************************************************************************************************/

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

/*****************************************************************************************************************/

func TestRadiansDegreesRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 1, 45, 90, 180, 359.5} {
		got := Degrees(Radians(deg))
		if !almostEqual(got, deg, 1e-9) {
			t.Errorf("Degrees(Radians(%f)) = %f; want %f", deg, got, deg)
		}
	}
}

/*****************************************************************************************************************/

func TestUnitVectorFromEquatorialIsUnit(t *testing.T) {
	cases := [][2]float64{
		{0, 0},
		{Radians(90), 0},
		{Radians(180), Radians(45)},
		{Radians(270), Radians(-30)},
	}

	for _, c := range cases {
		v := UnitVectorFromEquatorial(c[0], c[1])
		if !almostEqual(v.Norm(), 1, 1e-12) {
			t.Errorf("UnitVectorFromEquatorial(%f, %f) has norm %f; want 1", c[0], c[1], v.Norm())
		}
	}
}

/*****************************************************************************************************************/

func TestEquatorialUnitVectorRoundTrip(t *testing.T) {
	cases := [][2]float64{
		{Radians(0), Radians(0)},
		{Radians(90), Radians(45)},
		{Radians(179.9), Radians(-60)},
		{Radians(350), Radians(89)},
	}

	for _, c := range cases {
		v := UnitVectorFromEquatorial(c[0], c[1])
		ra, dec := EquatorialFromUnitVector(v)

		if !almostEqual(ra, c[0], 1e-9) {
			t.Errorf("RA round-trip: got %f, want %f", ra, c[0])
		}

		if !almostEqual(dec, c[1], 1e-9) {
			t.Errorf("Dec round-trip: got %f, want %f", dec, c[1])
		}
	}
}

/*****************************************************************************************************************/

func TestAngleBetweenKnownSeparation(t *testing.T) {
	a := UnitVectorFromEquatorial(0, 0)
	b := UnitVectorFromEquatorial(Radians(90), 0)

	got := Degrees(AngleBetween(a, b))

	if !almostEqual(got, 90, 1e-9) {
		t.Errorf("AngleBetween = %f degrees; want 90", got)
	}
}

/*****************************************************************************************************************/

func TestAngleBetweenIdenticalVectorsIsZero(t *testing.T) {
	a := UnitVectorFromEquatorial(Radians(123), Radians(-45))

	got := AngleBetween(a, a)

	if !almostEqual(got, 0, 1e-12) {
		t.Errorf("AngleBetween(a, a) = %f; want 0", got)
	}
}

/*****************************************************************************************************************/

func TestPinholeLiftIsUnit(t *testing.T) {
	height, width := 960, 1280
	fov := Radians(12)

	for _, p := range [][2]float64{{0, 0}, {480, 640}, {959, 1279}, {0, 1279}} {
		v := PinholeLift(p[0], p[1], height, width, fov)
		if !almostEqual(v.Norm(), 1, 1e-9) {
			t.Errorf("PinholeLift(%v) has norm %f; want 1", p, v.Norm())
		}
	}
}

/*****************************************************************************************************************/

func TestPinholeLiftCenterIsPrincipalRay(t *testing.T) {
	height, width := 960, 1280
	fov := Radians(12)

	v := PinholeLift(float64(height)/2, float64(width)/2, height, width, fov)

	if !almostEqual(v.X, 1, 1e-9) || !almostEqual(v.Y, 0, 1e-9) || !almostEqual(v.Z, 0, 1e-9) {
		t.Errorf("PinholeLift at image center = %+v; want (1,0,0)", v)
	}
}

/*****************************************************************************************************************/

func TestPinholeRoundTrip(t *testing.T) {
	height, width := 960, 1280
	fov := Radians(12)

	cases := [][2]float64{
		{100, 200},
		{480, 640},
		{0, 0},
		{959, 1279},
	}

	for _, c := range cases {
		v := PinholeLift(c[0], c[1], height, width, fov)

		y, x, err := PinholeProject(v, height, width, fov)
		if err != nil {
			t.Fatalf("PinholeProject returned unexpected error: %v", err)
		}

		if !almostEqual(y, c[0], 1e-6) || !almostEqual(x, c[1], 1e-6) {
			t.Errorf("round trip for %v = (%f, %f); want %v", c, y, x, c)
		}
	}
}

/*****************************************************************************************************************/

func TestPinholeProjectBehindCameraErrors(t *testing.T) {
	v := Vector3{X: -1, Y: 0, Z: 0}

	_, _, err := PinholeProject(v, 960, 1280, Radians(12))
	if err == nil {
		t.Error("expected error projecting a vector behind the camera, got none")
	}
}

/*****************************************************************************************************************/

func TestNormalizeZeroVectorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic normalizing the zero vector, got none")
		}
	}()

	Vector3{}.Normalize()
}

/*****************************************************************************************************************/
