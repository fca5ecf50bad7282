package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all orbit geometry
// (kilometres).
const EarthRadiusKm = 6371.0

// MuEarth is Earth's standard gravitational parameter, km³/s².
const MuEarth = 398600.4418

// Vec3 is an Earth-centred Cartesian position in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Spherical is a spherical-coordinate view of a position about the Earth
// centre: radius in km, theta is the azimuth angle and phi the polar angle,
// both in radians.
type Spherical struct {
	R     float64
	Theta float64
	Phi   float64
}

// ToSpherical converts the Cartesian position to spherical coordinates.
func (v Vec3) ToSpherical() Spherical {
	r := v.Norm()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		R:     r,
		Theta: math.Atan2(v.Y, v.X),
		Phi:   math.Acos(v.Z / r),
	}
}

// ToCartesian converts back to a Cartesian position.
func (s Spherical) ToCartesian() Vec3 {
	return Vec3{
		X: s.R * math.Sin(s.Phi) * math.Cos(s.Theta),
		Y: s.R * math.Sin(s.Phi) * math.Sin(s.Theta),
		Z: s.R * math.Cos(s.Phi),
	}
}

// MarshalJSON encodes the vector as a 3-element array [x, y, z], the wire
// shape expected by API and WebSocket consumers.
func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

// UnmarshalJSON decodes a 3-element array into the vector.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("vec3: decode position: %w", err)
	}
	v.X, v.Y, v.Z = arr[0], arr[1], arr[2]
	return nil
}
