package math2d

import (
	"fmt"
	"math"
)

const (

	// Scene distances are measured in pixels, velocities in meters per second.
	// This is the scale between the two.
	MetersPerPixel = 0.05
	PixelsPerMeter = 1 / MetersPerPixel
)

// Vector is a 2d vector in scene space. Y points down.
type Vector struct {
	X float64
	Y float64
}

var (
	ZeroVector = Vector{}
)

// MakeVector returns a pointer to a new Vector.
func MakeVector(x float64, y float64) *Vector {
	return &Vector{x, y}
}

func (v Vector) String() string {
	return fmt.Sprintf("&Vec2{x=%0.2f y=%0.2f}", v.X, v.Y)
}

// Zero returns true if the vector is at 0,0.
func (v Vector) Zero() bool {
	return (v.X == 0) && (v.Y == 0)
}

func (v Vector) Add(vv Vector) Vector {
	return Vector{v.X + vv.X, v.Y + vv.Y}
}

func (v Vector) Subtract(vv Vector) Vector {
	return Vector{v.X - vv.X, v.Y - vv.Y}
}

func (v Vector) MultiplyByScalar(s float64) Vector {
	return Vector{v.X * s, v.Y * s}
}

func (v Vector) Magnitude() float64 {
	return math.Sqrt((v.X * v.X) + (v.Y * v.Y))
}

// Unit returns a vector of length one in the same direction, or the zero
// vector if this is zero-length.
func (v Vector) Unit() Vector {
	m := v.Magnitude()
	if m == 0 {
		return ZeroVector
	}
	return Vector{v.X / m, v.Y / m}
}

// Distance calculates and returns the distance between this vector and another.
func (v Vector) Distance(vv Vector) float64 {
	return v.Subtract(vv).Magnitude()
}

func (v Vector) Dot(vv Vector) float64 {
	return (v.X * vv.X) + (v.Y * vv.Y)
}

// Perp returns the vector rotated by +90 degrees.
func (v Vector) Perp() Vector {
	return Vector{-v.Y, v.X}
}

// FlipX mirrors the vector around the Y axis if flip is true.
func (v Vector) FlipX(flip bool) Vector {
	if flip {
		return Vector{-v.X, v.Y}
	}
	return v
}

// Rotate returns the vector rotated by the given angle (in radians).
func (v Vector) Rotate(rad float64) Vector {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Vector{
		(v.X * c) - (v.Y * s),
		(v.X * s) + (v.Y * c),
	}
}

// Angle returns the absolute angle of the vector, in radians.
func (v Vector) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// SetMagnitude returns a vector in the same direction with the given length.
func (v Vector) SetMagnitude(m float64) Vector {
	return v.Unit().MultiplyByScalar(m)
}

// CapMagnitude returns the vector shortened to at most m.
func (v Vector) CapMagnitude(m float64) Vector {
	if v.Magnitude() > m {
		return v.SetMagnitude(m)
	}
	return v
}

// Largest returns the larger of the absolute X and Y components.
func (v Vector) Largest() float64 {
	return math.Max(math.Abs(v.X), math.Abs(v.Y))
}

// MultiplyByMatrix returns a new Vector, by applying the flip and rotation of
// the given matrix.
func (v Vector) MultiplyByMatrix(m Matrix) Vector {
	return v.FlipX(m.FlipX).Rotate(m.Radians)
}
