// Package vmath adapts mathgl's float64 types to the game's coordinate
// conventions: struct vectors for JSON-friendly state, and a column-major
// Mat4 with post-multiplying builders and ok-returning inverse and look-at.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for building a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func fromMgl3(v mgl64.Vec3) Vec3 { return Vec3{v[0], v[1], v[2]} }

func (v Vec3) Add(o Vec3) Vec3 { return fromMgl3(v.mgl().Add(o.mgl())) }

func (v Vec3) Sub(o Vec3) Vec3 { return fromMgl3(v.mgl().Sub(o.mgl())) }

func (v Vec3) Scale(s float64) Vec3 { return fromMgl3(v.mgl().Mul(s)) }

func (v Vec3) Dot(o Vec3) float64 { return v.mgl().Dot(o.mgl()) }

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 { return fromMgl3(v.mgl().Cross(o.mgl())) }

// Len returns the Euclidean length.
func (v Vec3) Len() float64 { return v.mgl().Len() }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	if v.Len() == 0 {
		return v
	}
	return fromMgl3(v.mgl().Normalize())
}

// Axis returns component i (0=X, 1=Y, 2=Z).
func (v Vec3) Axis(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: t*(b.X-a.X) + a.X,
		Y: t*(b.Y-a.Y) + a.Y,
		Z: t*(b.Z-a.Z) + a.Z,
	}
}

// WithinBox reports whether every axis of a and b differs by at most tol.
func WithinBox(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// Vec4 is a homogeneous coordinate.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 is shorthand for building a Vec4.
func V4(x, y, z, w float64) Vec4 { return Vec4{X: x, Y: y, Z: z, W: w} }

// Point lifts a Vec3 to a homogeneous point (w=1).
func Point(v Vec3) Vec4 { return Vec4{v.X, v.Y, v.Z, 1} }

// XYZ drops the homogeneous component without dividing.
func (v Vec4) XYZ() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Divide performs the perspective divide. A zero w yields the raw xyz.
func (v Vec4) Divide() Vec3 {
	if v.W == 0 {
		return v.XYZ()
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}
