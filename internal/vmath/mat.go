package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is a column-major 4x4 matrix with the same layout as mgl64.Mat4:
// element (row r, column c) lives at index c*4+r.
type Mat4 mgl64.Mat4

// Identity returns the identity matrix.
func Identity() Mat4 { return Mat4(mgl64.Ident4()) }

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float64 { return mgl64.Mat4(m).At(r, c) }

// Mul returns m × o.
func (m Mat4) Mul(o Mat4) Mat4 { return Mat4(mgl64.Mat4(m).Mul4(mgl64.Mat4(o))) }

// MulVec returns m × v.
func (m Mat4) MulVec(v Vec4) Vec4 {
	r := mgl64.Mat4(m).Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, v.W})
	return Vec4{r[0], r[1], r[2], r[3]}
}

// TransformPoint applies m to p (w=1) and perspective-divides the result.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.MulVec(Point(p)).Divide()
}

// Translate returns m × T(x,y,z).
func (m Mat4) Translate(x, y, z float64) Mat4 {
	return m.Mul(Mat4(mgl64.Translate3D(x, y, z)))
}

// Scale returns m × S(x,y,z).
func (m Mat4) Scale(x, y, z float64) Mat4 {
	return m.Mul(Mat4(mgl64.Scale3D(x, y, z)))
}

// Rotate returns m × R(angleDeg about x,y,z).
func (m Mat4) Rotate(angleDeg, x, y, z float64) Mat4 {
	return m.Mul(Rotation(angleDeg, x, y, z))
}

// Translation builds T(x,y,z).
func Translation(x, y, z float64) Mat4 { return Mat4(mgl64.Translate3D(x, y, z)) }

// Rotation builds a right-handed rotation of angleDeg degrees about the axis
// (x,y,z). The axis does not need to be normalised; a zero axis gives the identity.
func Rotation(angleDeg, x, y, z float64) Mat4 {
	axis := mgl64.Vec3{x, y, z}
	l := axis.Len()
	if l == 0 {
		return Identity()
	}
	if l != 1 {
		axis = axis.Mul(1 / l)
	}
	return Mat4(mgl64.HomogRotate3D(mgl64.DegToRad(angleDeg), axis))
}

// LookAt builds a view matrix for an eye at eye looking toward center.
// ok is false when the viewing direction is parallel to up (or zero), in
// which case the identity is returned instead of mathgl's NaN matrix.
func LookAt(eye, center, up Vec3) (Mat4, bool) {
	f := center.Sub(eye)
	if f.Len() == 0 || f.Normalize().Cross(up).Len() < 1e-12 {
		return Identity(), false
	}
	return Mat4(mgl64.LookAtV(eye.mgl(), center.mgl(), up.mgl())), true
}

// Perspective builds a projection matrix with a vertical field of view in degrees.
func Perspective(fovyDeg, aspect, near, far float64) Mat4 {
	return Mat4(mgl64.Perspective(mgl64.DegToRad(fovyDeg), aspect, near, far))
}

// Invert returns the inverse of m. ok is false for a singular matrix.
func (m Mat4) Invert() (Mat4, bool) {
	g := mgl64.Mat4(m)
	if g.Det() == 0 {
		return Identity(), false
	}
	return Mat4(g.Inv()), true
}

// ApproxEqual reports whether every element of m and o differs by at most eps
// (an absolute tolerance).
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}
