package viewer

import (
	"math"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/vmath"
)

// minClipW rejects points at or behind the eye.
const minClipW = 0.05

// viewport maps normalised device coordinates onto one eye's screen rectangle.
type viewport struct {
	x, y, w, h float64
}

// project transforms a world point by mvp and returns its screen position.
// ok is false for points behind the near plane.
func (vp viewport) project(mvp vmath.Mat4, p vmath.Vec3) (float32, float32, bool) {
	c := mvp.MulVec(vmath.Point(p))
	if c.W < minClipW {
		return 0, 0, false
	}
	nx, ny := c.X/c.W, c.Y/c.W
	sx := vp.x + (nx+1)/2*vp.w
	sy := vp.y + (1-ny)/2*vp.h
	return float32(sx), float32(sy), true
}

// clipSegment trims a world-space segment to the part in front of the eye,
// working in clip space so perspective stays correct.
func clipSegment(mvp vmath.Mat4, a, b vmath.Vec3) (vmath.Vec3, vmath.Vec3, bool) {
	ca, cb := mvp.MulVec(vmath.Point(a)), mvp.MulVec(vmath.Point(b))
	switch {
	case ca.W >= minClipW && cb.W >= minClipW:
		return a, b, true
	case ca.W < minClipW && cb.W < minClipW:
		return a, b, false
	}
	t := (minClipW - ca.W) / (cb.W - ca.W)
	cut := vmath.Lerp(a, b, t)
	if ca.W < minClipW {
		return cut, b, true
	}
	return a, cut, true
}

// eyeView builds the view for one eye: half the interpupillary distance to
// the side of the head, then head rotation, then the base camera.
func eyeView(eye int, head, camera vmath.Mat4, ipd float64) vmath.Mat4 {
	dx := ipd / 2
	if eye == 0 {
		dx = -dx
	}
	return vmath.Translation(-dx, 0, 0).Mul(head.Mul(camera))
}

// cubeEdges lists the 12 edges of a cube of the given half size in local space.
func cubeEdges(half float64) [12][2]vmath.Vec3 {
	var c [8]vmath.Vec3
	for i := range c {
		c[i] = vmath.V3(
			sign(i&1)*half,
			sign(i&2)*half,
			sign(i&4)*half,
		)
	}
	return [12][2]vmath.Vec3{
		{c[0], c[1]}, {c[2], c[3]}, {c[4], c[5]}, {c[6], c[7]},
		{c[0], c[2]}, {c[1], c[3]}, {c[4], c[6]}, {c[5], c[7]},
		{c[0], c[4]}, {c[1], c[5]}, {c[2], c[6]}, {c[3], c[7]},
	}
}

func sign(bit int) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}

// circle returns n points on a circle of radius r in the local XY plane.
func circle(r float64, n int) []vmath.Vec3 {
	pts := make([]vmath.Vec3, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vmath.V3(r*math.Cos(a), r*math.Sin(a), 0)
	}
	return pts
}

// beamLength is the world distance spanned by the beam segment.
const beamLength = 10.0

// beamSegment returns the travelled window of a firing beam in world space:
// the front is at Distance and the tail trails it by one beam length.
func beamSegment(sc game.Scene) (vmath.Vec3, vmath.Vec3, bool) {
	if !sc.BeamFiring || sc.BeamDistance <= 0 {
		return vmath.Vec3{}, vmath.Vec3{}, false
	}
	front := min(sc.BeamDistance/beamLength, 1)
	tail := max((sc.BeamDistance-beamLength)/beamLength, 0)
	if tail >= front {
		return vmath.Vec3{}, vmath.Vec3{}, false
	}
	muzzle, far := game.BeamEndpoints(sc.Beam)
	return vmath.Lerp(muzzle, far, tail), vmath.Lerp(muzzle, far, front), true
}
