package game

import (
	"math"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// AimBeam returns a head pose whose beam ray passes exactly through target.
// The beam starts below and to the right of the eye, so the pose is found by
// locating the point on the local ray at the target's range and rotating it
// onto the target. ok is false when the target is closer than the muzzle.
func AimBeam(target vmath.Vec3) (HeadPose, bool) {
	r := target.Len()
	d := beamFar.Sub(beamMuzzle)
	a := d.Dot(d)
	b := 2 * beamMuzzle.Dot(d)
	c := beamMuzzle.Dot(beamMuzzle) - r*r
	disc := b*b - 4*a*c
	if disc < 0 || r == 0 {
		return IdentityPose(), false
	}
	s := (-b + math.Sqrt(disc)) / (2 * a)
	if s < 0 || s > 1 {
		return IdentityPose(), false
	}
	local := vmath.Lerp(beamMuzzle, beamFar, s)

	from, to := local.Normalize(), target.Normalize()
	axis := from.Cross(to)
	head := vmath.Identity()
	if axis.Len() > 1e-12 {
		angle := math.Atan2(axis.Len(), from.Dot(to))
		head = vmath.Rotation(angle*180/math.Pi, axis.X, axis.Y, axis.Z)
	} else if from.Dot(to) < 0 {
		head = vmath.Rotation(180, 0, 1, 0)
	}
	view, ok := head.Invert()
	if !ok {
		return IdentityPose(), false
	}
	return PoseFromView(view), true
}

// ThrowVelocity is the launch velocity the given style produces for pose.
func ThrowVelocity(style ThrowStyle, pose HeadPose) vmath.Vec4 {
	if style == ThrowForward {
		f := pose.Forward
		return vmath.V4(-f.X*5, (1-f.Y)*5, f.Z*5, 0)
	}
	inv, ok := pose.View.Invert()
	if !ok {
		inv = vmath.Identity()
	}
	return inv.MulVec(throwLocalVelocity)
}

// throwSearch bounds for AimThrow, in degrees.
const (
	aimYawStep    = 2.0
	aimPitchMin   = -60.0
	aimPitchMax   = 80.0
	aimPitchStep  = 1.0
	aimFlightCap  = 600
	aimRefineStep = 0.1
)

// AimThrow searches yaw/pitch for the pose whose throw passes closest to a
// stationary target. It returns that pose and the closest per-axis miss
// distance; a value <= 0.2 means the throw scores.
func AimThrow(style ThrowStyle, target vmath.Vec3) (HeadPose, float64) {
	best := IdentityPose()
	bestMiss := math.Inf(1)
	var bestYaw, bestPitch float64
	try := func(yaw, pitch float64) {
		pose := PoseFromYawPitch(yaw, pitch)
		if miss := throwMiss(ThrowVelocity(style, pose), target); miss < bestMiss {
			best, bestMiss = pose, miss
			bestYaw, bestPitch = yaw, pitch
		}
	}
	for yaw := -180.0; yaw < 180; yaw += aimYawStep {
		for pitch := aimPitchMin; pitch <= aimPitchMax; pitch += aimPitchStep {
			try(yaw, pitch)
		}
	}
	y0, p0 := bestYaw, bestPitch
	for dy := -aimYawStep; dy <= aimYawStep; dy += aimRefineStep {
		for dp := -aimPitchStep; dp <= aimPitchStep; dp += aimRefineStep {
			try(y0+dy, p0+dp)
		}
	}
	return best, bestMiss
}

// throwMiss flies a projectile and returns its closest Chebyshev distance to target.
func throwMiss(vel vmath.Vec4, target vmath.Vec3) float64 {
	p := Projectile{Position: throwOrigin, Velocity: vel}
	miss := math.Inf(1)
	for i := 0; i < aimFlightCap; i++ {
		p = StepProjectile(p)
		pos := p.Position.XYZ()
		d := math.Max(math.Abs(pos.X-target.X), math.Max(math.Abs(pos.Y-target.Y), math.Abs(pos.Z-target.Z)))
		miss = math.Min(miss, d)
		if OutOfArena(pos) {
			break
		}
	}
	return miss
}
