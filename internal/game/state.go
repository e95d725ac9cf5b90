package game

import (
	"github.com/Garsondee/vr-targets/internal/vmath"
)

// Mode values. Anything >= ModeBeam is a beam level; higher levels only change
// how the target moves after repositioning.
const (
	ModeGameOver = 0
	ModeThrow    = 1
	ModeBeam     = 2
)

// GameState is the score/shots/mode aggregate. Only the rules in rules.go mutate it.
type GameState struct {
	Score int
	Shots int
	Mode  int
	Frame int
}

// TargetCube is the moving target.
type TargetCube struct {
	Position     vmath.Vec3
	Velocity     vmath.Vec3
	Acceleration vmath.Vec3
}

// Projectile is the thrown cube. Out is true when nothing is in flight.
type Projectile struct {
	Position vmath.Vec4
	Velocity vmath.Vec4
	Spin     vmath.Mat4
	Out      bool
}

// Beam is the ray weapon used from ModeBeam onwards.
type Beam struct {
	Firing   bool
	Distance float64
	Hit      bool
	// Origin is the inverse head view captured when firing started. While
	// idle it tracks the head so the reticle can follow the gaze.
	Origin vmath.Mat4
}

// Marker is a billboarded flare or reticle quad.
type Marker struct {
	Transform  vmath.Mat4
	StartFrame int
}

// Sign is the fading message quad state.
type Sign struct {
	Text      string
	FadeFrame int
	Ready     bool
}

// HeadPose is one sample from the head tracker.
type HeadPose struct {
	View    vmath.Mat4
	Forward vmath.Vec3
}

// PoseFromView derives the tracker's forward vector from a head view matrix.
func PoseFromView(view vmath.Mat4) HeadPose {
	return HeadPose{
		View:    view,
		Forward: vmath.V3(-view[8], -view[9], -view[10]),
	}
}

// IdentityPose is a head looking down -Z.
func IdentityPose() HeadPose {
	return PoseFromView(vmath.Identity())
}

// PoseFromYawPitch builds a pose for a head turned yawDeg about +Y (positive
// turns left) and pitched pitchDeg about +X (positive looks up).
func PoseFromYawPitch(yawDeg, pitchDeg float64) HeadPose {
	view := vmath.Rotation(-pitchDeg, 1, 0, 0).Mul(vmath.Rotation(-yawDeg, 0, 1, 0))
	return PoseFromView(view)
}
