package game

import (
	"github.com/Garsondee/vr-targets/internal/vmath"
)

const (
	signFadeFrames = 100
	signCopies     = 4
)

// Scene is everything an external renderer needs for one frame. All
// transforms are model matrices in world space.
type Scene struct {
	Frame int `json:"frame"`
	Mode  int `json:"mode"`
	Score int `json:"score"`
	Shots int `json:"shots"`

	Camera vmath.Mat4 `json:"camera"`
	Floor  vmath.Mat4 `json:"floor"`

	TargetVisible  bool       `json:"targetVisible"`
	Target         vmath.Mat4 `json:"target"`
	TargetPosition vmath.Vec3 `json:"targetPosition"`

	Projectile         vmath.Mat4 `json:"projectile"`
	ProjectilePosition vmath.Vec3 `json:"projectilePosition"`

	BeamFiring   bool       `json:"beamFiring"`
	Beam         vmath.Mat4 `json:"beam"`
	BeamDistance float64    `json:"beamDistance"`

	FlareVisible bool       `json:"flareVisible"`
	Flare        vmath.Mat4 `json:"flare"`
	FlareRadius  float64    `json:"flareRadius"`

	Reticle vmath.Mat4 `json:"reticle"`

	SignVisible bool                   `json:"signVisible"`
	SignAlpha   float64                `json:"signAlpha"`
	Signs       [signCopies]vmath.Mat4 `json:"signs"`
	Message     string                 `json:"message"`
}

// Scene snapshots the current frame for rendering.
func (s *Session) Scene() Scene {
	frame := s.State.Frame
	pp := s.Projectile.Position.XYZ()
	sc := Scene{
		Frame:              frame,
		Mode:               s.State.Mode,
		Score:              s.State.Score,
		Shots:              s.State.Shots,
		Camera:             s.camera,
		Floor:              s.floor,
		TargetVisible:      s.State.Mode > ModeGameOver,
		Target:             vmath.Translation(s.Target.Position.X, s.Target.Position.Y, s.Target.Position.Z),
		TargetPosition:     s.Target.Position,
		Projectile:         vmath.Translation(pp.X, pp.Y, pp.Z).Mul(s.Projectile.Spin),
		ProjectilePosition: pp,
		BeamFiring:         s.Beam.Firing,
		Beam:               s.Beam.Origin,
		BeamDistance:       s.Beam.Distance,
		Flare:              s.Flare.Transform,
		Reticle:            s.Reticle.Transform,
		Message:            s.Sign.Text,
	}

	if age := frame - s.Flare.StartFrame; age > 0 && age < flareFrames {
		sc.FlareVisible = true
		sc.FlareRadius = float64(age) / 50
	}

	sc.SignAlpha = 1
	if frame > s.Sign.FadeFrame {
		sc.SignAlpha = 1 - float64(frame-s.Sign.FadeFrame)/signFadeFrames
	}
	sc.SignVisible = s.Sign.Ready && frame < s.Sign.FadeFrame+signFadeFrames
	for i := range sc.Signs {
		sc.Signs[i] = vmath.Rotation(90*float64(i), 0, 1, 0).
			Translate(0.1, -0.05, -3.5).
			Scale(0.75, 0.75, 0.75)
	}
	return sc
}
