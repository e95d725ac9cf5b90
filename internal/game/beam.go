package game

import (
	"github.com/Garsondee/vr-targets/internal/vmath"
)

// HitKind classifies the first qualifying point found along the beam.
type HitKind int

const (
	NoHit HitKind = iota
	TargetHit
	WallHit
)

func (k HitKind) String() string {
	switch k {
	case TargetHit:
		return "target"
	case WallHit:
		return "wall"
	default:
		return "none"
	}
}

// Beam anchors in the beam's local frame: the muzzle below and right of the
// eye, and the far end 10 units straight ahead.
var (
	beamMuzzle = vmath.V3(0.2, -0.75, 0)
	beamFar    = vmath.V3(0, 0, -10)
)

const (
	coarseSteps = 100 // t = 0, 0.01, ... 0.99
	coarseStep  = 0.01
	fineSteps   = 10 // t0-0.005 ... t0+0.004
	fineStep    = 0.001
	fineHalfWin = 0.005
)

// BeamHit is the result of one sweep.
type BeamHit struct {
	Kind HitKind
	// T is the refined parameter along the ray; CoarseT the sweep step that
	// first qualified. Point is the ray position at T.
	T       float64
	CoarseT float64
	Point   vmath.Vec3
	// Refined is false when the fine pass could not reproduce a coarse target hit.
	Refined bool
	// Live is set for target hits inside the portion of the beam already travelled.
	Live bool
}

// BeamEndpoints transforms the local anchors by origin and perspective-divides them.
func BeamEndpoints(origin vmath.Mat4) (muzzle, far vmath.Vec3) {
	return origin.TransformPoint(beamMuzzle), origin.TransformPoint(beamFar)
}

// EvaluateBeam sweeps the ray defined by origin from the muzzle outwards and
// reports the nearest target or wall intersection. It is a pure function of
// its inputs.
func EvaluateBeam(origin vmath.Mat4, distance float64, target vmath.Vec3) BeamHit {
	p1, p2 := BeamEndpoints(origin)
	for i := 0; i < coarseSteps; i++ {
		t0 := float64(i) * coarseStep
		q := vmath.Lerp(p1, p2, t0)
		hit := vmath.WithinBox(q, target, beamHitTolerance)
		res := BeamHit{T: t0, CoarseT: t0, Point: q, Refined: true}
		if hit {
			res.T, res.Point, res.Refined = refineBeam(p1, p2, target, t0, q)
		}
		wall := touchesWall(res.Point)
		if !hit && !wall {
			continue
		}
		if hit {
			res.Kind = TargetHit
			res.Live = t0*beamLength < distance && t0*beamLength > distance-beamLength
		} else {
			res.Kind = WallHit
		}
		return res
	}
	return BeamHit{Kind: NoHit, Refined: true}
}

// refineBeam looks for the first fine step around t0 that still satisfies the
// target predicate. On failure the coarse estimate is returned.
func refineBeam(p1, p2, target vmath.Vec3, t0 float64, coarse vmath.Vec3) (float64, vmath.Vec3, bool) {
	for j := 0; j < fineSteps; j++ {
		t := t0 - fineHalfWin + float64(j)*fineStep
		q := vmath.Lerp(p1, p2, t)
		if vmath.WithinBox(q, target, beamHitTolerance) {
			return t, q, true
		}
	}
	return t0, coarse, false
}

// Billboard orients a unit quad at `at` to face the origin, nudges it by a
// world-space offset and scales it uniformly.
func Billboard(at, offset vmath.Vec3, scale float64) vmath.Mat4 {
	face := vmath.Identity()
	if look, ok := vmath.LookAt(vmath.V3(0, 0, 0), at, vmath.V3(0, 1, 0)); ok {
		if inv, ok := look.Invert(); ok {
			face = inv
		}
	}
	m := vmath.Translation(at.X, at.Y, at.Z).Translate(offset.X, offset.Y, offset.Z)
	return m.Mul(face).Scale(scale, scale, scale)
}

const (
	flareScale      = 0.5
	reticleScale    = 0.25 / 2
	wallReticleLift = 0.01
	flareFrames     = 51
)

// stepBeam runs the beam sweep for beam levels, or pins the reticle ahead of
// the head in throw mode and on the game-over screen.
func (s *Session) stepBeam() {
	if !s.Beam.Firing {
		s.Beam.Origin = s.invHead
	}
	if s.State.Mode < ModeBeam {
		s.Reticle.Transform = s.invHead.Mul(vmath.Translation(0, 0, -1.5).Scale(0.05, 0.05, 0.05))
		return
	}

	hit := s.sweep(s.Beam.Origin, s.Beam.Distance, s.Target.Position)
	if hit.Kind == TargetHit && !hit.Refined {
		s.SimLog.Add(s.State.Frame, "beam", "beam", "refine_failed", fmtVec(hit.Point), hit.CoarseT)
	}
	if s.Beam.Firing && !s.Beam.Hit && hit.Live {
		s.Beam.Hit = true
		s.SimLog.Add(s.State.Frame, "beam", "score", "beam_hit", fmtVec(hit.Point), hit.T)
		s.shotFinished(2)
		s.Flare = Marker{Transform: Billboard(hit.Point, vmath.Vec3{}, flareScale), StartFrame: s.State.Frame}
		s.hideObject()
	}
	switch hit.Kind {
	case TargetHit:
		s.Reticle.Transform = Billboard(hit.Point, vmath.Vec3{}, reticleScale)
	case WallHit:
		s.Reticle.Transform = Billboard(hit.Point, vmath.V3(0, 0, wallReticleLift), reticleScale)
		s.SimLog.AddVerbose(s.State.Frame, "beam", "beam", "wall", fmtVec(hit.Point), hit.T)
	}
}

// advanceBeam extends a firing beam and ends it past its maximum travel.
func (s *Session) advanceBeam() {
	if !s.Beam.Firing {
		return
	}
	s.Beam.Distance += beamStep
	if s.Beam.Distance <= beamMaxTravel {
		return
	}
	s.Beam.Firing = false
	s.Beam.Distance = 0
	if !s.Beam.Hit {
		s.SimLog.Add(s.State.Frame, "beam", "score", "beam_timeout", "", -2)
		s.shotFinished(-2)
	}
}
