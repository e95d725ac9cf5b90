package game

import (
	"math/rand"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// Radial placement bounds. Heights stay a few centimetres inside the floor band.
const (
	radialMinDistance = 1.0
	radialMaxDistance = 4.0
	radialHeightBand  = -FloorY - 0.04
)

// PlaceTarget draws a fresh target for the given mode. Position follows the
// configured strategy; velocity and acceleration are seeded per mode.
func PlaceTarget(cfg Config, mode int, rng *rand.Rand) TargetCube {
	var t TargetCube
	switch cfg.Placement {
	case PlacementRadial:
		t.Position = radialPosition(rng)
	default:
		t.Position = simplePosition(rng)
	}

	var vel, acc [3]float64
	for i := 0; i < 3; i++ {
		if mode >= cfg.VelocityFromMode {
			vel[i] = rng.Float64()*2 - 1
		}
		if mode == cfg.AccelMode {
			acc[i] = cfg.AccelMin + rng.Float64()*(cfg.AccelMax-cfg.AccelMin)
		}
	}
	t.Velocity = vmath.V3(vel[0], vel[1], vel[2])
	t.Acceleration = vmath.V3(acc[0], acc[1], acc[2])
	return t
}

// simplePosition keeps the target in a 1m-wide strip two metres ahead.
func simplePosition(rng *rand.Rand) vmath.Vec3 {
	return vmath.V3(rng.Float64()-0.5, 0, -2)
}

// radialPosition rotates a unit backward vector by an azimuth in [-90°,90°),
// scales it to a distance in [1,4) and picks a height inside the floor band.
func radialPosition(rng *rand.Rand) vmath.Vec3 {
	angle := rng.Float64()*180 - 90
	dist := radialMinDistance + rng.Float64()*(radialMaxDistance-radialMinDistance)
	m := vmath.Rotation(angle, 0, 1, 0).Scale(dist, dist, dist)
	p := m.MulVec(vmath.V4(0, 0, -1, 1))
	y := rng.Float64()*radialHeightBand*2 - radialHeightBand
	return vmath.V3(p.X, y, p.Z)
}

// hideObject repositions the target using the session RNG.
func (s *Session) hideObject() {
	s.Target = PlaceTarget(s.cfg, s.State.Mode, s.rng)
	s.SimLog.Add(s.State.Frame, "target", "target", "placed", fmtVec(s.Target.Position), s.Target.Velocity.Len())
}
