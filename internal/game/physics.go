package game

import (
	"github.com/Garsondee/vr-targets/internal/vmath"
)

// projectileSpinDeg is the tumble applied to the projectile each frame.
const projectileSpinDeg = 0.9

// StepTarget advances the target one tick: position by the previous velocity,
// then velocity by acceleration. out reports whether the cube left the arena;
// the caller repositions it.
func StepTarget(t TargetCube) (next TargetCube, out bool) {
	next = t
	next.Position = vmath.V3(
		t.Position.X+t.Velocity.X/TicksPerSecond,
		t.Position.Y+t.Velocity.Y/TicksPerSecond,
		t.Position.Z+t.Velocity.Z/TicksPerSecond,
	)
	next.Velocity = vmath.V3(
		t.Velocity.X+t.Acceleration.X/TicksPerSecond,
		t.Velocity.Y+t.Acceleration.Y/TicksPerSecond,
		t.Velocity.Z+t.Acceleration.Z/TicksPerSecond,
	)
	return next, OutOfArena(next.Position)
}

// StepProjectile advances the projectile one tick under gravity. Only the
// three spatial axes integrate; w stays at 1.
func StepProjectile(p Projectile) Projectile {
	p.Position.X += p.Velocity.X / TicksPerSecond
	p.Position.Y += p.Velocity.Y / TicksPerSecond
	p.Position.Z += p.Velocity.Z / TicksPerSecond
	p.Velocity.Y -= Gravity / TicksPerSecond
	return p
}

// spinProjectile accumulates the cosmetic tumble.
func spinProjectile(p Projectile) Projectile {
	p.Spin = p.Spin.Rotate(projectileSpinDeg, 0.5, 0.5, 1)
	return p
}

// ProjectileHitsTarget is the per-axis proximity test for a thrown cube.
func ProjectileHitsTarget(p Projectile, target vmath.Vec3) bool {
	return vmath.WithinBox(p.Position.XYZ(), target, projectileHitTolerance)
}

// stepPhysics integrates the target, then the projectile, and applies the
// resulting hit/miss events.
func (s *Session) stepPhysics() {
	next, out := StepTarget(s.Target)
	s.Target = next
	if out {
		s.SimLog.Add(s.State.Frame, "target", "target", "left_arena", fmtVec(next.Position), 0)
		s.hideObject()
	}

	s.Projectile = spinProjectile(s.Projectile)
	s.Projectile = StepProjectile(s.Projectile)
	pos := s.Projectile.Position.XYZ()
	s.SimLog.AddVerbose(s.State.Frame, "proj", "move", "position", fmtVec(pos), pos.Y)

	if !s.Projectile.Out && ProjectileHitsTarget(s.Projectile, s.Target.Position) {
		s.SimLog.Add(s.State.Frame, "proj", "score", "hit", fmtVec(pos), 2)
		s.shotFinished(2)
		s.hideObject()
		// Out before the miss test so one projectile resolves exactly once.
		s.Projectile.Out = true
	}
	if !s.Projectile.Out && OutOfArena(pos) {
		s.Projectile.Out = true
		s.SimLog.Add(s.State.Frame, "proj", "score", "miss", fmtVec(pos), -1)
		s.shotFinished(-1)
		// Second penalty on top of the event delta; kept to match the shipped scoring.
		s.State.Score--
	}
}
