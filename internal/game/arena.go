package game

import (
	"math"

	"github.com/Garsondee/vr-targets/internal/vmath"
)

// Arena dimensions (world units). The floor sits 1.5 below eye level and the
// room is 4 high.
const (
	ArenaHalfExtent = 4.0
	FloorY          = -1.5
	CeilingY        = 2.5
)

// Simulation rates.
const (
	TicksPerSecond = 60.0
	Gravity        = 9.81
)

const (
	projectileHitTolerance = 0.2
	beamHitTolerance       = 0.12

	beamLength    = 10.0 // world units covered by t in [0,1]
	beamStep      = 0.4  // distance added per frame while firing
	beamMaxTravel = 15.0 // firing ends once the distance exceeds this

	cubeHalfSize = 0.1
)

// OutOfArena reports whether p has left the room. Bounds are exclusive, so a
// point exactly on a wall is still inside.
func OutOfArena(p vmath.Vec3) bool {
	return math.Abs(p.X) > ArenaHalfExtent ||
		p.Y < FloorY ||
		p.Y > CeilingY ||
		math.Abs(p.Z) > ArenaHalfExtent
}

// InsideArena is the closed-interval placement invariant.
func InsideArena(p vmath.Vec3) bool {
	return math.Abs(p.X) <= ArenaHalfExtent &&
		math.Abs(p.Z) <= ArenaHalfExtent &&
		p.Y >= FloorY && p.Y <= CeilingY
}

// touchesWall is the inclusive test used along the beam.
func touchesWall(p vmath.Vec3) bool {
	return math.Abs(p.X) >= ArenaHalfExtent ||
		math.Abs(p.Z) >= ArenaHalfExtent ||
		p.Y <= FloorY ||
		p.Y >= CeilingY
}
