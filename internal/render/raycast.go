// Package render draws the scene in software for panorama capture and
// writes captured frames to disk.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/Garsondee/vr-targets/internal/game"
	"github.com/Garsondee/vr-targets/internal/vmath"
)

const cubeHalf = 0.1

var (
	skyColor        = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff}
	floorLight      = color.RGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
	floorDark       = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	wallColor       = color.RGBA{R: 0x70, G: 0x88, B: 0xa0, A: 0xff}
	ceilingColor    = color.RGBA{R: 0x40, G: 0x48, B: 0x58, A: 0xff}
	targetColor     = color.RGBA{R: 0xe0, G: 0x30, B: 0x30, A: 0xff}
	projectileColor = color.RGBA{R: 0x30, G: 0x70, B: 0xe0, A: 0xff}
)

// light is the fixed directional light used for cube shading.
var light = vmath.V3(0.3, 0.8, 0.5).Normalize()

// Raycaster renders the arena, floor, target and projectile by casting one
// ray per pixel. It implements game.ViewRenderer.
type Raycaster struct {
	// Checker is the floor tile size in world units.
	Checker float64
}

// NewRaycaster returns a renderer with 0.5 m floor tiles.
func NewRaycaster() *Raycaster {
	return &Raycaster{Checker: 0.5}
}

// RenderView fills dst with the scene seen through projection × view.
func (r *Raycaster) RenderView(scene game.Scene, view, projection vmath.Mat4, dst *image.RGBA) {
	inv, ok := projection.Mul(view).Invert()
	if !ok {
		fill(dst, skyColor)
		return
	}
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	for py := b.Min.Y; py < b.Max.Y; py++ {
		ny := 1 - 2*(float64(py-b.Min.Y)+0.5)/h
		for px := b.Min.X; px < b.Max.X; px++ {
			nx := 2*(float64(px-b.Min.X)+0.5)/w - 1
			near := inv.MulVec(vmath.V4(nx, ny, -1, 1)).Divide()
			far := inv.MulVec(vmath.V4(nx, ny, 1, 1)).Divide()
			dst.SetRGBA(px, py, r.Shade(scene, near, far.Sub(near).Normalize()))
		}
	}
}

// Shade returns the colour seen along the ray from origin in direction dir.
func (r *Raycaster) Shade(scene game.Scene, origin, dir vmath.Vec3) color.RGBA {
	best := math.Inf(1)
	c := skyColor

	if t, n, ok := rayBox(origin, dir, scene.ProjectilePosition, cubeHalf); ok && t < best {
		best, c = t, lit(projectileColor, n)
	}
	if scene.TargetVisible {
		if t, n, ok := rayBox(origin, dir, scene.TargetPosition, cubeHalf); ok && t < best {
			best, c = t, lit(targetColor, n)
		}
	}
	if t, face, ok := rayRoom(origin, dir); ok && t < best {
		p := origin.Add(dir.Scale(t))
		switch face {
		case faceFloor:
			c = floorLight
			if (int(math.Floor(p.X/r.Checker))+int(math.Floor(p.Z/r.Checker)))&1 == 1 {
				c = floorDark
			}
		case faceCeiling:
			c = ceilingColor
		default:
			c = dim(wallColor, 0.7+0.1*float64(face))
		}
	}
	return c
}

type roomFace int

const (
	faceFloor roomFace = iota
	faceCeiling
	faceWallX
	faceWallZ
)

// rayRoom intersects a ray starting inside the arena with its boundary.
func rayRoom(o, d vmath.Vec3) (float64, roomFace, bool) {
	best := math.Inf(1)
	face := faceFloor
	try := func(t float64, f roomFace) {
		if t > 1e-9 && t < best {
			best, face = t, f
		}
	}
	if d.Y < 0 {
		try((game.FloorY-o.Y)/d.Y, faceFloor)
	} else if d.Y > 0 {
		try((game.CeilingY-o.Y)/d.Y, faceCeiling)
	}
	if d.X != 0 {
		try((math.Copysign(game.ArenaHalfExtent, d.X)-o.X)/d.X, faceWallX)
	}
	if d.Z != 0 {
		try((math.Copysign(game.ArenaHalfExtent, d.Z)-o.Z)/d.Z, faceWallZ)
	}
	return best, face, !math.IsInf(best, 1)
}

// rayBox is the slab test against an axis-aligned cube. It returns the entry
// distance and the outward normal of the face hit.
func rayBox(o, d, centre vmath.Vec3, half float64) (float64, vmath.Vec3, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	var normal vmath.Vec3
	for ax := 0; ax < 3; ax++ {
		oa, da, ca := o.Axis(ax), d.Axis(ax), centre.Axis(ax)
		lo, hi := ca-half, ca+half
		if da == 0 {
			if oa < lo || oa > hi {
				return 0, vmath.Vec3{}, false
			}
			continue
		}
		t1, t2 := (lo-oa)/da, (hi-oa)/da
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			normal = axisVec(ax, sign)
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, vmath.Vec3{}, false
		}
	}
	if tmax < 0 {
		return 0, vmath.Vec3{}, false
	}
	if tmin < 0 {
		return 0, normal, true
	}
	return tmin, normal, true
}

func axisVec(ax int, s float64) vmath.Vec3 {
	switch ax {
	case 0:
		return vmath.V3(s, 0, 0)
	case 1:
		return vmath.V3(0, s, 0)
	default:
		return vmath.V3(0, 0, s)
	}
}

func lit(c color.RGBA, n vmath.Vec3) color.RGBA {
	return dim(c, 0.35+0.65*math.Max(0, n.Dot(light)))
}

func dim(c color.RGBA, k float64) color.RGBA {
	k = math.Max(0, math.Min(1, k))
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
