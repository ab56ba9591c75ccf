package shapes

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// Sphere is a ball around Center.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// Distance implements Shape.
func (s Sphere) Distance(p math.Vec3) float32 {
	return p.Distance(s.Center) - s.Radius
}

// Bounds implements Shape.
func (s Sphere) Bounds() picking.AABB {
	r := math.Splat(s.Radius)
	return picking.NewAABB(s.Center.Sub(r), s.Center.Add(r))
}

// Cuboid is a box centered on Center with the given half extents, rotated
// by Rotation.
type Cuboid struct {
	Center      math.Vec3
	HalfExtents math.Vec3
	Rotation    math.Quat
}

// NewCuboid creates an axis-aligned box.
func NewCuboid(center, halfExtents math.Vec3) Cuboid {
	return Cuboid{Center: center, HalfExtents: halfExtents, Rotation: math.QuatIdentity()}
}

// Distance implements Shape.
func (c Cuboid) Distance(p math.Vec3) float32 {
	local := c.Rotation.Conjugate().Rotate(p.Sub(c.Center))
	q := math.Vec3{
		X: math32.Abs(local.X) - c.HalfExtents.X,
		Y: math32.Abs(local.Y) - c.HalfExtents.Y,
		Z: math32.Abs(local.Z) - c.HalfExtents.Z,
	}
	outside := q.Max(math.Vec3{}).Length()
	inside := math32.Min(math32.Max(q.X, math32.Max(q.Y, q.Z)), 0)
	return outside + inside
}

// Bounds implements Shape. Rotated boxes are bounded by their rotated corners.
func (c Cuboid) Bounds() picking.AABB {
	h := c.HalfExtents
	box := picking.NewAABB(c.Center, c.Center)
	for corner := 0; corner < 8; corner++ {
		offset := h
		if corner&1 == 0 {
			offset.X = -offset.X
		}
		if corner&2 == 0 {
			offset.Y = -offset.Y
		}
		if corner&4 == 0 {
			offset.Z = -offset.Z
		}
		box = box.Extend(c.Center.Add(c.Rotation.Rotate(offset)))
	}
	return box
}
