package voxelbuffer

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// RayIntersect clips a world-space ray to the block bounds and marches it
// through the mesh. It returns the ray parameter t of the first hit, so the
// hit lies at origin + t*direction. Direction is not normalized: t is a world
// distance only for a unit direction, and t*|direction| otherwise.
func (b *Buffer) RayIntersect(origin, direction math.Vec3) (float32, bool) {
	if b.size < 2 || b.Empty() {
		return 0, false
	}
	ray := picking.Ray{Origin: origin, Direction: direction}
	tmin, _, hit := ray.Clip(b.bounds)
	if !hit {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}

	extent := b.bounds.Size()
	entry := ray.At(tmin).Sub(b.bounds.Min)
	entry = math.Vec3{X: entry.X / extent.X, Y: entry.Y / extent.Y, Z: entry.Z / extent.Z}
	return b.FindFirstRayIntersection(entry.Clamp(0, 1), origin, direction)
}

// FindFirstRayIntersection walks the lattice cells crossed by the ray,
// starting from entry (the point where the ray enters the block, normalized
// to [0,1] per axis), and tests the triangles registered under each cell.
// origin and direction are in world space. The march stops at the first cell
// containing a hit and returns the ray parameter of the nearest hit within
// that cell, as RayIntersect does.
func (b *Buffer) FindFirstRayIntersection(entry, origin, direction math.Vec3) (float32, bool) {
	if b.size < 2 {
		return 0, false
	}
	ray := picking.Ray{Origin: origin, Direction: direction}
	highest := float32(b.size - 1)
	last := b.size - 2

	// Lattice units advanced per unit of ray parameter
	local := direction.Scale(1 / b.cellSize)
	position := entry.Scale(highest)

	cellX := clampCell(position.X, last)
	cellY := clampCell(position.Y, last)
	cellZ := clampCell(position.Z, last)

	stepX, tMaxX, tDeltaX := ddaInit(position.X, local.X, cellX)
	stepY, tMaxY, tDeltaY := ddaInit(position.Y, local.Y, cellY)
	stepZ, tMaxZ, tDeltaZ := ddaInit(position.Z, local.Z, cellZ)

	for {
		if t, hit := b.intersectCell(ray, Coord{cellX + 1, cellY + 1, cellZ + 1}); hit {
			return t, true
		}

		if tMaxX < tMaxY {
			if tMaxX < tMaxZ {
				cellX += stepX
				tMaxX += tDeltaX
			} else {
				cellZ += stepZ
				tMaxZ += tDeltaZ
			}
		} else {
			if tMaxY < tMaxZ {
				cellY += stepY
				tMaxY += tDeltaY
			} else {
				cellZ += stepZ
				tMaxZ += tDeltaZ
			}
		}

		if cellX < 0 || cellX > last || cellY < 0 || cellY > last || cellZ < 0 || cellZ > last {
			return 0, false
		}
		if math32.IsInf(tMaxX, 1) && math32.IsInf(tMaxY, 1) && math32.IsInf(tMaxZ, 1) {
			return 0, false // Zero direction
		}
	}
}

// intersectCell tests both triangles of every quad registered under c.
func (b *Buffer) intersectCell(ray picking.Ray, c Coord) (float32, bool) {
	closest := float32(math32.MaxFloat32)
	found := false
	for _, start := range b.quads[c] {
		for tri := uint32(0); tri < 2; tri++ {
			i := start + tri*3
			t, hit := ray.IntersectTriangle(
				b.vertices[b.indices[i]].Position,
				b.vertices[b.indices[i+1]].Position,
				b.vertices[b.indices[i+2]].Position,
			)
			if hit && t < closest {
				closest = t
				found = true
			}
		}
	}
	return closest, found
}

func clampCell(v float32, last int) int {
	c := int(math32.Floor(v))
	if c < 0 {
		return 0
	}
	if c > last {
		return last
	}
	return c
}

func ddaInit(pos, dir float32, cell int) (step int, tMax, tDelta float32) {
	if dir > 0 {
		return 1, (float32(cell+1) - pos) / dir, 1 / dir
	}
	if dir < 0 {
		return -1, (pos - float32(cell)) / -dir, 1 / -dir
	}
	return 0, math32.Inf(1), math32.Inf(1)
}
