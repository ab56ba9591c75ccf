// Package picking provides ray casting utilities: box clipping and triangle tests.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voxmesh/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Not required to be normalized
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners, swapping components so Min <= Max.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Size returns the box extent.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Extend grows the box to include p.
func (b AABB) Extend(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Clip returns the parameter interval [tmin, tmax] over which the ray lies
// inside the box. tmin may be negative when the origin is inside.
func (r Ray) Clip(box AABB) (tmin, tmax float32, hit bool) {
	tmin = -math32.MaxFloat32
	tmax = math32.MaxFloat32

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.At(axis)
		dir := r.Direction.At(axis)
		lo, hi := box.Min.At(axis), box.Max.At(axis)

		if dir == 0 {
			// Parallel to the slab
			if origin < lo || origin > hi {
				return 0, 0, false
			}
			continue
		}

		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin, tmax, hit := r.Clip(box)
	if !hit {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

const triangleEpsilon = 1e-7

// IntersectTriangle tests the ray against triangle (v0, v1, v2) using the
// Möller-Trumbore algorithm. Both faces count. Returns the ray parameter of
// the hit, which is never negative.
func (r Ray) IntersectTriangle(v0, v1, v2 math.Vec3) (t float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if math32.Abs(det) < triangleEpsilon {
		return 0, false // Parallel to the triangle plane
	}
	inv := 1 / det

	s := r.Origin.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
