package shapes

import (
	gomath "math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/Faultbox/voxmesh/internal/engine/picking"
	"github.com/Faultbox/voxmesh/pkg/math"
)

// Solid is a constructive solid built with sdfx. It carries static models
// made of boxes and cylinders combined by boolean operations.
type Solid struct {
	s sdf.SDF3
}

// NewSolid wraps an existing sdfx solid.
func NewSolid(s sdf.SDF3) Solid {
	return Solid{s: s}
}

// Box creates a box of the given size centered on the origin.
func Box(size math.Vec3, round float32) (Solid, error) {
	s, err := sdf.Box3D(toV3(size), float64(round))
	if err != nil {
		return Solid{}, errors.Wrap(err, "box")
	}
	return Solid{s: s}, nil
}

// Cylinder creates a cylinder along Z centered on the origin.
func Cylinder(height, radius, round float32) (Solid, error) {
	s, err := sdf.Cylinder3D(float64(height), float64(radius), float64(round))
	if err != nil {
		return Solid{}, errors.Wrap(err, "cylinder")
	}
	return Solid{s: s}, nil
}

// Translate moves the solid by offset.
func (s Solid) Translate(offset math.Vec3) Solid {
	return Solid{s: sdf.Transform3D(s.s, sdf.Translate3d(toV3(offset)))}
}

// Rotate rotates the solid by Euler angles in degrees, applied X then Y then Z.
func (s Solid) Rotate(euler math.Vec3) Solid {
	const toRadians = gomath.Pi / 180.0
	m := sdf.RotateZ(float64(euler.Z) * toRadians).
		Mul(sdf.RotateY(float64(euler.Y) * toRadians)).
		Mul(sdf.RotateX(float64(euler.X) * toRadians))
	return Solid{s: sdf.Transform3D(s.s, m)}
}

// Union returns a ∪ b.
func Union(a, b Solid) Solid {
	return Solid{s: sdf.Union3D(a.s, b.s)}
}

// Difference returns a - b.
func Difference(a, b Solid) Solid {
	return Solid{s: sdf.Difference3D(a.s, b.s)}
}

// Intersection returns a ∩ b.
func Intersection(a, b Solid) Solid {
	return Solid{s: sdf.Intersect3D(a.s, b.s)}
}

// SDF returns the underlying sdfx solid.
func (s Solid) SDF() sdf.SDF3 {
	return s.s
}

// Distance implements Shape.
func (s Solid) Distance(p math.Vec3) float32 {
	return float32(s.s.Evaluate(toV3(p)))
}

// Bounds implements Shape.
func (s Solid) Bounds() picking.AABB {
	bb := s.s.BoundingBox()
	return picking.NewAABB(fromV3(bb.Min), fromV3(bb.Max))
}

func toV3(v math.Vec3) v3.Vec {
	return v3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromV3(v v3.Vec) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
